package engine

import "fmt"

// TokenKind is a terrain token. The zero value is not a valid token.
type TokenKind string

// Token kinds, in bag-distribution order.
const (
	Wood  TokenKind = "WOOD"
	Leaf  TokenKind = "LEAF"
	Stone TokenKind = "STONE"
	Water TokenKind = "WATER"
	Sand  TokenKind = "SAND"
	Brick TokenKind = "BRICK"
)

// Empty is the pseudo-kind used for the top of an empty stack in validOn tables.
const Empty TokenKind = "EMPTY"

// MaxStackHeight is the tallest stack any cell may hold.
const MaxStackHeight = 3

// TokenKinds lists every placeable token kind.
var TokenKinds = [...]TokenKind{Wood, Leaf, Stone, Water, Sand, Brick}

// TokenInfo is the static description of a token kind.
type TokenInfo struct {
	Kind    TokenKind
	Name    string
	ValidOn []TokenKind // tops (or Empty) this token may be stacked on
}

var tokenTable = map[TokenKind]TokenInfo{
	Wood:  {Kind: Wood, Name: "Log", ValidOn: []TokenKind{Empty, Wood}},
	Leaf:  {Kind: Leaf, Name: "Foliage", ValidOn: []TokenKind{Empty, Wood}},
	Stone: {Kind: Stone, Name: "Stone", ValidOn: []TokenKind{Empty, Stone}},
	Water: {Kind: Water, Name: "Water", ValidOn: []TokenKind{Empty}},
	Sand:  {Kind: Sand, Name: "Sand", ValidOn: []TokenKind{Empty}},
	Brick: {Kind: Brick, Name: "Brick", ValidOn: []TokenKind{Empty, Brick, Stone, Wood}},
}

// Token returns the static description of kind.
func Token(kind TokenKind) (TokenInfo, error) {
	info, ok := tokenTable[kind]
	if !ok {
		return TokenInfo{}, fmt.Errorf("%w: %q", ErrUnknownToken, kind)
	}
	return info, nil
}

// Valid reports whether k is a placeable token kind.
func (k TokenKind) Valid() bool {
	_, ok := tokenTable[k]
	return ok
}

// validOn reports whether k may be placed on a stack whose top is top.
func (k TokenKind) validOn(top TokenKind) bool {
	for _, v := range tokenTable[k].ValidOn {
		if v == top {
			return true
		}
	}
	return false
}

// AnimalKind identifies an entry of the animal catalog. The empty string means no animal.
type AnimalKind string

// Status is the lifecycle phase of a room.
type Status string

const (
	StatusLobby    Status = "lobby"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// LogType classifies an activity log entry for display.
type LogType string

const (
	LogNeutral LogType = "neutral"
	LogWarning LogType = "warning"
	LogSuccess LogType = "success"
	LogFailure LogType = "failure"
)

// LogEntry is one line of the shared activity log.
type LogEntry struct {
	Text string  `json:"text"`
	Type LogType `json:"type"`
	ID   int64   `json:"id"`
}
