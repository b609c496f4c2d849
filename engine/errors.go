package engine

import "errors"

// ErrRejected is wrapped by every rule violation. The snapshot returned alongside it
// is the caller's input, unchanged.
var ErrRejected = errors.New("action rejected")

// ErrCorruptState is wrapped when a snapshot references data the engine cannot resolve.
var ErrCorruptState = errors.New("corrupt game state")

// Rejection reasons. Each wraps ErrRejected.
var (
	ErrNotPlaying        = reject("game is not in progress")
	ErrNotInLobby        = reject("room is not in the lobby")
	ErrUnknownPlayer     = reject("player is not in this room")
	ErrNotYourTurn       = reject("not your turn")
	ErrNotHost           = reject("only the host may do that")
	ErrRoomFull          = reject("room is full")
	ErrNoPlayers         = reject("room has no players")
	ErrAlreadyDrafted    = reject("already drafted this turn")
	ErrBadIndex          = reject("index out of range")
	ErrTooManyAnimals    = reject("too many incomplete animal cards")
	ErrIllegalPlacement  = reject("illegal placement")
	ErrCellOccupied      = reject("cell already has an animal")
	ErrCardComplete      = reject("animal card is complete")
	ErrPatternMismatch   = reject("pattern does not match")
	ErrHoldingNotEmpty   = reject("tokens must be placed or discarded first")
	ErrMustDraftTokens   = reject("tokens must be drafted first")
	ErrCannotKickSelf    = reject("host cannot kick themselves")
	ErrUnknownCoordinate = reject("no such cell")
)

// Lookup failures.
var (
	ErrUnknownAnimal = errors.New("unknown animal")
	ErrUnknownToken  = errors.New("unknown token")
)

type rejection struct{ msg string }

func (r *rejection) Error() string { return r.msg }

func (r *rejection) Unwrap() error { return ErrRejected }

func reject(msg string) error { return &rejection{msg: msg} }
