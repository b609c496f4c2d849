package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Coord is an axial hex coordinate.
type Coord struct {
	Q int
	R int
}

// Directions are the six axial unit offsets in fixed angular order. Linear patterns
// scan along these in this order.
var Directions = [6]Coord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Add returns c offset by d.
func (c Coord) Add(d Coord) Coord { return Coord{Q: c.Q + d.Q, R: c.R + d.R} }

// Scale returns c multiplied by n.
func (c Coord) Scale(n int) Coord { return Coord{Q: c.Q * n, R: c.R * n} }

// Neighbors returns the six adjacent coordinates in Directions order.
func (c Coord) Neighbors() [6]Coord {
	var out [6]Coord
	for i, d := range Directions {
		out[i] = c.Add(d)
	}
	return out
}

func (c Coord) String() string { return strconv.Itoa(c.Q) + "," + strconv.Itoa(c.R) }

// MarshalText encodes c as "q,r" so boards serialize as JSON objects.
func (c Coord) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText parses the "q,r" form.
func (c *Coord) UnmarshalText(b []byte) error {
	qs, rs, ok := strings.Cut(string(b), ",")
	if !ok {
		return fmt.Errorf("coord %q: missing comma", b)
	}
	q, err := strconv.Atoi(strings.TrimSpace(qs))
	if err != nil {
		return fmt.Errorf("coord %q: %w", b, err)
	}
	r, err := strconv.Atoi(strings.TrimSpace(rs))
	if err != nil {
		return fmt.Errorf("coord %q: %w", b, err)
	}
	c.Q, c.R = q, r
	return nil
}

// Cell is one hex of a player's board.
type Cell struct {
	Q      int         `json:"q"`
	R      int         `json:"r"`
	Stack  []TokenKind `json:"stack"`
	Animal AnimalKind  `json:"animal,omitempty"`
}

// Coord returns the cell's position.
func (c *Cell) Coord() Coord { return Coord{Q: c.Q, R: c.R} }

// Height returns the number of tokens on the cell.
func (c *Cell) Height() int { return len(c.Stack) }

// Top returns the topmost token. ok is false for a nil or empty cell.
func Top(c *Cell) (TokenKind, bool) {
	if c == nil || len(c.Stack) == 0 {
		return "", false
	}
	return c.Stack[len(c.Stack)-1], true
}

// Base returns the bottom token. ok is false for a nil or empty cell.
func Base(c *Cell) (TokenKind, bool) {
	if c == nil || len(c.Stack) == 0 {
		return "", false
	}
	return c.Stack[0], true
}

// CheckStack reports whether the cell's full stack equals pattern, bottom to top.
func CheckStack(c *Cell, pattern []TokenKind) bool {
	if c == nil || len(c.Stack) != len(pattern) {
		return false
	}
	for i, t := range c.Stack {
		if t != pattern[i] {
			return false
		}
	}
	return true
}

// IsBuilding reports whether the cell holds a finished building: exactly two tokens,
// BRICK on top of BRICK, STONE or WOOD.
func IsBuilding(c *Cell) bool {
	if c == nil || len(c.Stack) != 2 || c.Stack[1] != Brick {
		return false
	}
	switch c.Stack[0] {
	case Brick, Stone, Wood:
		return true
	}
	return false
}

func (c *Cell) clone() *Cell {
	cp := *c
	cp.Stack = append([]TokenKind{}, c.Stack...)
	return &cp
}

// Board maps coordinates to cells. The key set is fixed when the board is generated.
type Board map[Coord]*Cell

// Layout selects a board shape.
type Layout string

const (
	// LayoutStaggered is the 23-cell 5-4-5-4-5 layout.
	LayoutStaggered Layout = "staggered"
	// LayoutHex is the 19-cell radius-2 hexagon.
	LayoutHex Layout = "hex"
)

type boardRow struct{ r, qStart, qEnd int }

var staggeredRows = []boardRow{
	{r: -2, qStart: -1, qEnd: 3},
	{r: -1, qStart: -1, qEnd: 2},
	{r: 0, qStart: -2, qEnd: 2},
	{r: 1, qStart: -2, qEnd: 1},
	{r: 2, qStart: -3, qEnd: 1},
}

// GenerateBoard returns an empty board with the given layout. Unknown layouts
// fall back to LayoutStaggered.
func GenerateBoard(layout Layout) Board {
	b := make(Board)
	add := func(q, r int) {
		b[Coord{Q: q, R: r}] = &Cell{Q: q, R: r, Stack: []TokenKind{}}
	}
	switch layout {
	case LayoutHex:
		const radius = 2
		for q := -radius; q <= radius; q++ {
			for r := max(-radius, -q-radius); r <= min(radius, -q+radius); r++ {
				add(q, r)
			}
		}
	default:
		for _, row := range staggeredRows {
			for q := row.qStart; q <= row.qEnd; q++ {
				add(q, row.r)
			}
		}
	}
	return b
}

// Cell returns the cell at c, or nil when c is off the board.
func (b Board) Cell(c Coord) *Cell { return b[c] }

// Neighbors returns the existing cells adjacent to c, in Directions order.
func (b Board) Neighbors(c Coord) []*Cell {
	out := make([]*Cell, 0, 6)
	for _, n := range c.Neighbors() {
		if cell := b[n]; cell != nil {
			out = append(out, cell)
		}
	}
	return out
}

// Coords returns every coordinate, sorted by row then column.
func (b Board) Coords() []Coord {
	out := make([]Coord, 0, len(b))
	for c := range b {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].R != out[j].R {
			return out[i].R < out[j].R
		}
		return out[i].Q < out[j].Q
	})
	return out
}

// HasEmptyCell reports whether any cell has an empty stack.
func (b Board) HasEmptyCell() bool {
	for _, c := range b {
		if len(c.Stack) == 0 {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of b.
func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	for k, c := range b {
		out[k] = c.clone()
	}
	return out
}
