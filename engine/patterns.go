package engine

// CondKind selects how a Condition tests a cell.
type CondKind uint8

const (
	CondExact    CondKind = iota // full stack equals Stack
	CondTop                      // top of stack equals Token, height >= MinHeight
	CondBuilding                 // IsBuilding
)

// Condition is a predicate over a single cell, described as data.
type Condition struct {
	Kind      CondKind
	Stack     []TokenKind
	Token     TokenKind
	MinHeight int
}

// Exact matches a cell whose whole stack equals tokens.
func Exact(tokens ...TokenKind) Condition { return Condition{Kind: CondExact, Stack: tokens} }

// TopIs matches a cell whose top token is t.
func TopIs(t TokenKind) Condition { return Condition{Kind: CondTop, Token: t} }

// TopAtLeast matches a cell whose top token is t and whose height is at least h.
func TopAtLeast(t TokenKind, h int) Condition {
	return Condition{Kind: CondTop, Token: t, MinHeight: h}
}

// IsBuildingCond matches a finished building.
func IsBuildingCond() Condition { return Condition{Kind: CondBuilding} }

// Match evaluates the condition against c. A nil cell never matches.
func (cd Condition) Match(c *Cell) bool {
	if c == nil {
		return false
	}
	switch cd.Kind {
	case CondExact:
		return CheckStack(c, cd.Stack)
	case CondTop:
		top, ok := Top(c)
		return ok && top == cd.Token && len(c.Stack) >= cd.MinHeight
	case CondBuilding:
		return IsBuilding(c)
	}
	return false
}

// Shape is the structural family of a pattern.
type Shape uint8

const (
	ShapeExactStack Shape = iota
	ShapeAdjacency
	ShapeCluster
	ShapeLinear
)

func (s Shape) String() string {
	switch s {
	case ShapeExactStack:
		return "stack"
	case ShapeAdjacency:
		return "adjacency"
	case ShapeCluster:
		return "cluster"
	case ShapeLinear:
		return "line"
	}
	return "unknown"
}

// Pattern is a data-only animal requirement anchored on one candidate cell.
//
//   - ShapeExactStack: Main holds on the candidate.
//   - ShapeAdjacency: Main holds, and every entry of Others holds on at least one
//     neighbor. Each entry is checked independently, so one neighbor may satisfy several.
//   - ShapeCluster: Main holds, and at least Count neighbors satisfy Others[0].
//   - ShapeLinear: Main holds, and in some direction the i-th cell out satisfies Line[i-1].
type Pattern struct {
	Shape  Shape
	Main   Condition
	Others []Condition
	Count  int
	Line   []Condition
}

// Matches evaluates the pattern with cell as the anchor.
func (p Pattern) Matches(cell *Cell, board Board) bool {
	if cell == nil || !p.Main.Match(cell) {
		return false
	}
	at := cell.Coord()
	switch p.Shape {
	case ShapeExactStack:
		return true
	case ShapeAdjacency:
		neighbors := board.Neighbors(at)
		for _, cond := range p.Others {
			if !anyMatch(neighbors, cond) {
				return false
			}
		}
		return true
	case ShapeCluster:
		if len(p.Others) == 0 {
			return false
		}
		n := 0
		for _, nb := range board.Neighbors(at) {
			if p.Others[0].Match(nb) {
				n++
			}
		}
		return n >= p.Count
	case ShapeLinear:
		for _, dir := range Directions {
			if lineMatches(board, at, dir, p.Line) {
				return true
			}
		}
		return false
	}
	return false
}

func anyMatch(cells []*Cell, cond Condition) bool {
	for _, c := range cells {
		if cond.Match(c) {
			return true
		}
	}
	return false
}

// lineMatches walks outward from origin along dir; a missing cell fails the direction.
func lineMatches(board Board, origin, dir Coord, steps []Condition) bool {
	for i, cond := range steps {
		if !cond.Match(board[origin.Add(dir.Scale(i+1))]) {
			return false
		}
	}
	return true
}

func stackPattern(tokens ...TokenKind) Pattern {
	return Pattern{Shape: ShapeExactStack, Main: Exact(tokens...)}
}

func adjacent(main Condition, others ...Condition) Pattern {
	return Pattern{Shape: ShapeAdjacency, Main: main, Others: others}
}

func cluster(main Condition, count int, other Condition) Pattern {
	return Pattern{Shape: ShapeCluster, Main: main, Count: count, Others: []Condition{other}}
}

func line(main Condition, steps ...Condition) Pattern {
	return Pattern{Shape: ShapeLinear, Main: main, Line: steps}
}
