package engine

// Breakdown holds the per-category landscape points.
type Breakdown struct {
	Trees     int `json:"trees"`
	Mountains int `json:"mountains"`
	Fields    int `json:"fields"`
	Rivers    int `json:"rivers"`
	Buildings int `json:"buildings"`
}

// Sum returns the total across categories.
func (b Breakdown) Sum() int {
	return b.Trees + b.Mountains + b.Fields + b.Rivers + b.Buildings
}

// LandscapeScore is the result of ScoreLandscape.
type LandscapeScore struct {
	Total     int
	Breakdown Breakdown
}

const fieldGroupPoints = 5

// riverPoints indexes by chain length up to 6.
var riverPoints = [...]int{0, 0, 2, 5, 8, 11, 15}

// RiverPoints returns the score for one connected water chain of size n.
func RiverPoints(n int) int {
	if n < len(riverPoints) {
		return riverPoints[n]
	}
	return riverPoints[6] + 4*(n-6)
}

// ScoreLandscape scores board. It does not modify the board.
func ScoreLandscape(board Board) LandscapeScore {
	var b Breakdown
	b.Trees = scoreTrees(board)
	b.Mountains = scoreMountains(board)
	for _, n := range componentSizes(board, Sand) {
		if n >= 2 {
			b.Fields += fieldGroupPoints
		}
	}
	for _, n := range componentSizes(board, Water) {
		b.Rivers += RiverPoints(n)
	}
	b.Buildings = scoreBuildings(board)
	return LandscapeScore{Total: b.Sum(), Breakdown: b}
}

func scoreTrees(board Board) int {
	pts := 0
	for _, c := range board {
		top, ok := Top(c)
		if !ok || top != Leaf {
			continue
		}
		switch {
		case len(c.Stack) == 1:
			pts++
		case c.Stack[0] != Wood:
		case len(c.Stack) == 2:
			pts += 3
		case len(c.Stack) == 3:
			pts += 7
		}
	}
	return pts
}

func scoreMountains(board Board) int {
	pts := 0
	for _, c := range board {
		base, _ := Base(c)
		top, _ := Top(c)
		if base != Stone || top != Stone {
			continue
		}
		if !anyMatch(board.Neighbors(c.Coord()), TopIs(Stone)) {
			continue
		}
		switch h := len(c.Stack); {
		case h == 1:
			pts++
		case h == 2:
			pts += 3
		default:
			pts += 7
		}
	}
	return pts
}

// componentSizes flood-fills cells whose base is kind and returns each group's size.
// The visited set lives only for this call.
func componentSizes(board Board, kind TokenKind) []int {
	isKind := func(c *Cell) bool {
		base, ok := Base(c)
		return ok && base == kind
	}
	visited := make(map[Coord]bool)
	var sizes []int
	for _, start := range board.Coords() {
		if visited[start] || !isKind(board[start]) {
			continue
		}
		visited[start] = true
		queue := []Coord{start}
		size := 0
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			size++
			for _, n := range cur.Neighbors() {
				if !visited[n] && isKind(board[n]) {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
		sizes = append(sizes, size)
	}
	return sizes
}

func scoreBuildings(board Board) int {
	pts := 0
	for _, c := range board {
		if !IsBuilding(c) {
			continue
		}
		kinds := make(map[TokenKind]struct{}, 6)
		for _, n := range board.Neighbors(c.Coord()) {
			if top, ok := Top(n); ok && top != Brick {
				kinds[top] = struct{}{}
			}
		}
		if len(kinds) >= 3 {
			pts += 5
		}
	}
	return pts
}
