package engine

import "fmt"

// AnimalDefinition is a static catalog entry. Points[i] is awarded for the (i+1)-th
// copy placed from one card; Slots is how many copies a card holds.
type AnimalDefinition struct {
	ID      AnimalKind
	Name    string
	Desc    string
	Points  []int
	Slots   int
	Pattern Pattern
}

// Check reports whether the animal may be placed on cell of board.
func (d AnimalDefinition) Check(cell *Cell, board Board) bool {
	return d.Pattern.Matches(cell, board)
}

const (
	Squirrel    AnimalKind = "SQUIRREL"
	Lizard      AnimalKind = "LIZARD"
	Snail       AnimalKind = "SNAIL"
	Heron       AnimalKind = "HERON"
	Duck        AnimalKind = "DUCK"
	Hawk        AnimalKind = "HAWK"
	Eagle       AnimalKind = "EAGLE"
	Frog        AnimalKind = "FROG"
	Beaver      AnimalKind = "BEAVER"
	Turtle      AnimalKind = "TURTLE"
	Hedgehog    AnimalKind = "HEDGEHOG"
	Shell       AnimalKind = "SHELL"
	Boar        AnimalKind = "BOAR"
	Ants        AnimalKind = "ANTS"
	Fox         AnimalKind = "FOX"
	Deer        AnimalKind = "DEER"
	Bear        AnimalKind = "BEAR"
	Panda       AnimalKind = "PANDA"
	Scorpion    AnimalKind = "SCORPION"
	Bee         AnimalKind = "BEE"
	Wolf        AnimalKind = "WOLF"
	Salmon      AnimalKind = "SALMON"
	Rabbit      AnimalKind = "RABBIT"
	Penguin     AnimalKind = "PENGUIN"
	Mole        AnimalKind = "MOLE"
	Bat         AnimalKind = "BAT"
	Cat         AnimalKind = "CAT"
	Owl         AnimalKind = "OWL"
	Spider      AnimalKind = "SPIDER"
	Caterpillar AnimalKind = "CATERPILLAR"
	Snake       AnimalKind = "SNAKE"
	Camel       AnimalKind = "CAMEL"
	Rhino       AnimalKind = "RHINO"
	Swan        AnimalKind = "SWAN"
	Crane       AnimalKind = "CRANE"
	Octopus     AnimalKind = "OCTOPUS"
	Monkey      AnimalKind = "MONKEY"
	Cougar      AnimalKind = "COUGAR"
	Kingfisher  AnimalKind = "KINGFISHER"
	Elephant    AnimalKind = "ELEPHANT"
	Giraffe     AnimalKind = "GIRAFFE"
	Tiger       AnimalKind = "TIGER"
	Peacock     AnimalKind = "PEACOCK"
	Goat        AnimalKind = "GOAT"
	Horse       AnimalKind = "HORSE"
)

// Shorthand conditions used by the catalog.
var (
	bush      = Exact(Leaf)
	log1      = Exact(Wood)
	rock      = Exact(Stone)
	tree      = Exact(Wood, Leaf)
	tallTree  = Exact(Wood, Wood, Leaf)
	deadTree  = Exact(Wood, Wood, Wood)
	midRock   = Exact(Stone, Stone)
	midWood   = Exact(Wood, Wood)
	peak      = Exact(Stone, Stone, Stone)
	water     = TopIs(Water)
	sand      = TopIs(Sand)
	stone     = TopIs(Stone)
	building  = IsBuildingCond()
	mountain2 = TopAtLeast(Stone, 2)
)

var catalog = []AnimalDefinition{
	// Single stacks and simple neighbors.
	{Squirrel, "Squirrel", "Small Tree (1 Log + Leaf)", []int{2, 2, 2}, 3, stackPattern(Wood, Leaf)},
	{Lizard, "Lizard", "Small Rock (Stone) next to Bush (Leaf)", []int{2, 2, 2}, 3, adjacent(rock, bush)},
	{Snail, "Snail", "Small Rock (Stone) next to Water", []int{2, 2, 2}, 3, adjacent(rock, water)},
	{Heron, "Heron", "Water next to Bush (Leaf)", []int{2, 2, 2}, 3, adjacent(water, bush)},
	{Duck, "Duck", "Water next to Wood (Log)", []int{2, 2, 2}, 3, adjacent(water, log1)},
	{Hawk, "Hawk", "Dead Tree (3 Logs)", []int{3, 4}, 2, stackPattern(Wood, Wood, Wood)},
	{Eagle, "Eagle", "Highest Peak (3 Stone)", []int{3, 4}, 2, stackPattern(Stone, Stone, Stone)},
	{Frog, "Frog", "Bush (Leaf) next to Water", []int{2, 2, 2, 3}, 4, adjacent(bush, water)},

	// Two-neighbor requirements.
	{Beaver, "Beaver", "Log next to Water AND Tree", []int{4, 5}, 2, adjacent(log1, water, tree)},
	{Turtle, "Turtle", "Water next to Field AND Stone", []int{3, 3}, 2, adjacent(water, sand, stone)},
	{Hedgehog, "Hedgehog", "Field next to Wood(1 Log) AND Bush(1 Leaf)", []int{3, 4}, 2, adjacent(sand, bush, log1)},
	{Shell, "Shell", "Sand next to Water AND Stone", []int{3, 3}, 2, adjacent(sand, water, stone)},
	{Boar, "Boar", "Field next to Water AND Tree", []int{4, 4, 5}, 3, adjacent(sand, water, tree)},
	{Ants, "Ants", "Field next to Bush(1 Leaf) AND Tree", []int{4, 4, 5}, 3, adjacent(sand, bush, tree)},
	{Fox, "Fox", "Medium Rock (2 Stone) next to Medium Wood (2 Log)", []int{4, 5}, 2, adjacent(midRock, midWood)},
	{Deer, "Deer", "Tall Tree (2 Log+Leaf) next to Field", []int{4, 5, 5}, 3, adjacent(tallTree, sand)},
	{Bear, "Bear", "Tall Tree (2 Log+Leaf) next to Mountain (2+ Stone)", []int{5, 6}, 2, adjacent(tallTree, mountain2)},
	{Panda, "Panda", "Tall Tree (2 Log+Leaf) next to Water", []int{5, 5}, 2, adjacent(tallTree, water)},
	{Scorpion, "Scorpion", "Medium Rock (2 Stone) next to Field", []int{3, 3, 3}, 3, adjacent(midRock, sand)},

	// Clusters.
	{Bee, "Bee", "Bush (Leaf) next to 2 other Bushes", []int{2, 3, 3}, 3, cluster(bush, 2, bush)},
	{Wolf, "Wolf", "Tree (1 Log+Leaf) next to 2 other Trees", []int{6, 7}, 2, cluster(tree, 2, tree)},
	{Salmon, "Salmon", "Water next to 2 other Water tiles", []int{3, 3, 3}, 3, cluster(water, 2, water)},
	{Rabbit, "Rabbit", "Field next to 2 Bushes", []int{3, 4, 4, 4}, 4, cluster(sand, 2, bush)},
	{Penguin, "Penguin", "Stone next to 2 Water tiles", []int{3, 3, 4, 4}, 4, cluster(stone, 2, water)},
	{Mole, "Mole", "Stone next to 2 Fields", []int{3, 3, 4, 4}, 4, cluster(stone, 2, sand)},

	// Buildings.
	{Bat, "Bat", "Building next to Water", []int{4, 4, 5}, 3, adjacent(building, water)},
	{Cat, "Cat", "Building next to 2 Fields", []int{5, 6}, 2, cluster(building, 2, sand)},
	{Owl, "Owl", "Tall Tree (2 Log+Leaf) next to Building", []int{6, 7}, 2, adjacent(tallTree, building)},
	{Spider, "Spider", "Dead Tree (3 Log) next to Building", []int{6, 6}, 2, adjacent(deadTree, building)},

	// Lines.
	{Caterpillar, "Caterpillar", "Line: Leaf -> Leaf -> Leaf", []int{3, 3, 3}, 3, line(bush, bush, bush)},
	{Snake, "Snake", "Line: Bush -> Bush -> Stone", []int{3, 4}, 2, line(bush, bush, stone)},
	{Camel, "Camel", "Line: Sand -> Sand -> Stone", []int{3, 4}, 2, line(sand, sand, stone)},
	{Rhino, "Rhino", "Line: Stone -> Stone -> Field", []int{3, 4}, 2, line(stone, stone, sand)},
	{Swan, "Swan", "Line: Water -> Water -> Leaf", []int{3, 4}, 2, line(water, water, bush)},
	{Crane, "Crane", "Line: Water -> Log -> Water", []int{3, 3}, 2, line(water, log1, water)},
	{Octopus, "Octopus", "Line: Water -> Stone -> Water", []int{3, 3}, 2, line(water, stone, water)},
	{Monkey, "Monkey", "Line: Small Tree -> Tall Tree", []int{5, 6}, 2, line(tree, tallTree)},
	{Cougar, "Cougar", "Line: Medium Rock -> High Peak", []int{5, 6}, 2, line(midRock, peak)},
	{Kingfisher, "Kingfisher", "Line: Tree -> Water -> Tree", []int{5, 5}, 2, line(tree, water, tree)},
	{Elephant, "Elephant", "Line: Field -> Tree -> Water", []int{4, 5}, 2, line(sand, tree, water)},
	{Giraffe, "Giraffe", "Line: Tree -> Bush -> Building", []int{5, 6}, 2, line(tree, bush, building)},
	{Tiger, "Tiger", "Line: Bush -> Tall Tree -> Bush", []int{5, 5}, 2, line(bush, tallTree, bush)},
	{Peacock, "Peacock", "Line: Tree -> Building -> Tree", []int{6, 7}, 2, line(tree, building, tree)},

	// Late additions.
	{Goat, "Goat", "High Peak (3 Stone) next to another Stone", []int{4, 5}, 2, adjacent(peak, stone)},
	{Horse, "Horse", "Field next to Field AND Tall Tree (2 Log+Leaf)", []int{4, 5, 5}, 3, adjacent(sand, sand, tallTree)},
}

var catalogIndex = func() map[AnimalKind]int {
	m := make(map[AnimalKind]int, len(catalog))
	for i, d := range catalog {
		m[d.ID] = i
	}
	return m
}()

// Lookup returns the catalog entry for kind.
func Lookup(kind AnimalKind) (AnimalDefinition, error) {
	i, ok := catalogIndex[kind]
	if !ok {
		return AnimalDefinition{}, fmt.Errorf("%w: %q", ErrUnknownAnimal, kind)
	}
	return catalog[i], nil
}

// Check evaluates the pattern of kind with cell as the anchor.
func Check(kind AnimalKind, cell *Cell, board Board) (bool, error) {
	def, err := Lookup(kind)
	if err != nil {
		return false, err
	}
	return def.Check(cell, board), nil
}

// AnimalKinds returns every catalog key in catalog order.
func AnimalKinds() []AnimalKind {
	out := make([]AnimalKind, len(catalog))
	for i, d := range catalog {
		out[i] = d.ID
	}
	return out
}
