package engine

// IsValidPlacement reports whether token may be stacked on cell.
func IsValidPlacement(cell *Cell, token TokenKind) bool {
	if cell == nil || cell.Animal != "" {
		return false
	}
	h := len(cell.Stack)
	if h >= MaxStackHeight {
		return false
	}
	// Buildings cap at height 2.
	if token == Brick && h >= 2 {
		return false
	}
	top, ok := Top(cell)
	if !ok {
		top = Empty
	}
	// A finished building is sealed.
	if h >= 2 && top == Brick {
		return false
	}
	return token.validOn(top)
}

// PlaceToken pushes token onto cell without validation.
func PlaceToken(cell *Cell, token TokenKind) {
	cell.Stack = append(cell.Stack, token)
}
