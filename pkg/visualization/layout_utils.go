package visualization

// Viewport is a rectangular drawing surface.
type Viewport struct {
	Width  float64
	Height float64
}

// Scale maps p from one viewport onto another, e.g. layout pixels onto
// terminal cells.
func Scale(p Position, from, to Viewport) Position {
	if from.Width <= 0 || from.Height <= 0 {
		return p
	}
	return Position{
		X: p.X * to.Width / from.Width,
		Y: p.Y * to.Height / from.Height,
	}
}

// Bounds returns the bounding box of positions.
func Bounds(positions []Position) (lo, hi Position) {
	if len(positions) == 0 {
		return Position{}, Position{}
	}
	lo, hi = positions[0], positions[0]
	for _, pos := range positions[1:] {
		if pos.X < lo.X {
			lo.X = pos.X
		}
		if pos.Y < lo.Y {
			lo.Y = pos.Y
		}
		if pos.X > hi.X {
			hi.X = pos.X
		}
		if pos.Y > hi.Y {
			hi.Y = pos.Y
		}
	}
	return lo, hi
}

// Lerp interpolates between a and b; t is clamped to [0, 1].
func Lerp(a, b Position, t float64) Position {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Position{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}
