package platform

// Relocate maps a window rectangle from one monitor onto another. The offset
// from the source monitor's origin is kept, the size is clamped to the target
// monitor, and the result is pushed back inside the target if it overflows.
func Relocate(win, from, to Rect) Rect {
	out := Rect{
		X:      to.X + (win.X - from.X),
		Y:      to.Y + (win.Y - from.Y),
		Width:  min(win.Width, to.Width),
		Height: min(win.Height, to.Height),
	}

	if out.X+out.Width > to.X+to.Width {
		out.X = to.X + to.Width - out.Width
	}
	if out.Y+out.Height > to.Y+to.Height {
		out.Y = to.Y + to.Height - out.Height
	}
	out.X = max(out.X, to.X)
	out.Y = max(out.Y, to.Y)

	return out
}
