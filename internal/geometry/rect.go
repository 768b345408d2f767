package geometry

import "fmt"

// Point is either an absolute desktop coordinate or a relative delta,
// depending on the backend it is handed to.
type Point struct {
	X int
	Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize is used when neither topology nor the display server can
// report any geometry.
var DefaultSize = Size{Width: 1920, Height: 1080}

// Rect is a monitor rectangle in the desktop coordinate space.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// RectAtOrigin returns a rectangle of the given size anchored at (0,0).
func RectAtOrigin(s Size) Rect {
	return Rect{Width: s.Width, Height: s.Height}
}

// Valid reports whether the rectangle has a positive area.
func (r Rect) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Contains checks p against the half-open bounds [X, X+Width) x [Y, Y+Height).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Center returns the middle pixel of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Clamp pulls p inside the rectangle.
func (r Rect) Clamp(p Point) Point {
	return Point{
		X: clamp(p.X, r.X, r.X+r.Width-1),
		Y: clamp(p.Y, r.Y, r.Y+r.Height-1),
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
