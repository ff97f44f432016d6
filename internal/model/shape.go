package model

import "github.com/udisondev/idlecore/internal/fixed"

// Shape is an axis-aligned box size in fixed units, centred on the object's position.
type Shape struct {
	W int32
	H int32
}

// Square returns a Shape with equal sides of n world units.
func Square(n int) Shape {
	return Shape{W: int32(n * fixed.Scale), H: int32(n * fixed.Scale)}
}

// Bounds returns the rectangle covered by s when centred on p.
// Computed in int64 so objects near the coordinate limits do not wrap.
func (s Shape) Bounds(p fixed.Position) Rect {
	hw := int64(s.W) / 2
	hh := int64(s.H) / 2
	return Rect{
		MinX: int64(p.X) - hw,
		MinY: int64(p.Y) - hh,
		MaxX: int64(p.X) - hw + int64(s.W),
		MaxY: int64(p.Y) - hh + int64(s.H),
	}
}

// Rect is an axis-aligned rectangle in fixed units.
type Rect struct {
	MinX, MinY int64
	MaxX, MaxY int64
}

// Overlaps reports strict overlap; rectangles that only touch do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.MinX < o.MaxX && r.MaxX > o.MinX && r.MinY < o.MaxY && r.MaxY > o.MinY
}

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p fixed.Position) bool {
	x, y := int64(p.X), int64(p.Y)
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}
