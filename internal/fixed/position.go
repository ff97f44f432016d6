// Package fixed implements 2D fixed-point world coordinates.
//
// A coordinate is an int32 scaled by Scale (1024), so one world unit equals
// 1024 raw units. Add/Sub wrap on overflow; products and quotients go through
// int64 so the scale factor never overflows the intermediate.
// Every function here is pure and safe to call from any goroutine.
package fixed

import (
	"fmt"
	"math"
	"math/bits"
)

const (
	// Shift is the number of fractional bits.
	Shift = 10
	// Scale is the raw value of one world unit.
	Scale = 1 << Shift
)

// Position is a fixed-point 2D vector (value type).
type Position struct {
	X int32
	Y int32
}

// Invalid marks an unoccupied slot in the position table.
var Invalid = Position{X: math.MinInt32, Y: math.MinInt32}

// Zero is the origin.
var Zero = Position{}

// New returns a position from raw fixed-point components.
func New(x, y int32) Position {
	return Position{X: x, Y: y}
}

// FromInt converts whole world units.
func FromInt(x, y int) Position {
	return Position{X: int32(x << Shift), Y: int32(y << Shift)}
}

// FromFloat converts world units, rounding to the nearest raw unit.
func FromFloat(x, y float64) Position {
	return Position{
		X: int32(math.Round(x * Scale)),
		Y: int32(math.Round(y * Scale)),
	}
}

// ToFloat converts back to world units.
func (p Position) ToFloat() (x, y float64) {
	return float64(p.X) / Scale, float64(p.Y) / Scale
}

// IsValid reports whether p is not the Invalid sentinel.
func (p Position) IsValid() bool {
	return p != Invalid
}

// Add returns p+o. Overflow wraps.
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p-o. Overflow wraps.
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// Neg returns -p.
func (p Position) Neg() Position {
	return Position{X: -p.X, Y: -p.Y}
}

// Mul multiplies both components by a fixed-point scalar k.
func (p Position) Mul(k int32) Position {
	return Position{
		X: int32((int64(p.X) * int64(k)) >> Shift),
		Y: int32((int64(p.Y) * int64(k)) >> Shift),
	}
}

// Div divides both components by a fixed-point scalar k.
// k == 0 returns p unchanged.
func (p Position) Div(k int32) Position {
	if k == 0 {
		return p
	}
	return Position{
		X: int32((int64(p.X) << Shift) / int64(k)),
		Y: int32((int64(p.Y) << Shift) / int64(k)),
	}
}

// Dot returns the fixed-point dot product p·o.
func (p Position) Dot(o Position) int64 {
	return shiftSum(int64(p.X)*int64(o.X), int64(p.Y)*int64(o.Y))
}

// LengthSquared returns |p|² in fixed-point.
func (p Position) LengthSquared() int64 {
	return p.Dot(p)
}

// DistanceSquared returns |p-o|² in fixed-point. The squares are summed in
// 128 bits, so even opposite corners of the int32 plane do not wrap.
func (p Position) DistanceSquared(o Position) int64 {
	hi, lo := sumSquares(int64(p.X)-int64(o.X), int64(p.Y)-int64(o.Y))
	return int64(hi<<(64-Shift) | lo>>Shift)
}

// Normalize returns a unit vector (length Scale) pointing along p.
// The zero vector normalizes to zero.
func (p Position) Normalize() Position {
	if p.X == 0 && p.Y == 0 {
		return Zero
	}
	fx, fy := p.ToFloat()
	inv := InvSqrt(float32(fx*fx + fy*fy))
	if inv == 0 {
		return Zero
	}
	return Position{
		X: int32(math.Round(fx * float64(inv) * Scale)),
		Y: int32(math.Round(fy * float64(inv) * Scale)),
	}
}

// Project returns the projection of p onto o.
// A zero-length o yields the zero vector.
func (p Position) Project(o Position) Position {
	ox, oy := int64(o.X), int64(o.Y)
	// Each square is at most 2^62, so the sum fits in uint64.
	den := uint64(ox*ox) + uint64(oy*oy)
	if den == 0 {
		return Zero
	}
	neg, num := signedSum(int64(p.X)*ox, int64(p.Y)*oy)
	return Position{
		X: int32(scaleDiv(neg, num, ox, den)),
		Y: int32(scaleDiv(neg, num, oy, den)),
	}
}

// Lerp moves p toward o by fraction t in [0,1].
func (p Position) Lerp(o Position, t float64) Position {
	if t <= 0 {
		return p
	}
	if t >= 1 {
		return o
	}
	return Position{
		X: p.X + int32(math.Round(float64(int64(o.X)-int64(p.X))*t)),
		Y: p.Y + int32(math.Round(float64(int64(o.Y)-int64(p.Y))*t)),
	}
}

func (p Position) String() string {
	if !p.IsValid() {
		return "(invalid)"
	}
	x, y := p.ToFloat()
	return fmt.Sprintf("(%.3f, %.3f)", x, y)
}

// shiftSum returns (a+b)>>Shift without forming the possibly overflowing sum.
func shiftSum(a, b int64) int64 {
	const mask = Scale - 1
	return a>>Shift + b>>Shift + (a&mask+b&mask)>>Shift
}

// magnitude returns |v|, MinInt64 included.
func magnitude(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}

// signedSum returns a+b as sign and magnitude; the magnitude may reach 2^63.
func signedSum(a, b int64) (neg bool, m uint64) {
	ma, mb := magnitude(a), magnitude(b)
	switch {
	case (a < 0) == (b < 0):
		return a < 0, ma + mb
	case ma >= mb:
		return a < 0, ma - mb
	default:
		return b < 0, mb - ma
	}
}

// sumSquares returns dx²+dy² as a 128-bit value.
func sumSquares(dx, dy int64) (hi, lo uint64) {
	h1, l1 := bits.Mul64(magnitude(dx), magnitude(dx))
	h2, l2 := bits.Mul64(magnitude(dy), magnitude(dy))
	lo, carry := bits.Add64(l1, l2, 0)
	hi, _ = bits.Add64(h1, h2, carry)
	return hi, lo
}

// scaleDiv returns ±num*|k|/den truncated toward zero, the sign being
// neg xor k<0. The caller guarantees the quotient fits in 64 bits
// (num*|k| < den*2^64), which holds for projections by Cauchy-Schwarz.
func scaleDiv(neg bool, num uint64, k int64, den uint64) int64 {
	hi, lo := bits.Mul64(num, magnitude(k))
	q, _ := bits.Div64(hi, lo, den)
	if neg != (k < 0) {
		return -int64(q)
	}
	return int64(q)
}

// InvSqrt approximates 1/sqrt(n) with the bit-level initial guess and one
// Newton-Raphson step (~0.2% error). Returns 0 for n <= 0.
func InvSqrt(n float32) float32 {
	if n <= 0 {
		return 0
	}
	half := n * 0.5
	i := math.Float32bits(n)
	i = 0x5f3759df - (i >> 1)
	y := math.Float32frombits(i)
	y *= 1.5 - half*y*y
	return y
}

// Within reports whether o lies within r raw units of p (inclusive).
func (p Position) Within(o Position, r int32) bool {
	if r < 0 {
		return false
	}
	hi, lo := sumSquares(int64(p.X)-int64(o.X), int64(p.Y)-int64(o.Y))
	return hi == 0 && lo <= uint64(int64(r)*int64(r))
}
