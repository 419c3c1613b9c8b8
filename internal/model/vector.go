package model

import "math"

// Vec2 is a 2D vector in world coordinates
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the component-wise sum of v and o
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale returns v multiplied by s
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Length returns the euclidean length of v
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalized returns v scaled to unit length, or the zero vector if v is zero
func (v Vec2) Normalized() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// DistanceTo returns the euclidean distance between v and o
func (v Vec2) DistanceTo(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// IsFinite reports whether both components are real numbers
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Direction is one of the eight compass directions a player can move in,
// or DirectionNone for standing still
type Direction string

const (
	DirectionNone      Direction = "none"
	DirectionUp        Direction = "up"
	DirectionDown      Direction = "down"
	DirectionLeft      Direction = "left"
	DirectionRight     Direction = "right"
	DirectionUpLeft    Direction = "up-left"
	DirectionUpRight   Direction = "up-right"
	DirectionDownLeft  Direction = "down-left"
	DirectionDownRight Direction = "down-right"
)

// diagonal components are normalized so diagonal movement covers the same
// distance per step as cardinal movement
var diag = math.Sqrt2 / 2

var directionDeltas = map[Direction]Vec2{
	DirectionNone:      {},
	DirectionUp:        {X: 0, Y: -1},
	DirectionDown:      {X: 0, Y: 1},
	DirectionLeft:      {X: -1, Y: 0},
	DirectionRight:     {X: 1, Y: 0},
	DirectionUpLeft:    {X: -diag, Y: -diag},
	DirectionUpRight:   {X: diag, Y: -diag},
	DirectionDownLeft:  {X: -diag, Y: diag},
	DirectionDownRight: {X: diag, Y: diag},
}

// Delta returns the unit movement vector for d and whether d is a known direction
func (d Direction) Delta() (Vec2, bool) {
	v, ok := directionDeltas[d]
	return v, ok
}
