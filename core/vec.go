package core

import "fmt"

// Vec is an integer pair on the unbounded grid. It is used for position,
// velocity and acceleration alike.
type Vec struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the component-wise sum of v and o.
func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns the component-wise difference v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }

// IsZero reports whether both components are zero.
func (v Vec) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Within reports whether both components lie in [lo, hi].
func (v Vec) Within(lo, hi int) bool {
	return v.X >= lo && v.X <= hi && v.Y >= lo && v.Y <= hi
}

// Clamp forces each component into [lo, hi] independently and reports whether
// any component had to be moved.
func (v Vec) Clamp(lo, hi int) (Vec, bool) {
	x, cx := clampInt(v.X, lo, hi)
	y, cy := clampInt(v.Y, lo, hi)
	return Vec{X: x, Y: y}, cx || cy
}

// Manhattan returns |x| + |y|.
func (v Vec) Manhattan() int { return absInt(v.X) + absInt(v.Y) }

// String renders the vector as "(x, y)".
func (v Vec) String() string { return fmt.Sprintf("(%d, %d)", v.X, v.Y) }

func clampInt(n, lo, hi int) (int, bool) {
	if n > hi {
		return hi, true
	}
	if n < lo {
		return lo, true
	}
	return n, false
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
