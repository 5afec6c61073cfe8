// Package geom provides the 2D vector and steering math shared by every
// faction strategy: distance checks, angular flanking slots, orbit
// geometry, and gravity-well pull.
package geom

import "math"

// Vector2 is a point or displacement in world space.
type Vector2 struct {
	X float64 `bson:"x" json:"x"`
	Y float64 `bson:"y" json:"y"`
}

func (v Vector2) Add(o Vector2) Vector2 { return Vector2{v.X + o.X, v.Y + o.Y} }
func (v Vector2) Sub(o Vector2) Vector2 { return Vector2{v.X - o.X, v.Y - o.Y} }
func (v Vector2) Scale(s float64) Vector2 { return Vector2{v.X * s, v.Y * s} }

func (v Vector2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalized returns the unit vector in v's direction, or the zero vector
// if v is the origin (avoids a NaN propagating into steering math).
func (v Vector2) Normalized() Vector2 {
	l := v.Length()
	if l == 0 {
		return Vector2{}
	}
	return Vector2{v.X / l, v.Y / l}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Vector2) float64 {
	return a.Sub(b).Length()
}

// Angle returns the heading in radians from a to b, in the standard
// atan2(dy, dx) convention used by NPC.Rotation.
func Angle(a, b Vector2) float64 {
	d := b.Sub(a)
	return math.Atan2(d.Y, d.X)
}

// Rotate rotates v by theta radians around the origin.
func (v Vector2) Rotate(theta float64) Vector2 {
	sin, cos := math.Sin(theta), math.Cos(theta)
	return Vector2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// PointOnCircle returns the point at the given angle and radius around
// center — the basic building block for patrol loops, orbit geometry, and
// formation slots.
func PointOnCircle(center Vector2, radius, angle float64) Vector2 {
	return Vector2{
		X: center.X + radius*math.Cos(angle),
		Y: center.Y + radius*math.Sin(angle),
	}
}

// MoveToward steps from current toward target by at most maxDistance,
// clamping to target if within range. Used by every strategy's movement
// step so no NPC ever overshoots its destination within a tick.
func MoveToward(current, target Vector2, maxDistance float64) Vector2 {
	delta := target.Sub(current)
	d := delta.Length()
	if d <= maxDistance || d == 0 {
		return target
	}
	return current.Add(delta.Scale(maxDistance / d))
}

// Lerp linearly interpolates between a and b by t in [0,1].
func Lerp(a, b Vector2, t float64) Vector2 {
	return a.Add(b.Sub(a).Scale(t))
}

// Centroid returns the average position of pts, or origin if empty.
func Centroid(pts []Vector2) Vector2 {
	if len(pts) == 0 {
		return Vector2{}
	}
	var sum Vector2
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Scale(1.0 / float64(len(pts)))
}

// ClampRadius returns a position clamped so its distance from center never
// exceeds maxRadius — used by the territorial strategy to keep a defending
// miner from leaving its territory while pursuing an intruder.
func ClampRadius(center, point Vector2, maxRadius float64) Vector2 {
	d := point.Sub(center)
	l := d.Length()
	if l <= maxRadius || l == 0 {
		return point
	}
	return center.Add(d.Scale(maxRadius / l))
}
