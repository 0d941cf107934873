// Package nav holds the small set of navigation types exchanged between the
// pipeline and its plugins. It deliberately carries no planning logic.
package nav

import (
	"fmt"
	"math"
)

// Pose is a planar pose in a named frame.
type Pose struct {
	Frame string  `json:"frame,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Yaw   float64 `json:"yaw"`
}

func (p Pose) String() string {
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Yaw)
}

// Path is an ordered sequence of poses.
type Path []Pose

// Length returns the summed euclidean distance between consecutive poses.
func (p Path) Length() float64 {
	var total float64
	for i := 1; i < len(p); i++ {
		total += Distance(p[i-1], p[i])
	}
	return total
}

// Clone returns a copy that shares no backing array with p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Distance returns the planar euclidean distance between two poses.
func Distance(a, b Pose) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Map is the handle the host hands to the pipeline. Plugins that need more
// than the frame and the extent are expected to type-assert to the concrete
// map implementation they support.
type Map interface {
	Frame() string
	Contains(x, y float64) bool
}

// Bounds is an axis-aligned rectangular Map.
type Bounds struct {
	FrameID    string
	MinX, MinY float64
	MaxX, MaxY float64
}

var _ Map = Bounds{}

// Frame implements Map.
func (b Bounds) Frame() string { return b.FrameID }

// Contains implements Map. The edges are inside.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}
