package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PinEpsilon is the per-component distance under which two adjacent control
// points count as the same point. A segment between such points holds still
// instead of following the spline.
const PinEpsilon = 1e-9

// catmullRom is the uniform Catmull-Rom basis, rows matching [u³ u² u 1].
var catmullRom = [4][4]float64{
	{-0.5, 1.5, -1.5, 0.5},
	{1.0, -2.5, 2.0, -0.5},
	{-0.5, 0.0, 0.5, 0.0},
	{0.0, 1.0, 0.0, 0.0},
}

// Weights returns the blend weights of the four control points of a segment
// at local parameter u in [0,1].
func Weights(u float64) mgl64.Vec4 {
	mono := [4]float64{u * u * u, u * u, u, 1}
	var w mgl64.Vec4
	for col := 0; col < 4; col++ {
		var sum float64
		for row := 0; row < 4; row++ {
			sum += mono[row] * catmullRom[row][col]
		}
		w[col] = sum
	}
	return w
}

// Ease remaps u with a piecewise quadratic slow-in/slow-out curve.
// Ease(0)=0, Ease(0.5)=0.5, Ease(1)=1 and the curve is C1 at 0.5.
func Ease(u float64) float64 {
	if u < 0.5 {
		return 2 * u * u
	}
	return -2*u*u + 4*u - 1
}

// blend evaluates the spline through p0..p3 with weights w, or returns p1
// unchanged when the segment's end points coincide.
func blend(w mgl64.Vec4, p0, p1, p2, p3 mgl64.Vec3) mgl64.Vec3 {
	if samePoint(p1, p2) {
		return p1
	}
	return p0.Mul(w[0]).Add(p1.Mul(w[1])).Add(p2.Mul(w[2])).Add(p3.Mul(w[3]))
}

func samePoint(a, b mgl64.Vec3) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > PinEpsilon {
			return false
		}
	}
	return true
}
