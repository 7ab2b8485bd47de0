package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/flycam/internal/camera"
	"github.com/ivlev/flycam/internal/keyframe"
)

// FrameCount returns how many frames cover duration seconds at fps, both
// ends included.
func FrameCount(duration float64, fps int) int {
	if duration <= 0 || fps <= 0 {
		return 1
	}
	return int(math.Round(duration*float64(fps))) + 1
}

// SampleTimes spreads n animation times evenly over [minT, maxT].
func SampleTimes(minT, maxT float64, n int) []float64 {
	if n <= 1 {
		return []float64{minT}
	}
	times := make([]float64, n)
	step := (maxT - minT) / float64(n-1)
	for i := range times {
		times[i] = minT + step*float64(i)
	}
	times[n-1] = maxT
	return times
}

// SamplePath evaluates n eye positions along seq on a private animator, for
// drawing the path under the camera.
func SamplePath(seq *keyframe.Sequence, opts camera.Options, n int) []mgl64.Vec3 {
	a := camera.NewFromSequence(seq, opts)
	times := SampleTimes(seq.MinTime(), seq.MaxTime(), n)
	path := make([]mgl64.Vec3, len(times))
	for i, t := range times {
		path[i] = a.Evaluate(t).Eye
	}
	return path
}
