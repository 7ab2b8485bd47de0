// Package camera animates a camera along keyframes with a Catmull-Rom spline.
package camera

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/flycam/internal/keyframe"
	"github.com/ivlev/flycam/internal/logging"
)

const (
	DefaultParams = "loop=false, acc=false"
	DefaultFOV    = 60.0 // degrees
	DefaultNear   = 0.01
	DefaultFar    = 1000.0
)

// Options are the animator parameters
type Options struct {
	Loop bool // close the path into a loop (first and last keyframes should match)
	Ease bool // accelerate and decelerate inside every segment
}

// ParseOptions reads "loop=<bool>, acc=<bool>" on top of opts. Unknown keys
// are ignored; a value that does not parse keeps the previous setting and is
// reported in the returned error.
func ParseOptions(param string, opts Options) (Options, error) {
	var errs []error
	for key, raw := range keyframe.ParseKeyValues(param) {
		var dst *bool
		switch key {
		case "loop":
			dst = &opts.Loop
		case "acc":
			dst = &opts.Ease
		default:
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		*dst = v
	}
	return opts, errors.Join(errs...)
}

// View is an evaluated camera pose
type View struct {
	Eye    mgl64.Vec3
	Target mgl64.Vec3
	Up     mgl64.Vec3
}

// Matrix returns the right-handed look-at view matrix of the pose.
func (v View) Matrix() mgl64.Mat4 {
	return mgl64.LookAtV(v.Eye, v.Target, v.Up)
}

// Animator evaluates a keyframe sequence over time. It keeps a segment cursor
// that only moves forward while time increases and restarts from the first
// segment when time goes back. An Animator is not safe for concurrent use;
// callers swap in a fully built Animator instead of updating one in place.
type Animator struct {
	opts   Options
	orbit  keyframe.Orbit
	seq    *keyframe.Sequence
	source string
	reason error

	segment  int
	lastTime float64
	time     float64

	fov        float64 // radians
	projection mgl64.Mat4
}

// Option configures an Animator at construction
type Option func(*Animator)

// WithOrbit sets the scene sphere used by the default path and first-line defaults.
func WithOrbit(o keyframe.Orbit) Option {
	return func(a *Animator) { a.orbit = o }
}

// WithFOV sets the vertical field of view in degrees.
func WithFOV(deg float64) Option {
	return func(a *Animator) { a.fov = mgl64.DegToRad(deg) }
}

func newAnimator(opts []Option) *Animator {
	a := &Animator{
		orbit:      keyframe.DefaultOrbit(),
		fov:        mgl64.DegToRad(DefaultFOV),
		projection: mgl64.Ident4(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// New creates an Animator from a parameter string and an optional keyframe
// file. It never fails: a broken file yields the default orbit.
func New(param, file string, opts ...Option) *Animator {
	return NewContext(context.Background(), param, file, opts...)
}

// NewContext is New with a context for script evaluation.
func NewContext(ctx context.Context, param, file string, opts ...Option) *Animator {
	a := newAnimator(opts)
	a.UpdateContext(ctx, param, file)
	return a
}

// NewFromSequence creates an Animator over an already built sequence.
func NewFromSequence(seq *keyframe.Sequence, o Options, opts ...Option) *Animator {
	a := newAnimator(opts)
	a.opts = o
	a.install(keyframe.Result{Sequence: seq, Source: "memory"})
	return a
}

// Update re-reads the parameters and rebuilds the keyframe sequence.
func (a *Animator) Update(param, file string) keyframe.Result {
	return a.UpdateContext(context.Background(), param, file)
}

// UpdateContext is Update with a context for script evaluation.
func (a *Animator) UpdateContext(ctx context.Context, param, file string) keyframe.Result {
	opts, err := ParseOptions(param, a.opts)
	if err != nil {
		logging.Logger().Warn("ignoring camera parameters", "param", param, "err", err)
	}
	a.opts = opts

	res := keyframe.Load(ctx, file, opts.Loop, a.orbit)
	a.install(res)
	return res
}

func (a *Animator) install(res keyframe.Result) {
	a.seq = res.Sequence
	a.source = res.Source
	a.reason = res.Reason
	a.segment = 1
	a.lastTime = a.seq.MinTime()
	a.time = a.clamp(a.time)
}

// Evaluate returns the camera pose at time t. Times outside
// [MinTime, MaxTime] are clamped.
func (a *Animator) Evaluate(t float64) View {
	if t < a.lastTime {
		a.segment = 1
	}
	a.lastTime = t
	t = a.clamp(t)

	last := a.seq.Len() - 3
	prev := a.segment
	for a.segment < last && t > a.seq.At(a.segment+1).Time {
		a.segment++
	}
	if a.segment != prev {
		logging.Logger().Debug("camera segment", "from", prev, "to", a.segment, "t", t)
	}

	i := a.segment
	k0, k1, k2, k3 := a.seq.At(i-1), a.seq.At(i), a.seq.At(i+1), a.seq.At(i+2)

	u := (t - k1.Time) / (k2.Time - k1.Time)
	if a.opts.Ease {
		u = Ease(u)
	}
	w := Weights(u)

	return View{
		Eye:    blend(w, k0.Position, k1.Position, k2.Position, k3.Position),
		Target: blend(w, k0.LookAt, k1.LookAt, k2.LookAt, k3.LookAt),
		Up:     k1.Up,
	}
}

func (a *Animator) clamp(t float64) float64 {
	return mgl64.Clamp(t, a.seq.MinTime(), a.seq.MaxTime())
}

// SetTime sets the playback time used by ModelView, clamped to the valid range.
func (a *Animator) SetTime(t float64) {
	a.time = a.clamp(t)
}

// Time returns the current playback time.
func (a *Animator) Time() float64 { return a.time }

// MinTime returns the time of the first keyframe.
func (a *Animator) MinTime() float64 { return a.seq.MinTime() }

// MaxTime returns the time of the last keyframe.
func (a *Animator) MaxTime() float64 { return a.seq.MaxTime() }

// Segment returns the index of the active segment in the padded sequence.
func (a *Animator) Segment() int { return a.segment }

// Options returns the parameters in effect.
func (a *Animator) Options() Options { return a.opts }

// Sequence returns the keyframe sequence being animated.
func (a *Animator) Sequence() *keyframe.Sequence { return a.seq }

// Source names where the keyframes came from, keyframe.SourceDefault for the
// built-in orbit.
func (a *Animator) Source() string { return a.source }

// Reason is the error that made the animator fall back to the default orbit.
func (a *Animator) Reason() error { return a.reason }

// Reset rewinds playback to the first keyframe.
func (a *Animator) Reset() {
	a.segment = 1
	a.time = a.seq.MinTime()
	a.lastTime = a.time
}

// ModelView evaluates the view matrix at the current playback time.
func (a *Animator) ModelView() mgl64.Mat4 {
	return a.Evaluate(a.time).Matrix()
}

// ModelViewInv evaluates the inverse view matrix at the current playback time.
func (a *Animator) ModelViewInv() mgl64.Mat4 {
	return a.ModelView().Inv()
}

// Projection returns the perspective projection set by SetupViewport.
func (a *Animator) Projection() mgl64.Mat4 {
	return a.projection
}

// SetupViewport recomputes the projection for a viewport of the given size.
func (a *Animator) SetupViewport(width, height int, near, far float64) {
	if height <= 0 {
		height = 1
	}
	a.projection = mgl64.Perspective(a.fov, float64(width)/float64(height), near, far)
}
