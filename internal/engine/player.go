package engine

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/ivlev/flycam/internal/camera"
	"github.com/ivlev/flycam/internal/keyframe"
	"github.com/ivlev/flycam/internal/logging"
)

// Frame is one realtime playback step.
type Frame struct {
	Elapsed time.Duration
	Time    float64
	View    camera.View
	Segment int
	Source  string
}

// Player plays the animation in real time, wrapping around at the end.
// Reloads build a complete animator and swap it in, so the playback
// goroutine never sees a half-updated one.
type Player struct {
	param string
	file  string
	opts  []camera.Option
	fps   int
	anim  atomic.Pointer[camera.Animator]
}

func NewPlayer(ctx context.Context, param, file string, fps int, opts ...camera.Option) *Player {
	if fps <= 0 {
		fps = 30
	}
	p := &Player{param: param, file: file, fps: fps, opts: opts}
	p.Reload(ctx)
	return p
}

// Animator returns the animator currently played.
func (p *Player) Animator() *camera.Animator {
	return p.anim.Load()
}

// Reload re-reads the keyframe file and swaps in the result.
func (p *Player) Reload(ctx context.Context) keyframe.Result {
	a := camera.NewContext(ctx, p.param, p.file, p.opts...)
	p.anim.Store(a)
	logging.Logger().Info("camera reloaded", "source", a.Source(), "keyframes", a.Sequence().Len()-2)
	return keyframe.Result{Sequence: a.Sequence(), Source: a.Source(), Reason: a.Reason()}
}

// Step evaluates the pose elapsed into playback. Only one goroutine may call
// Step at a time.
func (p *Player) Step(elapsed time.Duration) Frame {
	a := p.anim.Load()
	t := a.MinTime()
	if span := a.MaxTime() - a.MinTime(); span > 0 {
		t += math.Mod(elapsed.Seconds(), span)
	}
	a.SetTime(t)
	v := a.Evaluate(t)
	return Frame{
		Elapsed: elapsed,
		Time:    t,
		View:    v,
		Segment: a.Segment(),
		Source:  a.Source(),
	}
}

// Run ticks at the player's frame rate until ctx is done, calling onFrame
// after every step. A value on reload triggers Reload between ticks.
func (p *Player) Run(ctx context.Context, reload <-chan string, onFrame func(Frame)) error {
	ticker := time.NewTicker(time.Second / time.Duration(p.fps))
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-reload:
			if !ok {
				reload = nil
				continue
			}
			logging.Logger().Debug("keyframe file changed", "path", path)
			p.Reload(ctx)
			start = time.Now()
		case now := <-ticker.C:
			f := p.Step(now.Sub(start))
			if onFrame != nil {
				onFrame(f)
			}
		}
	}
}
