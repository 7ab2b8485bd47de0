// Package engine turns an animated camera into frames.
package engine

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/flycam/internal/camera"
	"github.com/ivlev/flycam/internal/config"
	"github.com/ivlev/flycam/internal/effects"
	"github.com/ivlev/flycam/internal/renderer"
	"github.com/ivlev/flycam/internal/system"
	"github.com/ivlev/flycam/internal/video"
)

// BenchmarkLog collects one line per render when stats are enabled.
const BenchmarkLog = "benchmark.log"

// Project renders the animation of one animator into a sink.
type Project struct {
	Config   *config.Config
	Animator *camera.Animator
	Renderer *renderer.Renderer
	Effect   effects.Effect
	Sink     video.Sink
}

func NewProject(cfg *config.Config, a *camera.Animator, r *renderer.Renderer, eff effects.Effect, sink video.Sink) *Project {
	return &Project{
		Config:   cfg,
		Animator: a,
		Renderer: r,
		Effect:   eff,
		Sink:     sink,
	}
}

type frameJob struct {
	view camera.View
	info effects.FrameInfo
}

// Run evaluates every frame on the animator in time order, then rasterizes
// them in parallel batches and writes them to the sink in order. The sink is
// closed when Run returns, also on failure.
func (p *Project) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	cfg := p.Config
	a := p.Animator
	rep := Report{Build: cfg.BuildVersion, Source: a.Source()}

	duration := cfg.Duration
	if duration <= 0 {
		duration = a.MaxTime() - a.MinTime()
	}
	times := SampleTimes(a.MinTime(), a.MaxTime(), FrameCount(duration, cfg.FPS))
	rep.Frames = len(times)

	// evaluation stays on this goroutine, the cursor is not shared
	evalStart := time.Now()
	jobs := make([]frameJob, len(times))
	for i, t := range times {
		v := a.Evaluate(t)
		jobs[i] = frameJob{
			view: v,
			info: effects.FrameInfo{
				Index:    i,
				Total:    len(times),
				Time:     t,
				MinTime:  a.MinTime(),
				MaxTime:  a.MaxTime(),
				Segment:  a.Segment(),
				Source:   a.Source(),
				Eye:      v.Eye,
				Target:   v.Target,
				Fallback: a.Reason() != nil,
			},
		}
	}
	rep.Evaluate = time.Since(evalStart)

	a.SetupViewport(cfg.Width, cfg.Height, cfg.Near, cfg.Far)
	proj := a.Projection()

	workers := cfg.Workers
	if workers <= 0 {
		rep.Host = system.DescribeHost()
		workers = rep.Host.DefaultWorkers(cfg.Width * cfg.Height * 4)
	}
	rep.Workers = workers

	fmt.Printf("[*] Keyframes: %s | Frames: %d | %dx%d @ %d FPS | Workers: %d\n",
		a.Source(), len(times), cfg.Width, cfg.Height, cfg.FPS, workers)

	batch := workers * 2
	frames := make([]*image.RGBA, batch)
	for base := 0; base < len(jobs); base += batch {
		end := min(base+batch, len(jobs))

		renderStart := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := base; i < end; i++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				img, err := p.Renderer.Render(jobs[i].view.Matrix(), proj)
				if err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
				if p.Effect != nil {
					p.Effect.Apply(img, jobs[i].info)
				}
				frames[i-base] = img
				return nil
			})
		}
		err := g.Wait()
		rep.Render += time.Since(renderStart)
		if err != nil {
			p.abort(frames)
			return rep, err
		}

		writeStart := time.Now()
		for i := base; i < end; i++ {
			if err := p.Sink.WriteFrame(i, frames[i-base]); err != nil {
				p.abort(frames)
				return rep, fmt.Errorf("write frame %d: %w", i, err)
			}
			p.Renderer.Release(frames[i-base])
			frames[i-base] = nil
		}
		rep.Write += time.Since(writeStart)

		if end%(batch*10) == 0 || end == len(jobs) {
			fmt.Printf("[>] Ready: %d/%d\n", end, len(jobs))
		}
	}

	closeStart := time.Now()
	if err := p.Sink.Close(); err != nil {
		return rep, fmt.Errorf("close output: %w", err)
	}
	rep.Write += time.Since(closeStart)
	rep.Total = time.Since(start)

	if cfg.ShowStats {
		if rep.Host.LogicalCPUs == 0 {
			rep.Host = system.DescribeHost()
		}
		if rss, err := system.ResidentMemory(); err == nil {
			rep.RSS = rss
		}
		fmt.Print(rep)
		if err := rep.Append(BenchmarkLog); err != nil {
			log.Printf("[!] Could not write %s: %v", BenchmarkLog, err)
		}
	}
	return rep, nil
}

// abort releases pending frames and closes the sink so an encoder process
// does not outlive a failed run.
func (p *Project) abort(frames []*image.RGBA) {
	p.release(frames)
	if err := p.Sink.Close(); err != nil {
		log.Printf("[!] Closing output after failure: %v", err)
	}
}

func (p *Project) release(frames []*image.RGBA) {
	for i, img := range frames {
		if img != nil {
			p.Renderer.Release(img)
			frames[i] = nil
		}
	}
}
