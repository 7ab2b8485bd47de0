package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/flycam/internal/camera"
	"github.com/ivlev/flycam/internal/config"
	"github.com/ivlev/flycam/internal/effects"
	"github.com/ivlev/flycam/internal/engine"
	"github.com/ivlev/flycam/internal/keyframe"
	"github.com/ivlev/flycam/internal/logging"
	"github.com/ivlev/flycam/internal/renderer"
	"github.com/ivlev/flycam/internal/source"
	"github.com/ivlev/flycam/internal/system"
	"github.com/ivlev/flycam/internal/video"
	"github.com/ivlev/flycam/internal/watch"
)

var buildVersion = "dev"

func main() {
	system.InitResourceLimits()

	cfg := config.Default()
	if err := config.LoadFile(config.FileName, &cfg); err != nil {
		log.Printf("[!] %v", err)
	}
	cfg.BuildVersion = buildVersion

	modePtr := flag.String("mode", "dump", "What to do: dump, play, render, export")
	flag.StringVar(&cfg.KeyframePath, "keyframes", cfg.KeyframePath, "Keyframe file (.txt/.cam lines, .yaml scenario, .tengo script). Empty: default orbit")
	flag.StringVar(&cfg.KeyframeDir, "dir", cfg.KeyframeDir, "Use the newest keyframe file in this directory when -keyframes is empty")
	flag.StringVar(&cfg.Params, "params", cfg.Params, "Camera parameters, e.g. \"loop=true, acc=true\"")
	flag.Float64Var(&cfg.Diameter, "diameter", cfg.Diameter, "Diameter of the scene sphere used by the default orbit")
	flag.IntVar(&cfg.Width, "width", cfg.Width, "Width")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "Height")
	presetPtr := flag.String("preset", "", "Viewport preset: 16:9, 9:16, 4:5, 1:1")
	flag.Float64Var(&cfg.FOV, "fov", cfg.FOV, "Vertical field of view in degrees")
	flag.Float64Var(&cfg.Near, "near", cfg.Near, "Near clip plane")
	flag.Float64Var(&cfg.Far, "far", cfg.Far, "Far clip plane")
	flag.IntVar(&cfg.FPS, "fps", cfg.FPS, "FPS")
	flag.Float64Var(&cfg.Duration, "duration", cfg.Duration, "Output length in seconds (0: keyframe time range)")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Render threads (0: from CPU count and free memory)")
	flag.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "Output path (generated in output/ when empty)")
	flag.StringVar(&cfg.Format, "format", cfg.Format, "Render output: png (frame sequence), apng, mp4")
	flag.StringVar(&cfg.Backdrop, "backdrop", cfg.Backdrop, "Image or image folder drawn behind the wireframe")
	flag.BoolVar(&cfg.HUD, "hud", cfg.HUD, "Print time and pose on every frame")
	flag.BoolVar(&cfg.QRStamp, "qr", cfg.QRStamp, "Stamp a QR code with the frame time on every frame")
	flag.Float64Var(&cfg.FadeDuration, "fade", cfg.FadeDuration, "Fade in/out length in seconds")
	flag.IntVar(&cfg.Quality, "quality", cfg.Quality, "Video quality (0: auto, x264: CRF 1-51, VideoToolbox: bitrate = Q*100kbit/s)")
	flag.BoolVar(&cfg.ShowStats, "stats", cfg.ShowStats, "Print a performance report after rendering")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	watchPtr := flag.Bool("watch", true, "Reload the keyframe file when it changes (play mode)")
	savePtr := flag.Bool("save-config", false, "Store the effective settings in "+config.FileName)

	flag.Parse()

	if err := cfg.ApplyPreset(*presetPtr); err != nil {
		log.Fatalf("[-] %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Invalid settings: %v", err)
	}

	if cfg.Verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if *savePtr {
		if err := config.WriteFile(config.FileName, cfg); err != nil {
			log.Fatalf("[-] Could not save settings: %v", err)
		}
		fmt.Printf("[*] Settings saved to %s\n", config.FileName)
	}

	if cfg.KeyframePath == "" && cfg.KeyframeDir != "" {
		latest, err := keyframe.FindLatest(cfg.KeyframeDir)
		if err != nil {
			log.Fatalf("[-] %v", err)
		}
		cfg.KeyframePath = latest
		fmt.Printf("[*] Selected keyframes: %s\n", latest)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch *modePtr {
	case "dump":
		err = runDump(ctx, &cfg)
	case "play":
		err = runPlay(ctx, &cfg, *watchPtr)
	case "render":
		err = runRender(ctx, &cfg)
	case "export":
		err = runExport(ctx, &cfg)
	default:
		err = fmt.Errorf("unknown mode %q", *modePtr)
	}
	if err != nil {
		log.Fatalf("[-] %v", err)
	}
}

func newAnimator(ctx context.Context, cfg *config.Config) *camera.Animator {
	a := camera.NewContext(ctx, cfg.Params, cfg.KeyframePath, cameraOptions(cfg)...)
	reportSource(a)
	return a
}

func cameraOptions(cfg *config.Config) []camera.Option {
	return []camera.Option{
		camera.WithOrbit(keyframe.Orbit{Diameter: cfg.Diameter}),
		camera.WithFOV(cfg.FOV),
	}
}

func reportSource(a *camera.Animator) {
	if a.Reason() != nil {
		log.Printf("[!] Keyframes rejected, playing the default orbit: %v", a.Reason())
		return
	}
	fmt.Printf("[*] Keyframes: %s [%.3f..%.3f]\n", a.Source(), a.MinTime(), a.MaxTime())
}

func runDump(ctx context.Context, cfg *config.Config) error {
	a := newAnimator(ctx, cfg)
	a.SetupViewport(cfg.Width, cfg.Height, cfg.Near, cfg.Far)

	duration := cfg.Duration
	if duration <= 0 {
		duration = a.MaxTime() - a.MinTime()
	}
	for _, t := range engine.SampleTimes(a.MinTime(), a.MaxTime(), engine.FrameCount(duration, cfg.FPS)) {
		v := a.Evaluate(t)
		fmt.Printf("t=%.4f seg=%d eye=%s target=%s up=%s\n",
			t, a.Segment(), fmtVec(v.Eye), fmtVec(v.Target), fmtVec(v.Up))
		if cfg.Verbose {
			fmt.Print(v.Matrix())
		}
	}
	if cfg.Verbose {
		fmt.Printf("projection:\n%v", a.Projection())
	}
	return nil
}

func fmtVec(v mgl64.Vec3) string {
	return fmt.Sprintf("%.4f;%.4f;%.4f", v.X(), v.Y(), v.Z())
}

func runPlay(ctx context.Context, cfg *config.Config, watchFile bool) error {
	p := engine.NewPlayer(ctx, cfg.Params, cfg.KeyframePath, cfg.FPS, cameraOptions(cfg)...)
	reportSource(p.Animator())

	var reload <-chan string
	if watchFile && cfg.KeyframePath != "" {
		w, err := watch.New(cfg.KeyframePath, watch.DefaultDebounce)
		if err != nil {
			log.Printf("[!] Hot reload disabled: %v", err)
		} else {
			defer w.Close()
			reload = w.Events
			go func() {
				for err := range w.Errors {
					log.Printf("[!] Watch error: %v", err)
				}
			}()
			fmt.Printf("[*] Watching %s\n", cfg.KeyframePath)
		}
	}

	fmt.Println("[*] Playing, Ctrl+C to stop")
	n := 0
	err := p.Run(ctx, reload, func(f engine.Frame) {
		n++
		if n%cfg.FPS != 0 {
			return
		}
		fmt.Printf("[>] %6.2fs t=%.3f seg=%d eye=%s (%s)\n",
			f.Elapsed.Seconds(), f.Time, f.Segment, fmtVec(f.View.Eye), f.Source)
	})
	if ctx.Err() != nil {
		fmt.Println()
		return nil
	}
	return err
}

func runRender(ctx context.Context, cfg *config.Config) error {
	a := newAnimator(ctx, cfg)

	if cfg.OutputPath == "" {
		cfg.OutputPath = defaultOutput(cfg.Format)
	}
	if err := prepareOutput(cfg.OutputPath); err != nil {
		return err
	}

	scene := renderer.Scene{
		Orbit:     keyframe.Orbit{Diameter: cfg.Diameter},
		Keyframes: a.Sequence().Keyframes(),
		Path:      engine.SamplePath(a.Sequence(), a.Options(), 256),
	}
	opts := []renderer.Option{}
	if cfg.Backdrop != "" {
		src, err := source.NewImageSource(cfg.Backdrop)
		if err != nil {
			return fmt.Errorf("backdrop: %w", err)
		}
		img, err := source.Backdrop(src, src.Latest(), cfg.Width, cfg.Height)
		src.Close()
		if err != nil {
			return fmt.Errorf("backdrop: %w", err)
		}
		opts = append(opts, renderer.WithBackdrop(img))
	}
	r := renderer.New(cfg.Width, cfg.Height, scene, opts...)

	var chain effects.Chain
	if cfg.FadeDuration > 0 {
		chain = append(chain, effects.Fade{Duration: cfg.FadeDuration})
	}
	if cfg.HUD {
		chain = append(chain, effects.NewHUD())
	}
	if cfg.QRStamp {
		chain = append(chain, effects.NewQRStamp(min(cfg.Width, cfg.Height)/5))
	}

	sink, err := openSink(ctx, cfg)
	if err != nil {
		return err
	}

	project := engine.NewProject(cfg, a, r, chain, sink)
	if _, err := project.Run(ctx); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	fmt.Printf("[+++] Done! Output: %s\n", cfg.OutputPath)
	return nil
}

func defaultOutput(format string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	name := filepath.Join("output", "flycam_"+timestamp)
	switch format {
	case config.FormatAPNG:
		return name + ".png"
	case config.FormatMP4:
		return name + ".mp4"
	default:
		return name
	}
}

func openSink(ctx context.Context, cfg *config.Config) (video.Sink, error) {
	switch cfg.Format {
	case config.FormatAPNG:
		return video.NewAPNG(cfg.OutputPath, cfg.FPS), nil
	case config.FormatMP4:
		if cfg.VideoEncoder == "" {
			cfg.VideoEncoder = system.BestH264Encoder()
			if cfg.VideoEncoder != "libx264" {
				fmt.Printf("[*] Hardware encoder found: %s\n", cfg.VideoEncoder)
			}
		}
		if cfg.Quality == 0 {
			switch cfg.VideoEncoder {
			case "h264_videotoolbox":
				cfg.Quality = 75
			case "h264_nvenc":
				cfg.Quality = 28
			default:
				cfg.Quality = 23
			}
		}
		return video.NewFFmpeg(ctx, cfg.OutputPath, video.FFmpegOptions{
			Width:   cfg.Width,
			Height:  cfg.Height,
			FPS:     cfg.FPS,
			Encoder: cfg.VideoEncoder,
			Quality: cfg.Quality,
		})
	default:
		return video.NewPNGSequence(cfg.OutputPath)
	}
}

func runExport(ctx context.Context, cfg *config.Config) error {
	a := newAnimator(ctx, cfg)
	keys := a.Sequence().Keyframes()

	path := cfg.OutputPath
	if path == "" {
		path = keyframe.ExportPath("output", ".yaml")
	}
	if err := prepareOutput(path); err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		opts := a.Options()
		scenario := &keyframe.Scenario{
			Version:   keyframe.ScenarioVersion,
			Loop:      opts.Loop,
			Ease:      opts.Ease,
			Keyframes: keys,
		}
		if err := keyframe.WriteScenario(scenario, path); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
	default:
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := keyframe.WriteText(f, keys); err != nil {
			f.Close()
			return fmt.Errorf("export failed: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	fmt.Printf("[+++] Exported %d keyframes to %s\n", len(keys), path)
	return nil
}

// prepareOutput creates the directory that will hold path.
func prepareOutput(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	return nil
}
