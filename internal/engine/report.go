package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/flycam/internal/system"
)

// Report holds the timings of a render.
type Report struct {
	Build    string
	Source   string
	Frames   int
	Workers  int
	Total    time.Duration
	Evaluate time.Duration
	Render   time.Duration
	Write    time.Duration
	Host     system.Host
	RSS      uint64
}

func (r Report) FPS() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.Frames) / r.Total.Seconds()
}

func (r Report) String() string {
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Host: %s\n"+
			"Workers: %d\n"+
			"Frames: %d\n"+
			"Total Time: %.2fs\n"+
			"Evaluation: %.3fs\n"+
			"Rasterization: %.2fs\n"+
			"Output: %.2fs\n"+
			"Peak RSS: %s\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		r.Build, r.Host, r.Workers, r.Frames, r.Total.Seconds(), r.Evaluate.Seconds(),
		r.Render.Seconds(), r.Write.Seconds(), system.FormatBytes(r.RSS), r.FPS(),
	)
}

// Append adds a one-line summary of r to the log file at path.
func (r Report) Append(path string) error {
	entry := fmt.Sprintf("[%s] Build: %s | Keyframes: %s | Frames: %d | Total: %.2fs | Render: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		r.Build,
		filepath.Base(r.Source),
		r.Frames,
		r.Total.Seconds(),
		r.Render.Seconds(),
		r.FPS(),
	)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
