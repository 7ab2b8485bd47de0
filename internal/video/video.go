// Package video writes rendered frames out as image sequences or video files.
package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/setanarut/apng"

	"github.com/ivlev/flycam/internal/system"
)

// Sink receives frames in order. The frame buffer may be reused once
// WriteFrame returns.
type Sink interface {
	WriteFrame(index int, img *image.RGBA) error
	Close() error
}

// PNGSequence writes every frame to its own numbered PNG file.
type PNGSequence struct {
	dir     string
	pattern string
	enc     png.Encoder
	written int
}

func NewPNGSequence(dir string) (*PNGSequence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &PNGSequence{
		dir:     dir,
		pattern: "frame_%05d.png",
		enc:     png.Encoder{CompressionLevel: png.BestSpeed},
	}, nil
}

// FramePath returns the file frame index is written to.
func (s *PNGSequence) FramePath(index int) string {
	return filepath.Join(s.dir, fmt.Sprintf(s.pattern, index))
}

func (s *PNGSequence) WriteFrame(index int, img *image.RGBA) error {
	f, err := os.Create(s.FramePath(index))
	if err != nil {
		return err
	}
	if err := s.enc.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode frame %d: %w", index, err)
	}
	s.written++
	return f.Close()
}

func (s *PNGSequence) Close() error { return nil }

// APNG collects frames and writes one animated PNG on Close.
type APNG struct {
	path   string
	delay  uint16 // 1/100 s
	frames []image.Image
}

func NewAPNG(path string, fps int) *APNG {
	delay := 100 / fps
	if delay < 1 {
		delay = 1
	}
	return &APNG{path: path, delay: uint16(delay)}
}

func (a *APNG) WriteFrame(index int, img *image.RGBA) error {
	if index != len(a.frames) {
		return fmt.Errorf("apng: frame %d out of order, expected %d", index, len(a.frames))
	}
	cp := image.NewRGBA(img.Rect)
	copy(cp.Pix, img.Pix)
	a.frames = append(a.frames, cp)
	return nil
}

func (a *APNG) Close() error {
	if len(a.frames) == 0 {
		return fmt.Errorf("apng: no frames to write")
	}
	delays := make([]uint16, len(a.frames))
	for i := range delays {
		delays[i] = a.delay
	}

	f, err := os.Create(a.path)
	if err != nil {
		return fmt.Errorf("apng: %w", err)
	}
	if err := apng.EncodeAll(f, &apng.APNG{Images: a.frames, Delays: delays}); err != nil {
		f.Close()
		return fmt.Errorf("apng: encode %s: %w", a.path, err)
	}
	a.frames = nil
	return f.Close()
}

// FFmpeg streams raw RGBA frames into an ffmpeg process.
type FFmpeg struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	log   bytes.Buffer
}

// FFmpegOptions describe the encoded stream.
type FFmpegOptions struct {
	Width, Height int
	FPS           int
	Encoder       string
	Quality       int
}

func NewFFmpeg(ctx context.Context, path string, opts FFmpegOptions) (*FFmpeg, error) {
	if err := system.CheckFFmpeg(); err != nil {
		return nil, err
	}
	e := &FFmpeg{}
	e.cmd = exec.CommandContext(ctx, "ffmpeg", BuildFFmpegArgs(path, opts)...)
	e.cmd.Stdout = &e.log
	e.cmd.Stderr = &e.log

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return e, nil
}

// BuildFFmpegArgs returns the command line that encodes a raw RGBA stream
// read from stdin into path.
func BuildFFmpegArgs(path string, opts FFmpegOptions) []string {
	encoder := opts.Encoder
	if encoder == "" {
		encoder = "libx264"
	}
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", fmt.Sprintf("%d", opts.FPS),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", encoder,
	}
	args = append(args, system.QualityArgs(encoder, opts.Quality)...)
	args = append(args, path)
	return args
}

func (e *FFmpeg) WriteFrame(index int, img *image.RGBA) error {
	if err := writeRawRGBA(e.stdin, img); err != nil {
		return fmt.Errorf("write raw error frame %d: %w", index, err)
	}
	return nil
}

func (e *FFmpeg) Close() error {
	e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w\nLog: %s", err, e.log.String())
	}
	return nil
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	b := img.Bounds()
	if img.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		packed := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(packed, packed.Rect, img, b.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix)
	return err
}
