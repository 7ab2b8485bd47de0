package video

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func frame(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestPNGSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	s, err := NewPNGSequence(dir)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := s.WriteFrame(i, frame(color.RGBA{uint8(i * 80), 0, 0, 255})); err != nil {
			t.Fatalf("WriteFrame(%d) failed: %v", i, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if filepath.Base(s.FramePath(2)) != "frame_00002.png" {
		t.Errorf("unexpected frame name %s", s.FramePath(2))
	}
	f, err := os.Open(s.FramePath(2))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	r, _, _, _ := img.At(0, 0).RGBA()
	if r>>8 != 160 {
		t.Errorf("expected red 160 in the last frame, got %d", r>>8)
	}
}

func TestAPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.png")
	a := NewAPNG(path, 25)
	if a.delay != 4 {
		t.Errorf("expected a 4/100 s delay at 25 fps, got %d", a.delay)
	}

	if err := a.WriteFrame(1, frame(color.RGBA{A: 255})); err == nil {
		t.Error("out of order frame should be rejected")
	}
	buf := frame(color.RGBA{255, 0, 0, 255})
	if err := a.WriteFrame(0, buf); err != nil {
		t.Fatal(err)
	}
	// the sink must not keep the caller's buffer
	buf.Pix[0] = 0
	if err := a.WriteFrame(1, frame(color.RGBA{0, 255, 0, 255})); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatal("output is not a PNG")
	}
	at := bytes.Index(data, []byte("acTL"))
	if at < 0 {
		t.Fatal("output is not an animated PNG")
	}
	if n := binary.BigEndian.Uint32(data[at+4 : at+8]); n != 2 {
		t.Errorf("expected 2 frames in acTL, got %d", n)
	}
	if n := bytes.Count(data, []byte("fcTL")); n != 2 {
		t.Errorf("expected 2 frame control chunks, got %d", n)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("default image should decode as a plain PNG: %v", err)
	}
}

func TestAPNGUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "anim.png")
	a := NewAPNG(path, 30)
	if err := a.WriteFrame(0, frame(color.RGBA{A: 255})); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err == nil {
		t.Error("expected error for a path in a missing directory")
	}
}

func TestAPNGEmpty(t *testing.T) {
	a := NewAPNG(filepath.Join(t.TempDir(), "empty.png"), 30)
	if err := a.Close(); err == nil {
		t.Error("expected error when no frames were written")
	}
}

func TestBuildFFmpegArgs(t *testing.T) {
	args := BuildFFmpegArgs("out.mp4", FFmpegOptions{Width: 640, Height: 360, FPS: 24, Quality: 23})
	line := strings.Join(args, " ")
	for _, want := range []string{
		"-f rawvideo",
		"-video_size 640x360",
		"-framerate 24",
		"-c:v libx264",
		"-crf 23",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("missing %q in %q", want, line)
		}
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("output path should come last, got %q", args[len(args)-1])
	}
}

func TestWriteRawRGBA(t *testing.T) {
	img := frame(color.RGBA{1, 2, 3, 4})
	sub := img.SubImage(image.Rect(2, 2, 4, 4)).(*image.RGBA)

	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, sub); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 2*2*4 {
		t.Errorf("expected 16 packed bytes, got %d", buf.Len())
	}
}
