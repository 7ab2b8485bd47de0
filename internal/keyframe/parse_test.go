package keyframe

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestParse(t *testing.T) {
	src := `t=0,pos=1;2;3,lookat=0;0;0,up=0;1;0
# hold position, turn to the side
t=1.5, lookat=5;0;0

t=2,pos=-1;2;3,up=0;0;1
`
	keys, err := Parse(strings.NewReader(src), DefaultOrbit())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("Expected 3 keyframes, got %d", len(keys))
	}

	want := []Keyframe{
		{Time: 0, Position: mgl64.Vec3{1, 2, 3}, LookAt: mgl64.Vec3{0, 0, 0}, Up: mgl64.Vec3{0, 1, 0}},
		{Time: 1.5, Position: mgl64.Vec3{1, 2, 3}, LookAt: mgl64.Vec3{5, 0, 0}, Up: mgl64.Vec3{0, 1, 0}},
		{Time: 2, Position: mgl64.Vec3{-1, 2, 3}, LookAt: mgl64.Vec3{5, 0, 0}, Up: mgl64.Vec3{0, 0, 1}},
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keyframe %d: expected %+v, got %+v", i, want[i], keys[i])
		}
	}
}

func TestParseFirstLineDefaults(t *testing.T) {
	orbit := Orbit{Center: mgl64.Vec3{1, 1, 1}, Diameter: 4}
	keys, err := Parse(strings.NewReader("t=0\nt=1\n"), orbit)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	first := keys[0]
	if first.Position != (mgl64.Vec3{5, 1, 1}) {
		t.Errorf("Position: expected center+(D,0,0), got %v", first.Position)
	}
	if first.LookAt != orbit.Center {
		t.Errorf("LookAt: expected center, got %v", first.LookAt)
	}
	if first.Up != (mgl64.Vec3{0, 1, 0}) {
		t.Errorf("Up: expected +Y, got %v", first.Up)
	}
	if keys[1].Position != first.Position {
		t.Errorf("second keyframe should inherit position, got %v", keys[1].Position)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
		line int
	}{
		{"empty", "", ErrEmpty, 0},
		{"only comments", "# nothing\n\n", ErrEmpty, 0},
		{"missing t on first line", "pos=1;2;3\n", ErrTime, 1},
		{"bad t", "t=abc\n", ErrTime, 1},
		{"equal time", "t=1\nt=1\n", ErrTime, 2},
		{"decreasing time", "t=1\nt=2\nt=0.5\n", ErrTime, 3},
		{"missing t later", "t=0\npos=1;1;1\n", ErrTime, 2},
		{"two components", "t=0,pos=1;2\n", ErrVector, 1},
		{"not a number", "t=0\nt=1,up=0;x;0\n", ErrVector, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src), DefaultOrbit())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var fe *FormatError
			if tt.line > 0 {
				if !errors.As(err, &fe) {
					t.Fatalf("expected *FormatError, got %T", err)
				}
				if fe.Line != tt.line {
					t.Errorf("expected line %d, got %d", tt.line, fe.Line)
				}
			}
		})
	}
}

func TestParseKeyValues(t *testing.T) {
	kv := ParseKeyValues(" loop = true,ACC=false, flag ,,")
	if kv["loop"] != "true" || kv["acc"] != "false" {
		t.Errorf("unexpected values: %v", kv)
	}
	if v, ok := kv["flag"]; !ok || v != "" {
		t.Errorf("expected empty value for bare key, got %q (present=%v)", v, ok)
	}
	if len(kv) != 3 {
		t.Errorf("expected 3 keys, got %d: %v", len(kv), kv)
	}
}
