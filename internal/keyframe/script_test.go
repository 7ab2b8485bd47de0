package keyframe

import (
	"context"
	"errors"
	"math"
	"testing"
)

const orbitScript = `
math := import("math")

keyframes := []
for i := 0; i < 4; i++ {
	a := float(i) * math.pi / 2.0
	pos := [center[0] + diameter * math.cos(a), center[1], center[2] + diameter * math.sin(a)]
	keyframes = append(keyframes, {t: i, pos: pos, lookat: center})
}
`

func TestRunScript(t *testing.T) {
	keys, err := RunScript(context.Background(), []byte(orbitScript), Orbit{Diameter: 2})
	if err != nil {
		t.Fatalf("RunScript failed: %v", err)
	}
	if len(keys) != 4 {
		t.Fatalf("expected 4 keyframes, got %d", len(keys))
	}
	if keys[3].Time != 3 {
		t.Errorf("expected t=3, got %v", keys[3].Time)
	}
	p := keys[1].Position
	if math.Abs(p[0]) > 1e-9 || math.Abs(p[2]-2) > 1e-9 {
		t.Errorf("expected (0,0,2), got %v", p)
	}
	if keys[2].Up[1] != 1 {
		t.Errorf("up should default to +Y, got %v", keys[2].Up)
	}
}

func TestRunScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"no keyframes", `x := 1`, ErrEmpty},
		{"empty array", `keyframes := []`, ErrEmpty},
		{"missing t", `keyframes := [{pos: [1, 2, 3]}]`, ErrTime},
		{"short vector", `keyframes := [{t: 0, up: [0, 1]}]`, ErrVector},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunScript(context.Background(), []byte(tt.src), DefaultOrbit())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
