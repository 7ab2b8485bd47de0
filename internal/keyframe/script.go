package keyframe

import (
	"context"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
)

// RunScript evaluates a tengo camera script. The script sees the globals
// `diameter` and `center` ([x, y, z]) and must define `keyframes`, an array
// of maps with a required number `t` and optional [x, y, z] arrays `pos`,
// `lookat` and `up`. Missing vectors are inherited like in the line format.
func RunScript(ctx context.Context, src []byte, orbit Orbit) ([]Keyframe, error) {
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := script.Add("diameter", orbit.Diameter); err != nil {
		return nil, err
	}
	center := []interface{}{orbit.Center[0], orbit.Center[1], orbit.Center[2]}
	if err := script.Add("center", center); err != nil {
		return nil, err
	}

	compiled, err := script.RunContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("camera script: %w", err)
	}
	if !compiled.IsDefined("keyframes") {
		return nil, fmt.Errorf("camera script defines no keyframes: %w", ErrEmpty)
	}
	entries := compiled.Get("keyframes").Array()
	if len(entries) == 0 {
		return nil, ErrEmpty
	}

	pos, lookat, up := orbit.first()
	prev := Keyframe{Position: pos, LookAt: lookat, Up: up}
	keys := make([]Keyframe, 0, len(entries))
	for i, e := range entries {
		kf, err := scriptEntry(e, prev)
		if err != nil {
			return nil, &FormatError{Line: i + 1, Err: err}
		}
		keys = append(keys, kf)
		prev = kf
	}
	return keys, nil
}

func scriptEntry(e interface{}, prev Keyframe) (Keyframe, error) {
	m, ok := e.(map[string]interface{})
	if !ok {
		return Keyframe{}, fmt.Errorf("keyframe must be a map, got %T", e)
	}
	t, ok := toFloat(m["t"])
	if !ok {
		return Keyframe{}, ErrTime
	}

	kf := Keyframe{Time: t, Position: prev.Position, LookAt: prev.LookAt, Up: prev.Up}
	for key, dst := range map[string]*mgl64.Vec3{"pos": &kf.Position, "lookat": &kf.LookAt, "up": &kf.Up} {
		raw, ok := m[key]
		if !ok {
			continue
		}
		arr, ok := raw.([]interface{})
		if !ok || len(arr) != 3 {
			return Keyframe{}, fmt.Errorf("%s: %w", key, ErrVector)
		}
		for i, c := range arr {
			f, ok := toFloat(c)
			if !ok {
				return Keyframe{}, fmt.Errorf("%s: %w", key, ErrVector)
			}
			dst[i] = f
		}
	}
	return kf, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
