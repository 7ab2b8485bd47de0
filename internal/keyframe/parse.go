package keyframe

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Parse reads keyframes in the line format
//
//	t=<float>[,pos=<x>;<y>;<z>][,lookat=<x>;<y>;<z>][,up=<x>;<y>;<z>]
//
// Vectors missing from a line are inherited from the previous keyframe, the
// first line falls back to the orbit pose. Blank lines and lines starting with
// '#' are skipped. Times must strictly increase.
func Parse(r io.Reader, orbit Orbit) ([]Keyframe, error) {
	pos, lookat, up := orbit.first()
	prev := Keyframe{Position: pos, LookAt: lookat, Up: up}

	var keys []Keyframe
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		kf, err := parseRecord(ParseKeyValues(line), prev)
		if err != nil {
			return nil, &FormatError{Line: lineNo, Err: err}
		}
		if len(keys) > 0 && !(kf.Time > prev.Time) {
			return nil, &FormatError{Line: lineNo, Err: ErrTime}
		}

		keys = append(keys, kf)
		prev = kf
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read keyframes: %w", err)
	}
	if len(keys) == 0 {
		return nil, ErrEmpty
	}
	return keys, nil
}

// ParseKeyValues splits "k1=v1, k2=v2" into a map. Keys are lower-cased,
// keys and values are trimmed. A pair without '=' maps to an empty value.
func ParseKeyValues(s string) map[string]string {
	kv := make(map[string]string)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		kv[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return kv
}

func parseRecord(kv map[string]string, prev Keyframe) (Keyframe, error) {
	raw, ok := kv["t"]
	if !ok {
		return Keyframe{}, ErrTime
	}
	t, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Keyframe{}, fmt.Errorf("%w: %q", ErrTime, raw)
	}

	kf := Keyframe{Time: t, Position: prev.Position, LookAt: prev.LookAt, Up: prev.Up}
	for key, dst := range map[string]*mgl64.Vec3{"pos": &kf.Position, "lookat": &kf.LookAt, "up": &kf.Up} {
		raw, ok := kv[key]
		if !ok {
			continue
		}
		v, err := parseVec(raw)
		if err != nil {
			return Keyframe{}, fmt.Errorf("%s: %w", key, err)
		}
		*dst = v
	}
	return kf, nil
}

func parseVec(s string) (mgl64.Vec3, error) {
	parts := strings.Split(s, ";")
	if len(parts) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("%w: %q", ErrVector, s)
	}
	var v mgl64.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mgl64.Vec3{}, fmt.Errorf("%w: %q", ErrVector, s)
		}
		v[i] = f
	}
	return v, nil
}
