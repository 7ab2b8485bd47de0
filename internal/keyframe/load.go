package keyframe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivlev/flycam/internal/logging"
)

// SourceDefault names the built-in orbit in Result.Source.
const SourceDefault = "default"

// Result is the outcome of ingesting keyframes. Sequence is always usable:
// when the file was rejected it holds the default orbit and Reason says why.
type Result struct {
	Sequence *Sequence
	Source   string
	Reason   error
}

// Fallback reports whether the default orbit replaced a rejected file.
func (r Result) Fallback() bool {
	return r.Reason != nil
}

// Load ingests the keyframe file at path. An empty path selects the default
// orbit. Errors never escape: a broken file degrades to the default orbit and
// the reason is logged and returned in the Result.
func Load(ctx context.Context, path string, loop bool, orbit Orbit) Result {
	if path == "" {
		return Result{Sequence: Default(orbit), Source: SourceDefault}
	}

	seq, err := load(ctx, path, loop, orbit)
	if err != nil {
		err = fmt.Errorf("%s: %w", path, err)
		logging.Logger().Warn("keyframe file rejected, using default animation", "err", err)
		return Result{Sequence: Default(orbit), Source: SourceDefault, Reason: err}
	}

	logging.Logger().Info("keyframes loaded", "path", path, "count", seq.Len()-2, "loop", loop)
	return Result{Sequence: seq, Source: path}
}

func load(ctx context.Context, path string, loop bool, orbit Orbit) (*Sequence, error) {
	user, err := ReadFile(ctx, path, orbit)
	if err != nil {
		return nil, err
	}
	return Build(user, loop)
}

// ReadFile reads user keyframes from a YAML scenario (.yaml, .yml), a tengo
// script (.tengo) or the line format (anything else).
func ReadFile(ctx context.Context, path string, orbit Orbit) ([]Keyframe, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		scenario, err := ReadScenario(path, orbit)
		if err != nil {
			return nil, err
		}
		if len(scenario.Keyframes) == 0 {
			return nil, ErrEmpty
		}
		return scenario.Keyframes, nil
	case ".tengo":
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return RunScript(ctx, src, orbit)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return Parse(f, orbit)
	}
}
