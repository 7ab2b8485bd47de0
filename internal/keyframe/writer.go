package keyframe

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// ScenarioVersion is written into every exported scenario
const ScenarioVersion = "1.0"

// WriteScenario writes a scenario to a YAML file
func WriteScenario(scenario *Scenario, path string) error {
	data, err := yaml.Marshal(scenario)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// scenarioFile is the on-disk form of a Scenario. Vectors are optional so
// that missing ones can be inherited like in the line format.
type scenarioFile struct {
	Version   string          `yaml:"version"`
	Loop      bool            `yaml:"loop"`
	Ease      bool            `yaml:"ease"`
	Keyframes []keyframeEntry `yaml:"keyframes"`
}

type keyframeEntry struct {
	Time     *float64  `yaml:"time"`
	Position []float64 `yaml:"pos"`
	LookAt   []float64 `yaml:"lookat"`
	Up       []float64 `yaml:"up"`
}

// ReadScenario reads a scenario from a YAML file. A keyframe without pos,
// lookat or up takes it from the previous keyframe; the first keyframe
// falls back to the orbit's starting pose.
func ReadScenario(path string, orbit Orbit) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	scenario := &Scenario{
		Version:   file.Version,
		Loop:      file.Loop,
		Ease:      file.Ease,
		Keyframes: make([]Keyframe, 0, len(file.Keyframes)),
	}
	pos, lookat, up := orbit.first()
	prev := Keyframe{Position: pos, LookAt: lookat, Up: up}
	for i, e := range file.Keyframes {
		kf, err := e.resolve(prev)
		if err != nil {
			return nil, &FormatError{Line: i + 1, Err: err}
		}
		scenario.Keyframes = append(scenario.Keyframes, kf)
		prev = kf
	}
	return scenario, nil
}

func (e keyframeEntry) resolve(prev Keyframe) (Keyframe, error) {
	if e.Time == nil {
		return Keyframe{}, ErrTime
	}
	kf := Keyframe{Time: *e.Time, Position: prev.Position, LookAt: prev.LookAt, Up: prev.Up}
	vectors := []struct {
		key string
		src []float64
		dst *mgl64.Vec3
	}{
		{"pos", e.Position, &kf.Position},
		{"lookat", e.LookAt, &kf.LookAt},
		{"up", e.Up, &kf.Up},
	}
	for _, v := range vectors {
		if v.src == nil {
			continue
		}
		if len(v.src) != 3 {
			return Keyframe{}, fmt.Errorf("%s: %w", v.key, ErrVector)
		}
		*v.dst = mgl64.Vec3{v.src[0], v.src[1], v.src[2]}
	}
	return kf, nil
}

// WriteText writes keyframes in the line format, one keyframe per line
func WriteText(w io.Writer, keys []Keyframe) error {
	bw := bufio.NewWriter(w)
	for _, kf := range keys {
		if _, err := fmt.Fprintln(bw, FormatLine(kf)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatLine renders a keyframe as "t=..,pos=x;y;z,lookat=x;y;z,up=x;y;z"
func FormatLine(kf Keyframe) string {
	return "t=" + formatFloat(kf.Time) +
		",pos=" + formatVec(kf.Position) +
		",lookat=" + formatVec(kf.LookAt) +
		",up=" + formatVec(kf.Up)
}

func formatVec(v mgl64.Vec3) string {
	return formatFloat(v[0]) + ";" + formatFloat(v[1]) + ";" + formatFloat(v[2])
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
