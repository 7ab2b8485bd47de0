package keyframe

import "github.com/go-gl/mathgl/mgl64"

// Sequence is a keyframe list padded with one extra control point at each
// end, so that every segment between user keyframes has four control points.
type Sequence struct {
	frames []Keyframe
	loop   bool
}

// Build pads the user keyframes and, when loop is set, closes the path by
// rewiring the two padding entries to the keyframes across the seam.
func Build(user []Keyframe, loop bool) (*Sequence, error) {
	if len(user) == 0 {
		return nil, ErrEmpty
	}
	for i := 1; i < len(user); i++ {
		if !(user[i].Time > user[i-1].Time) {
			return nil, &FormatError{Line: i + 1, Err: ErrTime}
		}
	}

	frames := make([]Keyframe, 0, len(user)+2)
	frames = append(frames, user[0])
	frames = append(frames, user...)
	frames = append(frames, user[len(user)-1])
	if len(frames) < 4 {
		return nil, ErrTooFew
	}

	if loop {
		if len(frames) < 5 {
			return nil, ErrLoopTooFew
		}
		n := len(frames)
		frames[0] = frames[n-3]
		frames[n-1] = frames[2]
	}

	return &Sequence{frames: frames, loop: loop}, nil
}

// Default returns the built-in orbit: four quarter turns around the sphere
// in the XZ plane, one second each, already closed into a loop.
func Default(orbit Orbit) *Sequence {
	d := orbit.Diameter
	at := func(t, x, z float64) Keyframe {
		return Keyframe{
			Time:     t,
			Position: orbit.Center.Add(mgl64.Vec3{x, 0, z}),
			LookAt:   orbit.Center,
			Up:       mgl64.Vec3{0, 1, 0},
		}
	}

	frames := make([]Keyframe, 0, 7)
	frames = append(frames,
		at(3, 0, -d),
		at(0, d, 0),
		at(1, 0, d),
		at(2, -d, 0),
	)
	frames = append(frames, frames[0], at(4, d, 0), frames[2])
	return &Sequence{frames: frames, loop: true}
}

// Len returns the number of entries including the padding.
func (s *Sequence) Len() int {
	return len(s.frames)
}

// At returns entry i of the padded list.
func (s *Sequence) At(i int) Keyframe {
	return s.frames[i]
}

// MinTime is the time of the first user keyframe.
func (s *Sequence) MinTime() float64 {
	return s.frames[1].Time
}

// MaxTime is the time of the last user keyframe.
func (s *Sequence) MaxTime() float64 {
	return s.frames[len(s.frames)-2].Time
}

// Looped reports whether the padding was rewired into a closed loop.
func (s *Sequence) Looped() bool {
	return s.loop
}

// Keyframes returns a copy of the user keyframes, padding excluded.
func (s *Sequence) Keyframes() []Keyframe {
	out := make([]Keyframe, len(s.frames)-2)
	copy(out, s.frames[1:len(s.frames)-1])
	return out
}
