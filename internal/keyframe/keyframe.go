package keyframe

import "github.com/go-gl/mathgl/mgl64"

// Keyframe is a camera pose pinned to a moment of the animation
type Keyframe struct {
	Time     float64    `yaml:"time"`   // Time in seconds
	Position mgl64.Vec3 `yaml:"pos"`    // Eye position
	LookAt   mgl64.Vec3 `yaml:"lookat"` // Point the camera looks at
	Up       mgl64.Vec3 `yaml:"up"`     // Up vector, used as is for the whole segment
}

// Scenario is the YAML form of a keyframe file
type Scenario struct {
	Version   string     `yaml:"version"`
	Loop      bool       `yaml:"loop,omitempty"`
	Ease      bool       `yaml:"ease,omitempty"`
	Keyframes []Keyframe `yaml:"keyframes"`
}

// Orbit describes the bounding sphere of the scene the camera flies around
type Orbit struct {
	Center   mgl64.Vec3
	Diameter float64
}

// DefaultOrbit is a sphere of diameter 3 centered at the origin
func DefaultOrbit() Orbit {
	return Orbit{Diameter: 3}
}

// first returns the pose used for vectors missing on the first line of a file
func (o Orbit) first() (pos, lookat, up mgl64.Vec3) {
	return o.Center.Add(mgl64.Vec3{o.Diameter, 0, 0}), o.Center, mgl64.Vec3{0, 1, 0}
}
