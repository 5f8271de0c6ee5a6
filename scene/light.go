package scene

import (
	"github.com/chewxy/math32"

	fmath "farmscene/math"
)

// DirLight is a light infinitely far away, shining along Direction.
type DirLight struct {
	Direction fmath.Vec3
	Ambient   fmath.Vec3
	Diffuse   fmath.Vec3
	Specular  fmath.Vec3
}

// PointLight radiates from Position with 1/(c + l*d + q*d²) falloff.
type PointLight struct {
	Position  fmath.Vec3
	Ambient   fmath.Vec3
	Diffuse   fmath.Vec3
	Specular  fmath.Vec3
	Constant  float32
	Linear    float32
	Quadratic float32
}

// SpotLight is a point light restricted to a cone. CutOff and OuterCutOff
// hold cosines of the inner and outer half angles.
type SpotLight struct {
	Position    fmath.Vec3
	Direction   fmath.Vec3
	Ambient     fmath.Vec3
	Diffuse     fmath.Vec3
	Specular    fmath.Vec3
	Constant    float32
	Linear      float32
	Quadratic   float32
	CutOff      float32
	OuterCutOff float32
}

// Lights is everything the lit shader needs for one frame.
type Lights struct {
	Dir    DirLight
	Points []PointLight
	Spot   SpotLight
}

func Grey(v float32) fmath.Vec3 {
	return fmath.Vec3{X: v, Y: v, Z: v}
}

func DefaultDirLight() DirLight {
	return DirLight{
		Direction: fmath.Vec3{X: -0.2, Y: -1.0, Z: -0.3},
		Ambient:   Grey(0.3),
		Diffuse:   Grey(0.3),
		Specular:  Grey(0.2),
	}
}

func DefaultPointLight() PointLight {
	return PointLight{
		Position:  fmath.Vec3{X: -5.6, Y: 5.0, Z: 1.7},
		Ambient:   Grey(0.1),
		Diffuse:   Grey(0.6),
		Specular:  Grey(1.0),
		Constant:  0.3,
		Linear:    0.8,
		Quadratic: 0.4,
	}
}

// At returns a copy of p moved to position.
func (p PointLight) At(position fmath.Vec3) PointLight {
	p.Position = position
	return p
}

// Attenuation is the point light falloff factor at distance d.
func (p PointLight) Attenuation(d float32) float32 {
	return 1 / (p.Constant + p.Linear*d + p.Quadratic*d*d)
}

// Flashlight returns the camera-mounted spotlight. When off it keeps its
// geometry but contributes no diffuse or specular light.
func Flashlight(cam *Camera, on bool) SpotLight {
	s := SpotLight{
		Position:    cam.Position,
		Direction:   cam.Front,
		Ambient:     fmath.Vec3Zero,
		Diffuse:     Grey(1),
		Specular:    Grey(1),
		Constant:    1.0,
		Linear:      0.09,
		Quadratic:   0.032,
		CutOff:      cosDeg(12.5),
		OuterCutOff: cosDeg(15.0),
	}
	if !on {
		s.Diffuse = fmath.Vec3Zero
		s.Specular = fmath.Vec3Zero
	}
	return s
}

// cosDeg converts an angle in degrees to its cosine (for spot light cutoffs).
func cosDeg(deg float32) float32 {
	return math32.Cos(fmath.Radians(deg))
}
