package scene

import "farmscene/math"

// Scene is the layout resolved into per-frame draw data.
type Scene struct {
	Layout Layout
}

func NewScene(layout Layout) *Scene {
	return &Scene{Layout: layout}
}

// Instance is one model drawn with one world matrix.
type Instance struct {
	Model  string
	Matrix math.Mat4
}

// Instances returns every placement in layout order at time t seconds.
func (s *Scene) Instances(t float64) []Instance {
	out := make([]Instance, len(s.Layout.Placements))
	for i, p := range s.Layout.Placements {
		out[i] = Instance{Model: p.Model, Matrix: p.ModelMatrix(t)}
	}
	return out
}

// Visible drops instances whose bounds fall outside the view-projection
// frustum. Instances without known bounds are kept.
func Visible(instances []Instance, viewProj math.Mat4, bounds map[string]AABB) []Instance {
	f := FrustumFromVP(viewProj)
	out := instances[:0:0]
	for _, in := range instances {
		b, ok := bounds[in.Model]
		if ok && !b.Transform(in.Matrix).IntersectsFrustum(&f) {
			continue
		}
		out = append(out, in)
	}
	return out
}

// PointLights places a copy of template at every layout light position.
func (s *Scene) PointLights(template PointLight) []PointLight {
	out := make([]PointLight, len(s.Layout.PointLights))
	for i, p := range s.Layout.PointLights {
		out[i] = template.At(p.Vec3())
	}
	return out
}

// Billboards returns the layout billboards sorted for blending from eye.
func (s *Scene) Billboards(eye math.Vec3) []Billboard {
	return SortBackToFront(s.Layout.Billboards, eye)
}
