package scene

import (
	"github.com/chewxy/math32"

	"farmscene/math"
)

// Plane represents a half-space: ax + by + cz + d = 0
// Normal (a, b, c) points into the "inside" of the frustum.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// DistanceTo returns the signed distance from a point to the plane.
// Positive means on the "inside" (same side as Normal).
func (p Plane) DistanceTo(pt math.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromVP extracts the six frustum planes from a view-projection matrix.
// The planes are normalized so DistanceTo returns a true distance in world units.
//
// Points are row vectors (clip = p·vp), so clip.x is built from column 0 of
// vp, clip.w from column 3, and so on.
func FrustumFromVP(vp math.Mat4) Frustum {
	col := func(k int) math.Vec4 {
		return math.Vec4{X: vp[0][k], Y: vp[1][k], Z: vp[2][k], W: vp[3][k]}
	}
	c0, c1, c2, c3 := col(0), col(1), col(2), col(3)

	var f Frustum
	f.Planes[0] = normalizePlane(c3.X+c0.X, c3.Y+c0.Y, c3.Z+c0.Z, c3.W+c0.W)
	f.Planes[1] = normalizePlane(c3.X-c0.X, c3.Y-c0.Y, c3.Z-c0.Z, c3.W-c0.W)
	f.Planes[2] = normalizePlane(c3.X+c1.X, c3.Y+c1.Y, c3.Z+c1.Z, c3.W+c1.W)
	f.Planes[3] = normalizePlane(c3.X-c1.X, c3.Y-c1.Y, c3.Z-c1.Z, c3.W-c1.W)
	f.Planes[4] = normalizePlane(c3.X+c2.X, c3.Y+c2.Y, c3.Z+c2.Z, c3.W+c2.W)
	f.Planes[5] = normalizePlane(c3.X-c2.X, c3.Y-c2.Y, c3.Z-c2.Z, c3.W-c2.W)
	return f
}

func normalizePlane(a, b, c, d float32) Plane {
	l := math.Vec3{X: a, Y: b, Z: c}.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: math.Vec3{X: a / l, Y: b / l, Z: c / l}, D: d / l}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math.Vec3
}

// Extend grows the box to contain p.
func (box AABB) Extend(p math.Vec3) AABB {
	box.Min = math.Vec3{X: math32.Min(box.Min.X, p.X), Y: math32.Min(box.Min.Y, p.Y), Z: math32.Min(box.Min.Z, p.Z)}
	box.Max = math.Vec3{X: math32.Max(box.Max.X, p.X), Y: math32.Max(box.Max.Y, p.Y), Z: math32.Max(box.Max.Z, p.Z)}
	return box
}

// IntersectsFrustum returns false if the AABB is completely outside the frustum.
// For each plane only the corner furthest along the normal is tested.
func (box AABB) IntersectsFrustum(f *Frustum) bool {
	for i := 0; i < 6; i++ {
		p := f.Planes[i]
		px := box.Max.X
		if p.Normal.X < 0 {
			px = box.Min.X
		}
		py := box.Max.Y
		if p.Normal.Y < 0 {
			py = box.Min.Y
		}
		pz := box.Max.Z
		if p.Normal.Z < 0 {
			pz = box.Min.Z
		}
		if p.DistanceTo(math.Vec3{X: px, Y: py, Z: pz}) < 0 {
			return false
		}
	}
	return true
}

// Transform returns the world-space box enclosing all 8 transformed corners.
func (box AABB) Transform(m math.Mat4) AABB {
	mn, mx := box.Min, box.Max
	corners := [8]math.Vec3{
		{X: mn.X, Y: mn.Y, Z: mn.Z},
		{X: mx.X, Y: mn.Y, Z: mn.Z},
		{X: mn.X, Y: mx.Y, Z: mn.Z},
		{X: mx.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mn.Y, Z: mx.Z},
		{X: mx.X, Y: mn.Y, Z: mx.Z},
		{X: mn.X, Y: mx.Y, Z: mx.Z},
		{X: mx.X, Y: mx.Y, Z: mx.Z},
	}
	first := m.MulVec3(corners[0])
	out := AABB{Min: first, Max: first}
	for _, c := range corners[1:] {
		out = out.Extend(m.MulVec3(c))
	}
	return out
}

// MeshBounds returns the local-space box of every vertex in meshes.
func MeshBounds(meshes []*Mesh) AABB {
	var out AABB
	first := true
	for _, m := range meshes {
		for _, v := range m.Vertices {
			if first {
				out = AABB{Min: v.Position, Max: v.Position}
				first = false
				continue
			}
			out = out.Extend(v.Position)
		}
	}
	return out
}
