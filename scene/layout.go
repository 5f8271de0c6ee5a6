package scene

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"

	fmath "farmscene/math"
)

// Triple is a vector written as a three-element TOML array.
type Triple [3]float32

func (t Triple) Vec3() fmath.Vec3 {
	return fmath.Vec3{X: t[0], Y: t[1], Z: t[2]}
}

func TripleOf(v fmath.Vec3) Triple {
	return Triple{v.X, v.Y, v.Z}
}

// ModelSource names a model file relative to the resources directory.
type ModelSource struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// Placement puts one instance of a model into the world.
// Rotation is in degrees, applied about X, then Y, then Z.
type Placement struct {
	Model       string  `toml:"model"`
	Translation Triple  `toml:"translation"`
	Rotation    Triple  `toml:"rotation"`
	Scale       float32 `toml:"scale"`
	// BobAmplitude and BobFrequency move the instance vertically by
	// amplitude·cos(t·frequency). Zero amplitude disables it.
	BobAmplitude float32 `toml:"bob_amplitude,omitempty"`
	BobFrequency float32 `toml:"bob_frequency,omitempty"`
}

// ModelMatrix returns translate · rotX · rotY · rotZ · scale at time t seconds.
func (p Placement) ModelMatrix(t float64) fmath.Mat4 {
	pos := p.Translation.Vec3()
	if p.BobAmplitude != 0 {
		pos.Y += p.BobAmplitude * math32.Cos(float32(t)*p.BobFrequency)
	}
	euler := fmath.Vec3{
		X: fmath.Radians(p.Rotation[0]),
		Y: fmath.Radians(p.Rotation[1]),
		Z: fmath.Radians(p.Rotation[2]),
	}
	return fmath.Mat4TRS(pos, euler, fmath.Vec3{X: p.Scale, Y: p.Scale, Z: p.Scale})
}

// Billboard is a textured quad drawn with alpha blending after opaque geometry.
type Billboard struct {
	Translation Triple  `toml:"translation"`
	Rotation    Triple  `toml:"rotation"`
	Scale       float32 `toml:"scale"`
}

func (b Billboard) ModelMatrix() fmath.Mat4 {
	return Placement{Translation: b.Translation, Rotation: b.Rotation, Scale: b.Scale}.ModelMatrix(0)
}

// Layout is the full static content of the scene.
type Layout struct {
	CameraStart      Triple        `toml:"camera_start"`
	Models           []ModelSource `toml:"model"`
	Placements       []Placement   `toml:"placement"`
	Billboards       []Billboard   `toml:"billboard"`
	BillboardTexture string        `toml:"billboard_texture"`
	// SkyboxFaces are ordered +X, -X, +Y, -Y, +Z, -Z.
	SkyboxFaces []string `toml:"skybox_faces"`
	PointLights []Triple `toml:"point_lights"`
}

// DefaultLayout is the farm: fences, a carriage, the farmhouse, a grass
// patch, a bobbing bumblebee and one grass billboard.
func DefaultLayout() Layout {
	return Layout{
		CameraStart: Triple{-2.32, 0.54, 5.87},
		Models: []ModelSource{
			{"fence", "objects/ograda/13080_Wrought_Iron_fence_with_brick_v1_L2.obj"},
			{"carriage", "objects/kocije/13915_Horse_and_Carriage_v1_l3.obj"},
			{"farmhouse", "objects/kuca/Farmhouse Maya 2016 Updated/farmhouse_obj.obj"},
			{"grass_patch", "objects/trava/10450_Rectangular_Grass_Patch_v1_iterations-2.obj"},
			{"picket_fence", "objects/Gothic_Wood_Picket_Fence_Panel_v1_L3.123c0a8b2f5-63a6-492b-921a-25a88a08d240/13077_Gothic_Picket_Fence_Panel_v3_l3.obj"},
			{"bumblebee", "objects/Bumblebee_L3.123c7693bf01-7e49-4479-a0b7-5e9659e7fdd9/10006_Bumblebee_v1_L3.obj"},
		},
		Placements: []Placement{
			{Model: "fence", Translation: Triple{-49, 2.19, 44}, Rotation: Triple{-91, 1, -89}, Scale: 0.05},
			{Model: "carriage", Translation: Triple{-66, 4.2, 39}, Rotation: Triple{2431, 359.2, 82}, Scale: 0.02},
			{Model: "farmhouse", Translation: Triple{-72, 2.2, 52}, Rotation: Triple{-2, 2, 0}, Scale: 0.35},
			{Model: "grass_patch", Translation: Triple{-63, 1, 45}, Rotation: Triple{88, 181, -178}, Scale: 0.13},
			{Model: "picket_fence", Translation: Triple{-72, 2, 64}, Rotation: Triple{-90, 0, 2}, Scale: 0.09},
			{Model: "picket_fence", Translation: Triple{-81.5, 1, 55}, Rotation: Triple{89, 180, -88}, Scale: 0.09},
			{Model: "picket_fence", Translation: Triple{-82, 1, 37}, Rotation: Triple{-92, 0, 93}, Scale: 0.08},
			{Model: "picket_fence", Translation: Triple{-53, 2, 63}, Rotation: Triple{-91, -1, 4}, Scale: 0.09},
			{Model: "picket_fence", Translation: Triple{-46, 2.5, 57}, Rotation: Triple{-91, 1, -66}, Scale: 0.05},
			{
				Model: "bumblebee", Translation: Triple{-73, 5, 48.3}, Rotation: Triple{98, -188, -29}, Scale: 0.05,
				BobAmplitude: 1, BobFrequency: 0.6,
			},
		},
		Billboards: []Billboard{
			{Translation: Triple{-50.8, 3.566, 35}, Rotation: Triple{9, -100, 16}, Scale: 3.5},
		},
		BillboardTexture: "textures/grass.png",
		SkyboxFaces: []string{
			"textures/skybox/posx.jpg",
			"textures/skybox/negx.jpg",
			"textures/skybox/posy.jpg",
			"textures/skybox/negy.jpg",
			"textures/skybox/posz.jpg",
			"textures/skybox/negz.jpg",
		},
		PointLights: []Triple{
			{-0.8, 0.05, 2.7},
			{-1.2, 0.3, -0.05},
		},
	}
}

// LoadLayout reads a TOML layout file. Sections missing from the file keep
// the default farm content.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout %q: %w", path, err)
	}
	return DecodeLayout(data)
}

func DecodeLayout(data []byte) (Layout, error) {
	var l Layout
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}

	def := DefaultLayout()
	if l.CameraStart == (Triple{}) {
		l.CameraStart = def.CameraStart
	}
	if l.Models == nil {
		l.Models = def.Models
	}
	if l.Placements == nil {
		l.Placements = def.Placements
	}
	if l.Billboards == nil {
		l.Billboards = def.Billboards
	}
	if l.BillboardTexture == "" {
		l.BillboardTexture = def.BillboardTexture
	}
	if l.SkyboxFaces == nil {
		l.SkyboxFaces = def.SkyboxFaces
	}
	if l.PointLights == nil {
		l.PointLights = def.PointLights
	}
	return l, l.Validate()
}

// Validate checks that every placement refers to a declared model.
func (l Layout) Validate() error {
	names := make(map[string]bool, len(l.Models))
	for _, m := range l.Models {
		names[m.Name] = true
	}
	for i, p := range l.Placements {
		if !names[p.Model] {
			return fmt.Errorf("placement %d: unknown model %q", i, p.Model)
		}
	}
	if len(l.SkyboxFaces) != 6 {
		return fmt.Errorf("skybox needs 6 faces, got %d", len(l.SkyboxFaces))
	}
	return nil
}

// EncodeLayout renders l as TOML.
func EncodeLayout(l Layout) ([]byte, error) {
	return toml.Marshal(l)
}

// SortBackToFront orders billboards from farthest to nearest to eye, so
// alpha blending composites correctly. The input slice is not modified.
func SortBackToFront(billboards []Billboard, eye fmath.Vec3) []Billboard {
	sorted := make([]Billboard, len(billboards))
	copy(sorted, billboards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Translation.Vec3().DistanceSqr(eye) > sorted[j].Translation.Vec3().DistanceSqr(eye)
	})
	return sorted
}
