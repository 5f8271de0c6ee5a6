package scene

import "farmscene/core"

// Material describes the Phong surface of a mesh. Texture paths are
// resolved and uploaded by the asset library; an empty path means the
// flat color is used instead.
type Material struct {
	Name      string
	Diffuse   core.Color
	Specular  core.Color
	Shininess float32

	DiffuseTexture  string
	SpecularTexture string
}

// DefaultMaterial returns a plain white matte material.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "default",
		Diffuse:   core.ColorWhite,
		Specular:  core.Color{R: 0.3, G: 0.3, B: 0.3, A: 1},
		Shininess: 32,
	}
}

// Textures lists the texture files this material references.
func (m *Material) Textures() []string {
	var paths []string
	if m.DiffuseTexture != "" {
		paths = append(paths, m.DiffuseTexture)
	}
	if m.SpecularTexture != "" {
		paths = append(paths, m.SpecularTexture)
	}
	return paths
}
