package scene

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Model is a named set of meshes loaded from one file.
type Model struct {
	Name   string
	Meshes []*Mesh
	// Images holds textures already decoded from the model file itself
	// (embedded glTF images), keyed by the name their materials use.
	Images map[string]*Texture
	// Bounds is the local-space box around all meshes.
	Bounds AABB
}

// LoadModel picks the loader from the file extension.
func LoadModel(name, path string) (*Model, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		meshes, err := LoadOBJ(path)
		if err != nil {
			return nil, err
		}
		return &Model{Name: name, Meshes: meshes, Bounds: MeshBounds(meshes)}, nil
	case ".gltf", ".glb":
		return LoadGLTF(name, path)
	default:
		return nil, fmt.Errorf("model %q: unsupported format %q", name, ext)
	}
}

// Textures lists every texture file referenced by the model's materials,
// without duplicates, in first-use order.
func (m *Model) Textures() []string {
	seen := map[string]bool{}
	var paths []string
	for _, mesh := range m.Meshes {
		if mesh.Material == nil {
			continue
		}
		for _, p := range mesh.Material.Textures() {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	return paths
}
