// Package assets loads textures, cubemaps and models from the resources
// directory and hands their pixel data to the GPU backend, once per path.
package assets

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"farmscene/scene"
)

// Uploader creates GPU objects. Handle 0 means "nothing bound".
type Uploader interface {
	UploadTexture(tex *scene.Texture) uint32
	// UploadCubemap receives faces ordered +X, -X, +Y, -Y, +Z, -Z.
	// Missing faces are nil and left empty.
	UploadCubemap(faces [6]*scene.Texture) uint32
}

// Library caches everything it loads by path.
type Library struct {
	root   string
	up     Uploader
	logger *slog.Logger

	loadTexture func(path string) (*scene.Texture, error)
	loadModel   func(name, path string) (*scene.Model, error)

	textures map[string]uint32
	cubemaps map[[6]string]uint32
	models   map[string]*scene.Model
}

// NewLibrary resolves relative paths against root.
func NewLibrary(root string, up Uploader, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		root:        root,
		up:          up,
		logger:      logger,
		loadTexture: scene.LoadTexture,
		loadModel:   scene.LoadModel,
		textures:    map[string]uint32{},
		cubemaps:    map[[6]string]uint32{},
		models:      map[string]*scene.Model{},
	}
}

// Path resolves p against the library root. Absolute paths are kept.
func (l *Library) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(l.root, p)
}

// Texture loads and uploads the image at path. On failure it logs the
// path and returns 0.
func (l *Library) Texture(path string) uint32 {
	return l.texture(l.Path(path))
}

func (l *Library) texture(full string) uint32 {
	if id, ok := l.textures[full]; ok {
		return id
	}
	tex, err := l.loadTexture(full)
	if err != nil {
		l.logger.Error("texture failed to load", "path", full, "err", err)
		l.textures[full] = 0
		return 0
	}
	id := l.up.UploadTexture(tex)
	l.textures[full] = id
	l.logger.Debug("texture loaded", "path", full, "width", tex.Width, "height", tex.Height, "id", id)
	return id
}

// Cubemap loads six faces ordered +X, -X, +Y, -Y, +Z, -Z into one cubemap.
// Faces that fail to load are logged and skipped.
func (l *Library) Cubemap(faces [6]string) uint32 {
	var full [6]string
	for i, f := range faces {
		full[i] = l.Path(f)
	}
	if id, ok := l.cubemaps[full]; ok {
		return id
	}

	var texs [6]*scene.Texture
	for i, path := range full {
		tex, err := l.loadTexture(path)
		if err != nil {
			l.logger.Error("cubemap texture failed to load", "path", path, "err", err)
			continue
		}
		texs[i] = tex
	}
	id := l.up.UploadCubemap(texs)
	l.cubemaps[full] = id
	return id
}

// Model loads the model at path and uploads every texture its materials
// reference.
func (l *Library) Model(name, path string) (*scene.Model, error) {
	full := l.Path(path)
	if m, ok := l.models[full]; ok {
		return m, nil
	}
	m, err := l.loadModel(name, full)
	if err != nil {
		return nil, fmt.Errorf("load model %q: %w", name, err)
	}
	for key, tex := range m.Images {
		if _, ok := l.textures[key]; !ok {
			l.textures[key] = l.up.UploadTexture(tex)
		}
	}
	for _, p := range m.Textures() {
		l.texture(p)
	}
	l.models[full] = m
	l.logger.Info("model loaded", "name", name, "meshes", len(m.Meshes))
	return m, nil
}

// MaterialTextures returns the handles of a loaded material's diffuse and
// specular maps, 0 when absent or failed.
func (l *Library) MaterialTextures(m *scene.Material) (diffuse, specular uint32) {
	if m == nil {
		return 0, 0
	}
	if m.DiffuseTexture != "" {
		diffuse = l.textures[m.DiffuseTexture]
	}
	if m.SpecularTexture != "" {
		specular = l.textures[m.SpecularTexture]
	}
	return diffuse, specular
}
