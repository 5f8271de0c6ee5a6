// Package renderer drives one frame of the farm scene through a GPU
// backend in the fixed pass order described by package pipeline.
package renderer

import (
	"fmt"
	"image"
	"log/slog"

	"farmscene/assets"
	fmath "farmscene/math"
	"farmscene/pipeline"
	"farmscene/scene"
	"farmscene/state"
)

// Backend is the GPU side of a frame. The OpenGL implementation lives in
// internal/opengl.
type Backend interface {
	BeginFrame(clear fmath.Vec3)
	SetFrame(f pipeline.Frame)
	DrawMesh(mesh *scene.Mesh, model fmath.Mat4, diffuse, specular uint32)
	BeginBillboards()
	DrawBillboard(model fmath.Mat4, texture uint32)
	EndBillboards()
	DrawSkybox(cubemap uint32)
	Blur(passes []pipeline.BlurPass)
	Composite(c pipeline.Composite)
	DrawOverlay(img *image.RGBA)
	Resize(width, height int)
	ReloadShaders(path string) error
	Destroy()
}

// Presenter shows the finished frame, normally the window's buffer swap.
type Presenter interface {
	SwapBuffers()
}

type Options struct {
	Near, Far      float32
	BlurPasses     int
	FrustumCulling bool
}

func DefaultOptions() Options {
	return Options{
		Near:           0.1,
		Far:            100,
		BlurPasses:     pipeline.DefaultBlurPasses,
		FrustumCulling: true,
	}
}

// RenderEngine is the high-level renderer that drives the backend.
type RenderEngine struct {
	backend Backend
	present Presenter
	lib     *assets.Library
	Scene   *scene.Scene
	opts    Options
	logger  *slog.Logger

	models       map[string]*scene.Model
	bounds       map[string]scene.AABB
	billboardTex uint32
	skybox       uint32

	// Per-frame stats (populated during Render)
	lastDrawn  int
	lastCulled int
}

func NewRenderEngine(backend Backend, present Presenter, lib *assets.Library, sc *scene.Scene, opts Options, logger *slog.Logger) *RenderEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderEngine{
		backend: backend,
		present: present,
		lib:     lib,
		Scene:   sc,
		opts:    opts,
		logger:  logger,
		models:  map[string]*scene.Model{},
		bounds:  map[string]scene.AABB{},
	}
}

// LoadAssets loads every model, the billboard texture and the skybox faces
// named by the scene layout. A model that fails to load is logged and its
// placements are skipped; it never stops the program.
func (re *RenderEngine) LoadAssets() {
	layout := re.Scene.Layout
	for _, src := range layout.Models {
		m, err := re.lib.Model(src.Name, src.Path)
		if err != nil {
			re.logger.Error("model failed to load", "model", src.Name, "path", src.Path, "err", err)
			continue
		}
		re.models[src.Name] = m
		if len(m.Meshes) > 0 {
			re.bounds[src.Name] = m.Bounds
		}
	}
	re.billboardTex = re.lib.Texture(layout.BillboardTexture)

	var faces [6]string
	copy(faces[:], layout.SkyboxFaces)
	re.skybox = re.lib.Cubemap(faces)
}

// Frame computes the camera and light uniforms for s.
func (re *RenderEngine) Frame(s *state.ProgramState, aspect float32) pipeline.Frame {
	cam := s.Camera
	return pipeline.Frame{
		View:       cam.ViewMatrix(),
		Projection: cam.ProjectionMatrix(aspect, re.opts.Near, re.opts.Far),
		ViewPos:    cam.Position,
		Lights: scene.Lights{
			Dir:    s.DirLight,
			Points: re.Scene.PointLights(s.PointLight),
			Spot:   scene.Flashlight(cam, s.SpotlightOn),
		},
	}
}

// Render draws one frame at time t seconds. overlay is drawn on top when
// non-nil and the state has the overlay enabled.
func (re *RenderEngine) Render(s *state.ProgramState, t float64, aspect float32, overlay *image.RGBA) error {
	if re.Scene == nil || s == nil || s.Camera == nil {
		return fmt.Errorf("no scene or camera")
	}
	frame := re.Frame(s, aspect)
	showOverlay := s.OverlayEnabled && overlay != nil

	for _, stage := range pipeline.Stages(showOverlay) {
		switch stage {
		case pipeline.StageClear:
			re.backend.BeginFrame(s.ClearColor)
		case pipeline.StageLightUniforms:
			re.backend.SetFrame(frame)
		case pipeline.StageOpaque:
			re.drawOpaque(frame, t)
		case pipeline.StageBillboards:
			re.drawBillboards(s.Camera.Position)
		case pipeline.StageSkybox:
			re.backend.DrawSkybox(re.skybox)
		case pipeline.StageBlur:
			re.backend.Blur(pipeline.BlurSchedule(re.opts.BlurPasses))
		case pipeline.StageComposite:
			re.backend.Composite(pipeline.Composite{Bloom: s.BloomOn, Exposure: s.Exposure})
		case pipeline.StageOverlay:
			re.backend.DrawOverlay(overlay)
		case pipeline.StagePresent:
			if re.present != nil {
				re.present.SwapBuffers()
			}
		}
	}
	return nil
}

func (re *RenderEngine) drawOpaque(frame pipeline.Frame, t float64) {
	instances := re.Scene.Instances(t)
	total := len(instances)
	if re.opts.FrustumCulling {
		instances = scene.Visible(instances, frame.View.Mul(frame.Projection), re.bounds)
	}

	drawn := 0
	for _, in := range instances {
		m := re.models[in.Model]
		if m == nil {
			continue
		}
		for _, mesh := range m.Meshes {
			diffuse, specular := re.lib.MaterialTextures(mesh.Material)
			re.backend.DrawMesh(mesh, in.Matrix, diffuse, specular)
		}
		drawn++
	}
	re.lastDrawn = drawn
	re.lastCulled = total - len(instances)
}

func (re *RenderEngine) drawBillboards(eye fmath.Vec3) {
	billboards := re.Scene.Billboards(eye)
	if len(billboards) == 0 {
		return
	}
	re.backend.BeginBillboards()
	for _, b := range billboards {
		re.backend.DrawBillboard(b.ModelMatrix(), re.billboardTex)
	}
	re.backend.EndBillboards()
}

// Resize reallocates the size-dependent render targets.
func (re *RenderEngine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	re.backend.Resize(width, height)
}

// ReloadShaders recompiles the programs affected by the file at path.
func (re *RenderEngine) ReloadShaders(path string) error {
	if err := re.backend.ReloadShaders(path); err != nil {
		return fmt.Errorf("reload %q: %w", path, err)
	}
	return nil
}

// DrawStats returns the placements drawn and culled by the last Render.
func (re *RenderEngine) DrawStats() (drawn, culled int) {
	return re.lastDrawn, re.lastCulled
}

func (re *RenderEngine) Destroy() {
	re.backend.Destroy()
}
