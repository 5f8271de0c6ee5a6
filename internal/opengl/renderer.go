package opengl

import (
	"fmt"
	"image"
	"log/slog"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	fmath "farmscene/math"
	"farmscene/pipeline"
	"farmscene/scene"
)

// maxPointLights matches MAX_POINT_LIGHTS in the lit shader.
const maxPointLights = 4

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	logger  *slog.Logger
	shaders *shaderSet

	lit       *program
	billboard *program

	postProcess *PostProcessFBO
	skybox      *Skybox
	overlay     *overlayPanel
	quad        *scene.Mesh

	frame     pipeline.Frame
	gpuMeshes map[*scene.Mesh]*GPUMesh
	textures  []uint32
}

// NewRenderer initialises OpenGL and builds every program and render
// target at width x height. Must be called after the window context is
// made current. shaderDir may hold <program>.vert/.frag overrides.
func NewRenderer(width, height int, shaderDir string, logger *slog.Logger) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("opengl initialised", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	shaders, err := newShaderSet(shaderDir, logger)
	if err != nil {
		return nil, err
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	r := &Renderer{
		logger:    logger,
		shaders:   shaders,
		lit:       shaders.get(progLit),
		billboard: shaders.get(progBillboard),
		quad:      scene.CreateBillboardQuad(),
		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
	}
	r.postProcess = newPostProcessFBO(width, height, shaders.get(progBlur), shaders.get(progComposite), logger)
	r.skybox = newSkybox(shaders.get(progSkybox))
	r.overlay = newOverlayPanel(shaders.get(progOverlay))
	return r, nil
}

// BeginFrame binds the HDR target and clears it with clear.
func (r *Renderer) BeginFrame(clear fmath.Vec3) {
	gl.Enable(gl.DEPTH_TEST)
	r.postProcess.Bind(clear.X, clear.Y, clear.Z)
}

// SetFrame uploads the camera and lighting uniforms used by every draw
// until the next call.
func (r *Renderer) SetFrame(f pipeline.Frame) {
	r.frame = f

	p := r.lit
	p.use()
	p.setMat4("view", f.View)
	p.setMat4("projection", f.Projection)
	p.setVec3("viewPosition", f.ViewPos)

	d := f.Lights.Dir
	p.setVec3("dirLight.direction", d.Direction)
	p.setVec3("dirLight.ambient", d.Ambient)
	p.setVec3("dirLight.diffuse", d.Diffuse)
	p.setVec3("dirLight.specular", d.Specular)

	n := min(len(f.Lights.Points), maxPointLights)
	p.setInt("pointLightCount", int32(n))
	for i, pl := range f.Lights.Points[:n] {
		prefix := fmt.Sprintf("pointLights[%d].", i)
		p.setVec3(prefix+"position", pl.Position)
		p.setVec3(prefix+"ambient", pl.Ambient)
		p.setVec3(prefix+"diffuse", pl.Diffuse)
		p.setVec3(prefix+"specular", pl.Specular)
		p.setFloat(prefix+"constant", pl.Constant)
		p.setFloat(prefix+"linear", pl.Linear)
		p.setFloat(prefix+"quadratic", pl.Quadratic)
	}

	s := f.Lights.Spot
	p.setVec3("spotLight.position", s.Position)
	p.setVec3("spotLight.direction", s.Direction)
	p.setVec3("spotLight.ambient", s.Ambient)
	p.setVec3("spotLight.diffuse", s.Diffuse)
	p.setVec3("spotLight.specular", s.Specular)
	p.setFloat("spotLight.constant", s.Constant)
	p.setFloat("spotLight.linear", s.Linear)
	p.setFloat("spotLight.quadratic", s.Quadratic)
	p.setFloat("spotLight.cutOff", s.CutOff)
	p.setFloat("spotLight.outerCutOff", s.OuterCutOff)

	r.billboard.use()
	r.billboard.setMat4("view", f.View)
	r.billboard.setMat4("projection", f.Projection)
}

// DrawMesh draws mesh with the lit shader. diffuse and specular are texture
// handles; 0 falls back to the material colours.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, model fmath.Mat4, diffuse, specular uint32) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}
	mat := mesh.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}

	p := r.lit
	p.use()
	p.setMat4("model", model)
	p.setVec3("material.diffuse", fmath.Vec3{X: mat.Diffuse.R, Y: mat.Diffuse.G, Z: mat.Diffuse.B})
	p.setVec3("material.specular", fmath.Vec3{X: mat.Specular.R, Y: mat.Specular.G, Z: mat.Specular.B})
	p.setFloat("material.shininess", mat.Shininess)
	p.setBool("material.hasDiffuseMap", diffuse != 0)
	p.setBool("material.hasSpecularMap", specular != 0)
	bindTexture(0, gl.TEXTURE_2D, diffuse)
	bindTexture(1, gl.TEXTURE_2D, specular)

	gpu.draw()
}

// BeginBillboards enables alpha blending for the transparent pass. Quads
// are seen from both sides, so culling is off until EndBillboards.
func (r *Renderer) BeginBillboards() {
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.CULL_FACE)
	r.billboard.use()
}

func (r *Renderer) DrawBillboard(model fmath.Mat4, texture uint32) {
	gpu := r.ensureUploaded(r.quad)
	r.billboard.use()
	r.billboard.setMat4("model", model)
	bindTexture(0, gl.TEXTURE_2D, texture)
	gpu.draw()
}

func (r *Renderer) EndBillboards() {
	gl.Enable(gl.CULL_FACE)
	gl.Disable(gl.BLEND)
}

// DrawSkybox draws cubemap with the current frame's camera.
func (r *Renderer) DrawSkybox(cubemap uint32) {
	r.skybox.Draw(r.frame.View, r.frame.Projection, cubemap)
}

func (r *Renderer) Blur(passes []pipeline.BlurPass) {
	r.postProcess.Blur(passes)
}

func (r *Renderer) Composite(c pipeline.Composite) {
	r.postProcess.Composite(c)
}

// DrawOverlay blends img over the top-left corner of the default framebuffer.
func (r *Renderer) DrawOverlay(img *image.RGBA) {
	r.overlay.draw(img, r.postProcess.Width, r.postProcess.Height)
}

// Resize reallocates the HDR and blur targets.
func (r *Renderer) Resize(width, height int) {
	r.postProcess.Resize(width, height)
	r.logger.Debug("render targets resized", "width", width, "height", height)
}

// ReloadShaders recompiles the program(s) fed by the changed file at path.
// Programs that fail to compile keep running their previous version.
func (r *Renderer) ReloadShaders(path string) error {
	return r.shaders.reload(path)
}

// Destroy frees every GPU resource owned by the renderer.
func (r *Renderer) Destroy() {
	for mesh, gpu := range r.gpuMeshes {
		gpu.destroy()
		delete(r.gpuMeshes, mesh)
	}
	r.deleteTextures()
	r.overlay.destroy()
	r.skybox.Destroy()
	r.postProcess.Destroy()
	r.shaders.destroy()
}
