package opengl

import (
	"fmt"
	"log/slog"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"farmscene/pipeline"
)

// PostProcessFBO is the HDR off-screen target the scene renders into, plus
// the two ping-pong buffers of the bloom blur.
//
// Colour attachment 0 holds the lit scene, attachment 1 the bright-pass
// output written by the same draw calls. Both are RGBA16F.
type PostProcessFBO struct {
	FBO      uint32
	ColorTex [2]uint32
	DepthRBO uint32
	Width    int32
	Height   int32

	pingFBO [2]uint32
	pingTex [2]uint32

	blur      *program
	composite *program
	quadVAO   uint32 // empty VAO for the fullscreen triangle

	// bloomTex is the texture the last Blur call finished in.
	bloomTex uint32

	logger *slog.Logger
}

func newPostProcessFBO(width, height int, blur, composite *program, logger *slog.Logger) *PostProcessFBO {
	pp := &PostProcessFBO{blur: blur, composite: composite, logger: logger}
	gl.GenVertexArrays(1, &pp.quadVAO)
	pp.alloc(width, height)
	return pp
}

func newColorTexture(width, height int32) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, width, height, 0, gl.RGBA, gl.HALF_FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id
}

// checkComplete logs an incomplete framebuffer. Rendering carries on.
func (pp *PostProcessFBO) checkComplete(what string) {
	if s := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); s != gl.FRAMEBUFFER_COMPLETE {
		pp.logger.Warn("framebuffer incomplete", "target", what, "status", fmt.Sprintf("0x%X", s))
	}
}

func (pp *PostProcessFBO) alloc(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	pp.Width = int32(width)
	pp.Height = int32(height)

	gl.GenFramebuffers(1, &pp.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, pp.FBO)
	for i := range pp.ColorTex {
		pp.ColorTex[i] = newColorTexture(pp.Width, pp.Height)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+uint32(i),
			gl.TEXTURE_2D, pp.ColorTex[i], 0)
	}
	gl.GenRenderbuffers(1, &pp.DepthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, pp.DepthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, pp.Width, pp.Height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, pp.DepthRBO)
	attachments := []uint32{gl.COLOR_ATTACHMENT0, gl.COLOR_ATTACHMENT1}
	gl.DrawBuffers(int32(len(attachments)), &attachments[0])
	pp.checkComplete("hdr")

	for i := range pp.pingFBO {
		gl.GenFramebuffers(1, &pp.pingFBO[i])
		gl.BindFramebuffer(gl.FRAMEBUFFER, pp.pingFBO[i])
		pp.pingTex[i] = newColorTexture(pp.Width, pp.Height)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, pp.pingTex[i], 0)
		pp.checkComplete(fmt.Sprintf("pingpong%d", i))
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	pp.bloomTex = pp.ColorTex[1]
}

func (pp *PostProcessFBO) free() {
	if pp.FBO != 0 {
		gl.DeleteFramebuffers(1, &pp.FBO)
		pp.FBO = 0
	}
	gl.DeleteTextures(int32(len(pp.ColorTex)), &pp.ColorTex[0])
	pp.ColorTex = [2]uint32{}
	if pp.DepthRBO != 0 {
		gl.DeleteRenderbuffers(1, &pp.DepthRBO)
		pp.DepthRBO = 0
	}
	gl.DeleteFramebuffers(int32(len(pp.pingFBO)), &pp.pingFBO[0])
	gl.DeleteTextures(int32(len(pp.pingTex)), &pp.pingTex[0])
	pp.pingFBO = [2]uint32{}
	pp.pingTex = [2]uint32{}
}

// Resize reallocates every attachment at the new pixel size.
func (pp *PostProcessFBO) Resize(width, height int) {
	pp.free()
	pp.alloc(width, height)
}

// Bind makes the HDR target current and clears it.
func (pp *PostProcessFBO) Bind(r, g, b float32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, pp.FBO)
	gl.Viewport(0, 0, pp.Width, pp.Height)
	gl.ClearColor(r, g, b, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Blur runs passes over the ping-pong buffers. The first pass reads the
// bright-pass attachment; each later pass reads the previous target.
func (pp *PostProcessFBO) Blur(passes []pipeline.BlurPass) {
	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(pp.quadVAO)
	gl.Viewport(0, 0, pp.Width, pp.Height)

	pp.blur.use()
	gl.Uniform1fv(pp.blur.loc("weight"), int32(len(pipeline.GaussianWeights)), &pipeline.GaussianWeights[0])
	for _, p := range passes {
		gl.BindFramebuffer(gl.FRAMEBUFFER, pp.pingFBO[p.Target])
		pp.blur.setBool("horizontal", p.Horizontal)
		bindTexture(0, gl.TEXTURE_2D, pp.source(p.Source))
		gl.DrawArrays(gl.TRIANGLES, 0, 3)
	}
	pp.bloomTex = pp.source(pipeline.FinalTarget(passes))

	gl.BindVertexArray(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Enable(gl.DEPTH_TEST)
}

func (pp *PostProcessFBO) source(i int) uint32 {
	if i == pipeline.BrightPass {
		return pp.ColorTex[1]
	}
	return pp.pingTex[i]
}

// Composite tone-maps the scene (plus the blurred bright pass when bloom is
// on) into the default framebuffer.
func (pp *PostProcessFBO) Composite(c pipeline.Composite) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, pp.Width, pp.Height)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Disable(gl.DEPTH_TEST)

	pp.composite.use()
	pp.composite.setBool("bloom", c.Bloom)
	pp.composite.setFloat("exposure", c.Exposure)
	pp.composite.setFloat("gamma", pipeline.Gamma)
	bindTexture(0, gl.TEXTURE_2D, pp.ColorTex[0])
	bindTexture(1, gl.TEXTURE_2D, pp.bloomTex)

	gl.BindVertexArray(pp.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}

// Destroy frees all GPU resources owned by this object.
func (pp *PostProcessFBO) Destroy() {
	pp.free()
	if pp.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &pp.quadVAO)
		pp.quadVAO = 0
	}
}
