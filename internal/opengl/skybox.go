package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	fmath "farmscene/math"
	"farmscene/scene"
)

// Skybox draws a cubemap on an inverted unit cube. The vertex shader uses
// the xyww trick (gl_Position.z = gl_Position.w) so every fragment lands at
// NDC depth 1.0, behind all scene geometry.
type Skybox struct {
	vao  uint32
	vbo  uint32
	prog *program
}

func newSkybox(prog *program) *Skybox {
	verts := scene.CreateSkyboxCube()
	sb := &Skybox{prog: prog}

	gl.GenVertexArrays(1, &sb.vao)
	gl.GenBuffers(1, &sb.vbo)
	gl.BindVertexArray(sb.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, sb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 12, gl.PtrOffset(0))
	gl.BindVertexArray(0)

	return sb
}

// Draw renders cubemap around the camera. The translation of view is
// stripped so the sky never moves with the eye.
func (sb *Skybox) Draw(view, proj fmath.Mat4, cubemap uint32) {
	// LEQUAL so depth=1.0 fragments pass against the cleared depth value.
	gl.DepthFunc(gl.LEQUAL)
	gl.Disable(gl.CULL_FACE)

	sb.prog.use()
	sb.prog.setMat4("view", view.WithoutTranslation())
	sb.prog.setMat4("projection", proj)
	bindTexture(0, gl.TEXTURE_CUBE_MAP, cubemap)

	gl.BindVertexArray(sb.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.BindVertexArray(0)

	gl.Enable(gl.CULL_FACE)
	gl.DepthFunc(gl.LESS)
}

// Destroy frees the cube geometry. The program belongs to the shader set.
func (sb *Skybox) Destroy() {
	gl.DeleteVertexArrays(1, &sb.vao)
	gl.DeleteBuffers(1, &sb.vbo)
}
