package opengl

import (
	"image"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// overlayMargin is the gap in pixels between the panel and the window corner.
const overlayMargin = 10

// overlayPanel is a screen-space textured quad anchored top-left.
type overlayPanel struct {
	prog *program
	vao  uint32
	tex  uint32
	w, h int
}

func newOverlayPanel(prog *program) *overlayPanel {
	o := &overlayPanel{prog: prog}
	gl.GenVertexArrays(1, &o.vao)
	gl.GenTextures(1, &o.tex)
	gl.BindTexture(gl.TEXTURE_2D, o.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return o
}

// upload copies img into the panel texture, reallocating on size change.
func (o *overlayPanel) upload(img *image.RGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	gl.BindTexture(gl.TEXTURE_2D, o.tex)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	if w != o.w || h != o.h {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
		o.w, o.h = w, h
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h),
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	}
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// draw blends img over the default framebuffer of size screenW x screenH.
func (o *overlayPanel) draw(img *image.RGBA, screenW, screenH int32) {
	if img == nil || img.Rect.Empty() || screenW <= 0 || screenH <= 0 {
		return
	}
	o.upload(img)

	sw, sh := float32(screenW), float32(screenH)
	x0 := -1 + 2*float32(overlayMargin)/sw
	x1 := x0 + 2*float32(o.w)/sw
	y1 := 1 - 2*float32(overlayMargin)/sh
	y0 := y1 - 2*float32(o.h)/sh

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	o.prog.use()
	gl.Uniform4f(o.prog.loc("rect"), x0, y0, x1, y1)
	bindTexture(0, gl.TEXTURE_2D, o.tex)
	gl.BindVertexArray(o.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)

	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

func (o *overlayPanel) destroy() {
	gl.DeleteVertexArrays(1, &o.vao)
	gl.DeleteTextures(1, &o.tex)
}
