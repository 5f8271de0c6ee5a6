package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"farmscene/assets"
	"farmscene/scene"
)

var _ assets.Uploader = (*Renderer)(nil)

// UploadTexture creates a mipmapped 2D texture from tex and returns its
// handle, or 0 when tex has no pixels. Textures with transparency clamp at
// the edges so blended quads do not bleed the opposite border.
// Call from the thread that owns the GL context.
func (r *Renderer) UploadTexture(tex *scene.Texture) uint32 {
	if tex == nil || len(tex.Pixels) == 0 {
		return 0
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	wrap := int32(gl.REPEAT)
	if tex.HasAlpha {
		wrap = gl.CLAMP_TO_EDGE
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(tex.Width), int32(tex.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(tex.Pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	r.textures = append(r.textures, id)
	return id
}

// UploadCubemap creates a cubemap from faces ordered +X, -X, +Y, -Y, +Z, -Z.
// Nil faces are left without storage. The handle is always created.
func (r *Renderer) UploadCubemap(faces [6]*scene.Texture) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)

	for i, face := range faces {
		if face == nil || len(face.Pixels) == 0 {
			continue
		}
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA,
			int32(face.Width), int32(face.Height), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(face.Pixels))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	r.textures = append(r.textures, id)
	return id
}

// bindTexture binds id to unit, or unbinds the unit when id is 0.
func bindTexture(unit uint32, target uint32, id uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(target, id)
}

func (r *Renderer) deleteTextures() {
	if len(r.textures) > 0 {
		gl.DeleteTextures(int32(len(r.textures)), &r.textures[0])
		r.textures = nil
	}
}
