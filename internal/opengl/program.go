package opengl

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	fmath "farmscene/math"
)

// Program names. A shader directory may override either stage of any of
// them with <name>.vert or <name>.frag.
const (
	progLit       = "lit"
	progBillboard = "billboard"
	progSkybox    = "skybox"
	progBlur      = "blur"
	progComposite = "composite"
	progOverlay   = "overlay"
)

type shaderSource struct {
	vert, frag string
	// samplers maps sampler uniforms to their texture units.
	samplers map[string]int32
}

var builtinShaders = map[string]shaderSource{
	progLit: {litVertSrc, litFragSrc, map[string]int32{
		"material.diffuseMap":  0,
		"material.specularMap": 1,
	}},
	progBillboard: {billboardVertSrc, billboardFragSrc, map[string]int32{"texture1": 0}},
	progSkybox:    {skyboxVertSrc, skyboxFragSrc, map[string]int32{"skybox": 0}},
	progBlur:      {fullscreenVertSrc, blurFragSrc, map[string]int32{"image": 0}},
	progComposite: {fullscreenVertSrc, compositeFragSrc, map[string]int32{"hdrBuffer": 0, "bloomBlur": 1}},
	progOverlay:   {overlayVertSrc, overlayFragSrc, map[string]int32{"panel": 0}},
}

// program is a linked shader program with lazily resolved uniform locations.
type program struct {
	name string
	id   uint32
	locs map[string]int32
}

func (p *program) use() { gl.UseProgram(p.id) }

func (p *program) loc(name string) int32 {
	if l, ok := p.locs[name]; ok {
		return l
	}
	l := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.locs[name] = l
	return l
}

func (p *program) setInt(name string, v int32)     { gl.Uniform1i(p.loc(name), v) }
func (p *program) setFloat(name string, v float32) { gl.Uniform1f(p.loc(name), v) }

func (p *program) setBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	gl.Uniform1i(p.loc(name), i)
}

func (p *program) setVec3(name string, v fmath.Vec3) {
	gl.Uniform3f(p.loc(name), v.X, v.Y, v.Z)
}

func (p *program) setMat4(name string, m fmath.Mat4) {
	gl.UniformMatrix4fv(p.loc(name), 1, false, (*float32)(unsafe.Pointer(&m[0][0])))
}

// shaderSet owns every program. Programs are swapped in place on reload so
// holders of a *program see the new one.
type shaderSet struct {
	dir      string
	logger   *slog.Logger
	programs map[string]*program
}

func newShaderSet(dir string, logger *slog.Logger) (*shaderSet, error) {
	s := &shaderSet{dir: dir, logger: logger, programs: map[string]*program{}}
	for name := range builtinShaders {
		p, err := s.build(name)
		if err != nil {
			s.destroy()
			return nil, err
		}
		s.programs[name] = p
	}
	return s, nil
}

func (s *shaderSet) get(name string) *program { return s.programs[name] }

// sources returns the built-in stages of name, replaced by any override
// found in the shader directory.
func (s *shaderSet) sources(name string) (vert, frag string, err error) {
	src := builtinShaders[name]
	vert, frag = src.vert, src.frag
	if s.dir == "" {
		return vert, frag, nil
	}
	read := func(ext, fallback string) (string, error) {
		data, err := os.ReadFile(filepath.Join(s.dir, name+ext))
		if errors.Is(err, fs.ErrNotExist) {
			return fallback, nil
		}
		if err != nil {
			return "", err
		}
		return string(data) + "\x00", nil
	}
	if vert, err = read(".vert", vert); err != nil {
		return "", "", err
	}
	if frag, err = read(".frag", frag); err != nil {
		return "", "", err
	}
	return vert, frag, nil
}

func (s *shaderSet) build(name string) (*program, error) {
	vert, frag, err := s.sources(name)
	if err != nil {
		return nil, fmt.Errorf("%s shader: %w", name, err)
	}
	id, err := newProgram(vert, frag)
	if err != nil {
		return nil, fmt.Errorf("%s shader: %w", name, err)
	}
	p := &program{name: name, id: id, locs: map[string]int32{}}
	p.use()
	for sampler, unit := range builtinShaders[name].samplers {
		p.setInt(sampler, unit)
	}
	return p, nil
}

// reload recompiles the program a changed file belongs to, or every program
// when the file name matches none of them. A program that fails to compile
// keeps its previous version.
func (s *shaderSet) reload(path string) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	names := []string{name}
	if _, ok := builtinShaders[name]; !ok {
		names = names[:0]
		for n := range builtinShaders {
			names = append(names, n)
		}
	}

	var errs []error
	for _, n := range names {
		fresh, err := s.build(n)
		if err != nil {
			s.logger.Error("shader reload failed", "program", n, "err", err)
			errs = append(errs, err)
			continue
		}
		old := s.programs[n]
		gl.DeleteProgram(old.id)
		*old = *fresh
		s.logger.Info("shader reloaded", "program", n)
	}
	return errors.Join(errs...)
}

func (s *shaderSet) destroy() {
	for name, p := range s.programs {
		gl.DeleteProgram(p.id)
		delete(s.programs, name)
	}
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
