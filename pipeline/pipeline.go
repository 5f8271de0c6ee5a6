// Package pipeline describes the frame's render passes without touching
// OpenGL, so the ordering rules can be checked in isolation.
package pipeline

import (
	"fmt"

	"github.com/chewxy/math32"

	fmath "farmscene/math"
	"farmscene/scene"
)

// DefaultBlurPasses is the number of separable blur iterations per frame.
const DefaultBlurPasses = 5

// GaussianWeights are the centre and one-sided tap weights of the 9-tap
// blur kernel.
var GaussianWeights = [5]float32{0.227027, 0.1945946, 0.1216216, 0.054054, 0.016216}

// Stage is one step of a frame.
type Stage int

const (
	StageClear Stage = iota
	StageLightUniforms
	StageOpaque
	StageBillboards
	StageSkybox
	StageBlur
	StageComposite
	StageOverlay
	StagePresent
)

var stageNames = [...]string{
	StageClear:         "clear",
	StageLightUniforms: "light-uniforms",
	StageOpaque:        "opaque",
	StageBillboards:    "billboards",
	StageSkybox:        "skybox",
	StageBlur:          "blur",
	StageComposite:     "composite",
	StageOverlay:       "overlay",
	StagePresent:       "present",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Stages lists the frame's steps in execution order. The overlay step is
// present only when the overlay is visible.
func Stages(overlay bool) []Stage {
	stages := []Stage{
		StageClear,
		StageLightUniforms,
		StageOpaque,
		StageBillboards,
		StageSkybox,
		StageBlur,
		StageComposite,
	}
	if overlay {
		stages = append(stages, StageOverlay)
	}
	return append(stages, StagePresent)
}

// Frame is set once per frame before any geometry is drawn.
type Frame struct {
	View       fmath.Mat4
	Projection fmath.Mat4
	ViewPos    fmath.Vec3
	Lights     scene.Lights
}

// BrightPass marks a blur pass that reads the HDR target's bright-pass
// output instead of a ping-pong buffer.
const BrightPass = -1

// BlurPass is one iteration of the ping-pong blur.
type BlurPass struct {
	Horizontal bool
	// Source is the ping-pong buffer read, or BrightPass.
	Source int
	// Target is the ping-pong buffer written.
	Target int
}

// BlurSchedule returns n passes alternating horizontal and vertical,
// starting horizontal. The first pass reads the bright-pass texture and
// every later pass reads the previous pass's target.
func BlurSchedule(n int) []BlurPass {
	passes := make([]BlurPass, 0, n)
	horizontal := true
	for i := 0; i < n; i++ {
		p := BlurPass{Horizontal: horizontal, Source: BrightPass}
		if horizontal {
			p.Target = 1
		}
		if i > 0 {
			p.Source = passes[i-1].Target
		}
		passes = append(passes, p)
		horizontal = !horizontal
	}
	return passes
}

// FinalTarget is the ping-pong buffer holding the blurred result, or
// BrightPass when there are no passes.
func FinalTarget(passes []BlurPass) int {
	if len(passes) == 0 {
		return BrightPass
	}
	return passes[len(passes)-1].Target
}

// Composite carries the uniforms of the final tonemapping pass.
type Composite struct {
	Bloom    bool
	Exposure float32
}

// Gamma is the display gamma applied after tonemapping.
const Gamma = 2.2

// Tonemap is the per-channel composite the shader runs: optional bloom
// add, exposure tonemapping, then gamma correction.
func (c Composite) Tonemap(hdr, bloom float32) float32 {
	if c.Bloom {
		hdr += bloom
	}
	mapped := 1 - math32.Exp(-hdr*c.Exposure)
	return math32.Pow(mapped, 1/Gamma)
}

// BrightLuminance is the threshold above which a lit fragment also goes
// to the bright-pass output.
const BrightLuminance = 1.0

// Luminance weights linear RGB by perceived brightness.
func Luminance(r, g, b float32) float32 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}
