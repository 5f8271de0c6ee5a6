// Package overlay is the debug panel: a few editable lighting values and
// read-only camera information.
package overlay

import (
	"fmt"

	"github.com/chewxy/math32"

	"farmscene/state"
)

// Field is one editable value.
type Field struct {
	Label string
	Step  float32
	// Bounded fields are clamped to [Min, Max].
	Bounded  bool
	Min, Max float32
	// Ref returns the value to edit inside s.
	Ref func(s *state.ProgramState) *float32
}

// DefaultFields edits the directional light direction (the one the lit
// shader receives) and the shared point light attenuation.
func DefaultFields() []Field {
	return []Field{
		{Label: "DirLight direction X", Step: 0.05, Ref: func(s *state.ProgramState) *float32 { return &s.DirLight.Direction.X }},
		{Label: "DirLight direction Y", Step: 0.05, Ref: func(s *state.ProgramState) *float32 { return &s.DirLight.Direction.Y }},
		{Label: "DirLight direction Z", Step: 0.05, Ref: func(s *state.ProgramState) *float32 { return &s.DirLight.Direction.Z }},
		{Label: "pointLight.constant", Step: 0.05, Bounded: true, Min: 0, Max: 1, Ref: func(s *state.ProgramState) *float32 { return &s.PointLight.Constant }},
		{Label: "pointLight.linear", Step: 0.05, Bounded: true, Min: 0, Max: 1, Ref: func(s *state.ProgramState) *float32 { return &s.PointLight.Linear }},
		{Label: "pointLight.quadratic", Step: 0.05, Bounded: true, Min: 0, Max: 1, Ref: func(s *state.ProgramState) *float32 { return &s.PointLight.Quadratic }},
	}
}

// Overlay tracks which field is selected.
type Overlay struct {
	Fields   []Field
	Selected int
}

func New() *Overlay {
	return &Overlay{Fields: DefaultFields()}
}

// Select moves the selection by delta, wrapping around.
func (o *Overlay) Select(delta int) {
	n := len(o.Fields)
	if n == 0 {
		return
	}
	o.Selected = ((o.Selected+delta)%n + n) % n
}

// Adjust changes the selected field by steps times its step size.
func (o *Overlay) Adjust(s *state.ProgramState, steps int) {
	if o.Selected < 0 || o.Selected >= len(o.Fields) {
		return
	}
	f := o.Fields[o.Selected]
	v := f.Ref(s)
	*v += float32(steps) * f.Step
	if f.Bounded {
		*v = math32.Min(math32.Max(*v, f.Min), f.Max)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Lines renders the panel as text, one entry per line.
func (o *Overlay) Lines(s *state.ProgramState) []string {
	lines := []string{"Settings"}
	for i, f := range o.Fields {
		marker := "  "
		if i == o.Selected {
			marker = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%s: %.3f", marker, f.Label, *f.Ref(s)))
	}

	c := s.Camera
	lines = append(lines,
		"",
		"Camera info",
		fmt.Sprintf("Camera position: (%f, %f, %f)", c.Position.X, c.Position.Y, c.Position.Z),
		fmt.Sprintf("(Yaw, Pitch): (%f, %f)", c.Yaw, c.Pitch),
		fmt.Sprintf("Camera front: (%f, %f, %f)", c.Front.X, c.Front.Y, c.Front.Z),
		"Camera mouse update: "+onOff(s.CameraMouseMovementEnabled),
		"Bloom: "+onOff(s.BloomOn),
		fmt.Sprintf("Exposure: %.2f", s.Exposure),
		"Spotlight: "+onOff(s.SpotlightOn),
	)
	return lines
}
