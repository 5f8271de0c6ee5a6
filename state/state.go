// Package state holds the mutable program settings and persists the part
// of them that survives a restart.
package state

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/chewxy/math32"

	fmath "farmscene/math"
	"farmscene/scene"
)

// ErrMalformed reports a settings file that could not be read in full.
var ErrMalformed = errors.New("malformed settings file")

// ProgramState is everything input and the overlay can change at runtime.
type ProgramState struct {
	ClearColor fmath.Vec3

	OverlayEnabled             bool
	CameraMouseMovementEnabled bool
	SpotlightOn                bool
	BloomOn                    bool
	Exposure                   float32

	Camera     *scene.Camera
	DirLight   scene.DirLight
	PointLight scene.PointLight
}

// New returns the startup state with the camera at cameraStart.
func New(cameraStart fmath.Vec3) *ProgramState {
	return &ProgramState{
		CameraMouseMovementEnabled: true,
		BloomOn:                    true,
		Exposure:                   1.0,
		Camera:                     scene.NewCamera(cameraStart),
		DirLight:                   scene.DefaultDirLight(),
		PointLight:                 scene.DefaultPointLight(),
	}
}

// AdjustExposure changes the exposure by delta, never going below zero.
func (s *ProgramState) AdjustExposure(delta float32) {
	s.Exposure = math32.Max(0, s.Exposure+delta)
}

// ToggleOverlay flips overlay visibility. Mouse look is enabled exactly
// when the overlay is hidden.
func (s *ProgramState) ToggleOverlay() {
	s.OverlayEnabled = !s.OverlayEnabled
	s.CameraMouseMovementEnabled = !s.OverlayEnabled
}

// field is one persisted value: how to print it and how to apply it.
type field struct {
	format func(*ProgramState) string
	parse  func(*ProgramState, string) error
}

func floatField(get func(*ProgramState) float32, set func(*ProgramState, float32)) field {
	return field{
		format: func(s *ProgramState) string {
			return strconv.FormatFloat(float64(get(s)), 'g', -1, 32)
		},
		parse: func(s *ProgramState, tok string) error {
			v, err := strconv.ParseFloat(tok, 32)
			if err != nil {
				return err
			}
			set(s, float32(v))
			return nil
		},
	}
}

func frontField(get func(fmath.Vec3) float32, set func(*fmath.Vec3, float32)) field {
	return floatField(
		func(s *ProgramState) float32 { return get(s.Camera.Front) },
		func(s *ProgramState, v float32) {
			f := s.Camera.Front
			set(&f, v)
			s.Camera.SetFront(f)
		},
	)
}

// fields lists the file contents in order.
var fields = []field{
	floatField(func(s *ProgramState) float32 { return s.ClearColor.X }, func(s *ProgramState, v float32) { s.ClearColor.X = v }),
	floatField(func(s *ProgramState) float32 { return s.ClearColor.Y }, func(s *ProgramState, v float32) { s.ClearColor.Y = v }),
	floatField(func(s *ProgramState) float32 { return s.ClearColor.Z }, func(s *ProgramState, v float32) { s.ClearColor.Z = v }),
	{
		format: func(s *ProgramState) string {
			if s.OverlayEnabled {
				return "1"
			}
			return "0"
		},
		parse: func(s *ProgramState, tok string) error {
			v, err := strconv.ParseBool(tok)
			if err != nil {
				return err
			}
			s.OverlayEnabled = v
			s.CameraMouseMovementEnabled = !v
			return nil
		},
	},
	floatField(func(s *ProgramState) float32 { return s.Camera.Position.X }, func(s *ProgramState, v float32) { s.Camera.Position.X = v }),
	floatField(func(s *ProgramState) float32 { return s.Camera.Position.Y }, func(s *ProgramState, v float32) { s.Camera.Position.Y = v }),
	floatField(func(s *ProgramState) float32 { return s.Camera.Position.Z }, func(s *ProgramState, v float32) { s.Camera.Position.Z = v }),
	frontField(func(f fmath.Vec3) float32 { return f.X }, func(f *fmath.Vec3, v float32) { f.X = v }),
	frontField(func(f fmath.Vec3) float32 { return f.Y }, func(f *fmath.Vec3, v float32) { f.Y = v }),
	frontField(func(f fmath.Vec3) float32 { return f.Z }, func(f *fmath.Vec3, v float32) { f.Z = v }),
}

// Write prints the persisted fields, one per line.
func (s *ProgramState) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, f := range fields {
		if _, err := bw.WriteString(f.format(s) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read applies whitespace-separated fields from r in order. Fields before
// the first bad or missing token are kept; the error wraps ErrMalformed.
func (s *ProgramState) Read(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	for i, f := range fields {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return fmt.Errorf("read field %d: %w", i, err)
			}
			return fmt.Errorf("%w: truncated after %d of %d fields", ErrMalformed, i, len(fields))
		}
		if err := f.parse(s, sc.Text()); err != nil {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, i, err)
		}
	}
	return nil
}

// Save writes the settings file at path.
func (s *ProgramState) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if err := s.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("save settings: %w", err)
	}
	return f.Close()
}

// Load reads the settings file at path. A missing file leaves the
// defaults in place and is not an error.
func (s *ProgramState) Load(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	defer f.Close()

	if err := s.Read(f); err != nil {
		return fmt.Errorf("load settings %q: %w", path, err)
	}
	return nil
}
