// Package config loads the application settings file.
//
// The file is TOML and every key is optional; anything left out keeps the
// value from Default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "FARMSCENE_CONFIG"

// DefaultPath is used when EnvPath is unset.
const DefaultPath = "farmscene.toml"

// ErrInvalid is wrapped by Validate failures.
var ErrInvalid = errors.New("invalid config")

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

type Render struct {
	Near         float32 `toml:"near"`
	Far          float32 `toml:"far"`
	BlurPasses   int     `toml:"blur_passes"`
	Exposure     float32 `toml:"exposure"`
	ExposureStep float32 `toml:"exposure_step"`
	// FrustumCulling skips placements whose bounds are off screen.
	FrustumCulling bool `toml:"frustum_culling"`
}

type Shaders struct {
	// Dir holds optional *.vert / *.frag overrides. Empty means built-in sources only.
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

type Config struct {
	Resources string `toml:"resources"`
	// StateFile and Layout are resolved against Resources when relative.
	StateFile string  `toml:"state_file"`
	Layout    string  `toml:"layout"`
	LogLevel  string  `toml:"log_level"`
	Window    Window  `toml:"window"`
	Render    Render  `toml:"render"`
	Shaders   Shaders `toml:"shaders"`
}

func Default() Config {
	return Config{
		Resources: "resources",
		StateFile: "program_state.txt",
		LogLevel:  "info",
		Window: Window{
			Width:  800,
			Height: 600,
			Title:  "farmscene",
			VSync:  true,
		},
		Render: Render{
			Near:           0.1,
			Far:            100,
			BlurPasses:     5,
			Exposure:       1,
			ExposureStep:   0.01,
			FrustumCulling: true,
		},
	}
}

// Path returns the config file location, honouring EnvPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := Decode(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML data into cfg and validates the result.
// Unknown keys are rejected so typos do not pass silently.
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Render.Near <= 0 || c.Render.Far <= c.Render.Near:
		return fmt.Errorf("%w: clip planes near=%g far=%g", ErrInvalid, c.Render.Near, c.Render.Far)
	case c.Render.BlurPasses < 1:
		return fmt.Errorf("%w: blur_passes must be at least 1, got %d", ErrInvalid, c.Render.BlurPasses)
	case c.Render.Exposure < 0:
		return fmt.Errorf("%w: exposure %g is negative", ErrInvalid, c.Render.Exposure)
	case c.Render.ExposureStep <= 0:
		return fmt.Errorf("%w: exposure_step must be positive", ErrInvalid)
	case c.Shaders.Watch && c.Shaders.Dir == "":
		return fmt.Errorf("%w: shaders.watch requires shaders.dir", ErrInvalid)
	}
	return nil
}

// Resolve joins a resource-relative path onto Resources.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Resources, p)
}

// Encode renders cfg as TOML, used to print an example file.
func Encode(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}
