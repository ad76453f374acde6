package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/fbcomp/pixel"
)

// Config is the demo scene: screen setup plus the windows to open.
type Config struct {
	Width    int            `yaml:"width"`
	Height   int            `yaml:"height"`
	Format   string         `yaml:"format"`
	Sink     string         `yaml:"sink"`
	Output   string         `yaml:"output"`
	Interval time.Duration  `yaml:"interval"`
	Workers  int            `yaml:"workers"`
	Windows  []WindowConfig `yaml:"windows"`
}

// WindowConfig describes one scripted window.
type WindowConfig struct {
	Title      string `yaml:"title"`
	X          int    `yaml:"x"`
	Y          int    `yaml:"y"`
	W          int    `yaml:"w"`
	H          int    `yaml:"h"`
	Root       bool   `yaml:"root"`
	Popup      bool   `yaml:"popup"`
	BackBuffer bool   `yaml:"back_buffer"`
	Background uint32 `yaml:"background"`
	Border     uint32 `yaml:"border"`
	Text       string `yaml:"text"`
	TextColor  uint32 `yaml:"text_color"`
}

// DefaultConfig returns the scene used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Width:  320,
		Height: 200,
		Format: "XRGB32",
		Output: "fbdemo.png",
		Windows: []WindowConfig{
			{Title: "desktop", Root: true, BackBuffer: true, Background: 0x204060},
			{Title: "terminal", X: 16, Y: 16, W: 160, H: 96, Background: 0x101010, Border: 0xc0c0c0,
				Text: "fbcomp", TextColor: 0x40ff40},
			{Title: "clock", X: 120, Y: 70, W: 150, H: 90, BackBuffer: true, Background: 0xe0e0d0,
				Border: 0x000000, Text: "back buffer", TextColor: 0x202020},
			{Title: "menu", X: 200, Y: 10, W: 100, H: 40, Popup: true, Background: 0xffd040,
				Border: 0x604000, Text: "popup", TextColor: 0x000000},
		},
	}
}

// LoadConfig reads a YAML scene. Unknown keys are rejected. Missing keys
// keep their defaults; a windows list replaces the default windows.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := decodeStrictYAML(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// Validate checks the screen setup and every window.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("screen size %dx%d must be positive", c.Width, c.Height)
	}
	if _, ok := pixel.ParseFormat(c.Format); !ok {
		return fmt.Errorf("unknown pixel format %q", c.Format)
	}
	roots := 0
	for i, w := range c.Windows {
		if w.Root {
			roots++
			continue
		}
		if w.W <= 0 || w.H <= 0 {
			return fmt.Errorf("window %d (%s): size %dx%d must be positive", i, w.Title, w.W, w.H)
		}
	}
	if roots > 1 {
		return fmt.Errorf("%d root windows, at most one allowed", roots)
	}
	return nil
}

// PixelFormat returns the parsed screen format.
func (c *Config) PixelFormat() pixel.Format {
	f, _ := pixel.ParseFormat(c.Format)
	return f
}
