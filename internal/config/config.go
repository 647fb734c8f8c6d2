package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all configurable paths and conversion settings.
type Config struct {
	// Single file
	Input  string `json:"input"`
	Output string `json:"output"`

	// Batch
	SourceDir string `json:"source_dir"`
	OutputDir string `json:"output_dir"`

	// Conversion settings
	EmbedTextures bool   `json:"embed_textures"`
	Manifest      string `json:"manifest"`
	Quiet         bool   `json:"quiet"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Input         string
	Output        string
	SourceDir     string
	OutputDir     string
	Manifest      string
	EmbedTextures bool
	Quiet         bool
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Input != "" {
		c.Input = flags.Input
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.SourceDir != "" {
		c.SourceDir = flags.SourceDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Manifest != "" {
		c.Manifest = flags.Manifest
	}
	if flags.EmbedTextures {
		c.EmbedTextures = true
	}
	if flags.Quiet {
		c.Quiet = true
	}

	if c.Input != "" && c.Output == "" {
		c.Output = DefaultOutput(c.Input)
	}
	if c.SourceDir != "" && c.OutputDir == "" {
		c.OutputDir = c.SourceDir
	}
}

// Batch reports whether the config describes a directory conversion.
func (c *Config) Batch() bool {
	return c.SourceDir != ""
}

// Validate checks that exactly one of Input and SourceDir is set.
func (c *Config) Validate() error {
	switch {
	case c.Input == "" && c.SourceDir == "":
		return errors.New("config: no input file or source directory")
	case c.Input != "" && c.SourceDir != "":
		return errors.New("config: input file and source directory are exclusive")
	}
	return nil
}

// DefaultOutput replaces the extension of input with .a3d.
func DefaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".a3d"
}
