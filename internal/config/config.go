// Package config holds the tool's configurable paths and settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable paths and pipeline settings.
type Config struct {
	BundleDir     string  `json:"bundle_dir" yaml:"bundle_dir"`
	AnalysisFile  string  `json:"analysis_file" yaml:"analysis_file"`
	OutputArchive string  `json:"output_archive" yaml:"output_archive"`
	BufferPercent float64 `json:"buffer_percent" yaml:"buffer_percent"`
	UnpackSprites bool    `json:"unpack_sprites" yaml:"unpack_sprites"`
	Listen        string  `json:"listen" yaml:"listen"`
}

// Load reads a JSON or YAML config file, picked by extension. Fields
// not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	BundleDir     string
	AnalysisFile  string
	OutputArchive string
	BufferPercent float64
	Listen        string
}

// Resolve applies flag overrides and fills empty fields with defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.BundleDir != "" {
		c.BundleDir = flags.BundleDir
	}
	if flags.AnalysisFile != "" {
		c.AnalysisFile = flags.AnalysisFile
	}
	if flags.OutputArchive != "" {
		c.OutputArchive = flags.OutputArchive
	}
	if flags.BufferPercent > 0 {
		c.BufferPercent = flags.BufferPercent
	}
	if flags.Listen != "" {
		c.Listen = flags.Listen
	}

	if c.BundleDir == "" {
		c.BundleDir = "."
	}
	if c.AnalysisFile == "" {
		c.AnalysisFile = filepath.Join(c.BundleDir, "analysis.json")
	} else if !filepath.IsAbs(c.AnalysisFile) {
		c.AnalysisFile = filepath.Join(c.BundleDir, c.AnalysisFile)
	}
	if c.OutputArchive == "" {
		c.OutputArchive = filepath.Join(c.BundleDir, "optimized.zip")
	}
	if c.BufferPercent < 0 {
		c.BufferPercent = 0
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
}
