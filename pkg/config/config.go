// Package config loads the application configuration from a YAML file with
// environment variable overrides, and builds the pipeline components from it.
// Every collaborator is optional; missing credentials downgrade capability
// instead of failing startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mcuadros/go-defaults"
	"gopkg.in/yaml.v3"

	"github.com/windowseat/windowseat/pkg/util"
)

type Config struct {
	// DataDir holds the blob store. Empty selects a per-user default.
	DataDir string `yaml:"data_dir"`

	Storage struct {
		// Backend is one of filesystem, sqlite or memory.
		Backend string `yaml:"backend" default:"filesystem"`
	} `yaml:"storage"`

	FlightData struct {
		URL    string `yaml:"url"`
		APIKey string `yaml:"api_key"`
	} `yaml:"flight_data"`

	Geocoder struct {
		URL        string `yaml:"url"`
		IntervalMS int    `yaml:"interval_ms" default:"1100"`
	} `yaml:"geocoder"`

	POI struct {
		URL string `yaml:"url"`
	} `yaml:"poi"`

	Narration struct {
		URL    string `yaml:"url"`
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"narration"`

	Voice struct {
		URL    string  `yaml:"url"`
		APIKey string  `yaml:"api_key"`
		Voice  string  `yaml:"voice" default:"narrator"`
		Speed  float64 `yaml:"speed" default:"1.0"`
	} `yaml:"voice"`

	Tiles struct {
		// URL is an XYZ template with {z}/{x}/{y} placeholders.
		URL string `yaml:"url"`
		// StaticURL is the fallback static map template with
		// {lat}/{lon}/{zoom} placeholders.
		StaticURL    string  `yaml:"static_url"`
		ZoomLevels   []int   `yaml:"zoom_levels"`
		BufferMetres float64 `yaml:"buffer_metres" default:"50000"`
	} `yaml:"tiles"`

	Checkpoints struct {
		Count            int     `yaml:"count" default:"20"`
		MinSpacingMetres float64 `yaml:"min_spacing_metres" default:"50000"`
		RadiusMetres     float64 `yaml:"radius_metres" default:"15000"`
	} `yaml:"checkpoints"`

	API struct {
		Listen string `yaml:"listen" default:":8080"`
	} `yaml:"api"`
}

// Load reads the YAML file at path, falling back to defaults when the path is
// empty or the file does not exist, then applies WINDOWSEAT_* environment
// overrides.
func Load(path string) (*Config, error) {
	config := &Config{}
	defaults.SetDefaults(config)

	if path != "" {
		contents, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(contents, config); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	config.applyEnvironment(util.GetEnvironmentVariables())

	if config.DataDir == "" {
		config.DataDir = defaultDataDir()
	}

	return config, nil
}

func (c *Config) applyEnvironment(env map[string]string) {
	overrides := map[string]*string{
		"WINDOWSEAT_DATA_DIR":           &c.DataDir,
		"WINDOWSEAT_STORAGE_BACKEND":    &c.Storage.Backend,
		"WINDOWSEAT_FLIGHT_DATA_URL":    &c.FlightData.URL,
		"WINDOWSEAT_FLIGHT_DATA_KEY":    &c.FlightData.APIKey,
		"WINDOWSEAT_GEOCODER_URL":       &c.Geocoder.URL,
		"WINDOWSEAT_POI_URL":            &c.POI.URL,
		"WINDOWSEAT_NARRATION_URL":      &c.Narration.URL,
		"WINDOWSEAT_NARRATION_KEY":      &c.Narration.APIKey,
		"WINDOWSEAT_NARRATION_MODEL":    &c.Narration.Model,
		"WINDOWSEAT_VOICE_URL":          &c.Voice.URL,
		"WINDOWSEAT_VOICE_KEY":          &c.Voice.APIKey,
		"WINDOWSEAT_TILES_URL":          &c.Tiles.URL,
		"WINDOWSEAT_TILES_STATIC_URL":   &c.Tiles.StaticURL,
		"WINDOWSEAT_API_LISTEN":         &c.API.Listen,
	}

	for key, target := range overrides {
		if value, ok := env[key]; ok && value != "" {
			*target = value
		}
	}
}

func (c *Config) GeocodeInterval() time.Duration {
	return time.Duration(c.Geocoder.IntervalMS) * time.Millisecond
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "windowseat-data"
	}

	return filepath.Join(home, ".windowseat")
}
