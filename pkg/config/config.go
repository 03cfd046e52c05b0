// Package config handles bridge configuration loading.
package config

// Config holds all bridge settings.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Paint   PaintConfig   `yaml:"paint"`
	Import  ImportConfig  `yaml:"import"`
	Presets PresetsConfig `yaml:"presets"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig selects and locates the cook engine backend.
type EngineConfig struct {
	// Backend is "native" or "memory".
	Backend string `yaml:"backend"`
	// LibraryPaths are the directories searched for asset libraries.
	LibraryPaths []string `yaml:"library_paths"`
	// EnableCooking gates all cooks; parameter edits still accumulate
	// when off.
	EnableCooking bool `yaml:"enable_cooking"`
}

// PaintConfig holds attribute painting settings.
type PaintConfig struct {
	// BrushRate is the fraction of an attribute's min/max range one
	// stroke may cover. Kept between zero and one.
	BrushRate float64 `yaml:"brush_rate"`
	// PaintFirstVertex opts in to painting vertex 0.
	PaintFirstVertex bool `yaml:"paint_first_vertex"`
}

// ImportConfig holds geometry import settings.
type ImportConfig struct {
	TemplatedGeos bool `yaml:"templated_geos"`
}

// PresetsConfig locates the preset database.
type PresetsConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with stock values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Backend:       "memory",
			EnableCooking: true,
		},
		Paint: PaintConfig{
			BrushRate: 0.2,
		},
		Import: ImportConfig{
			TemplatedGeos: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
