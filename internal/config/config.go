// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`
	Import  ImportConfig  `yaml:"import"`
	Editor  EditorConfig  `yaml:"editor"`
	Logging LoggingConfig `yaml:"logging"`
}

// ViewerConfig holds display settings.
type ViewerConfig struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	VSync         bool   `yaml:"vsync"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// ImportConfig holds policies applied to every imported model.
type ImportConfig struct {
	GenerateNormals bool    `yaml:"generate_normals"` // build normals for meshes without them
	SmoothNormals   bool    `yaml:"smooth_normals"`   // average generated normals at shared positions
	DoubleSided     bool    `yaml:"double_sided"`     // render all imports without backface culling
	Scale           float32 `yaml:"scale"`            // uniform pre-scale, 1 keeps source units
}

// EditorConfig holds interaction settings.
type EditorConfig struct {
	UndoDepth       int        `yaml:"undo_depth"`
	DragSensitivity float32    `yaml:"drag_sensitivity"`
	ZoomSensitivity float32    `yaml:"zoom_sensitivity"`
	PanSensitivity  float32    `yaml:"pan_sensitivity"`
	HighlightColor  [3]float32 `yaml:"highlight_color"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			Width:         1280,
			Height:        720,
			VSync:         true,
			ScreenshotDir: "screenshots",
		},
		Import: ImportConfig{
			GenerateNormals: true,
			SmoothNormals:   true,
			DoubleSided:     false,
			Scale:           1,
		},
		Editor: EditorConfig{
			UndoDepth:       100,
			DragSensitivity: 0.005,
			ZoomSensitivity: 0.1,
			PanSensitivity:  0.002,
			HighlightColor:  [3]float32{1.0, 0.55, 0.1},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
