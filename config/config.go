package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Frame sources.
const (
	SourceCamera = "camera"
	SourceScreen = "screen"
	SourceDir    = "dir"
)

// Per-cell difference metrics.
const (
	MetricGray      = "gray"
	MetricRGB       = "rgb"
	MetricEuclidean = "euclidean"
)

// Grid weighting schemes.
const (
	WeightUniform = "uniform"
	WeightCenter  = "center"
)

const (
	MinGridSize = 10
	MaxGridSize = 100
)

// Config holds runtime configuration for recognition, capture and playback.
// Fields may be loaded from a JSON or YAML file, overridden by PLAQUE_*
// environment variables and finally by command-line flags.
type Config struct {
	Debug     bool   `json:"debug" yaml:"debug"`
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`

	// Assets
	ReferencePath string   `json:"reference_path" yaml:"reference_path"`
	VideoPath     string   `json:"video_path" yaml:"video_path"`
	PlayerCommand []string `json:"player_command" yaml:"player_command"`

	// Frame source
	Source          string `json:"source" yaml:"source"`
	CameraDevice    string `json:"camera_device" yaml:"camera_device"`
	CameraWidth     int    `json:"camera_width" yaml:"camera_width"`
	CameraHeight    int    `json:"camera_height" yaml:"camera_height"`
	FramesDir       string `json:"frames_dir" yaml:"frames_dir"`
	FramesLoop      bool   `json:"frames_loop" yaml:"frames_loop"`
	FrameIntervalMS int    `json:"frame_interval_ms" yaml:"frame_interval_ms"`

	// Similarity scoring
	GridSize       int     `json:"grid_size" yaml:"grid_size"`
	Metric         string  `json:"metric" yaml:"metric"`
	Weighting      string  `json:"weighting" yaml:"weighting"`
	HistogramBlend bool    `json:"histogram_blend" yaml:"histogram_blend"`
	EnterThreshold float64 `json:"enter_threshold" yaml:"enter_threshold"`
	ExitThreshold  float64 `json:"exit_threshold" yaml:"exit_threshold"`

	// Position locator
	Locate             bool `json:"locate" yaml:"locate"`
	LocateTemplateSize int  `json:"locate_template_size" yaml:"locate_template_size"`
	LocateFrameWidth   int  `json:"locate_frame_width" yaml:"locate_frame_width"`
	LocateStep         int  `json:"locate_step" yaml:"locate_step"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:              false,
		LogLevel:           "info",
		LogFormat:          "json",
		PlayerCommand:      defaultPlayerCommand(),
		Source:             SourceCamera,
		CameraDevice:       "/dev/video0",
		CameraWidth:        640,
		CameraHeight:       480,
		FrameIntervalMS:    100,
		GridSize:           30,
		Metric:             MetricRGB,
		Weighting:          WeightCenter,
		HistogramBlend:     false,
		EnterThreshold:     0.15,
		ExitThreshold:      0.05,
		Locate:             false,
		LocateTemplateSize: 20,
		LocateFrameWidth:   100,
		LocateStep:         5,
	}
}

func defaultPlayerCommand() []string {
	return []string{"ffplay", "-loglevel", "quiet", "-loop", "0", "-autoexit"}
}

// FrameInterval is the delay between frame grabs.
func (c *Config) FrameInterval() time.Duration {
	if c.FrameIntervalMS <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = d.LogLevel
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
		c.LogFormat = strings.ToLower(c.LogFormat)
	default:
		c.LogFormat = d.LogFormat
	}
	if len(c.PlayerCommand) == 0 {
		c.PlayerCommand = d.PlayerCommand
	}
	switch c.Source {
	case SourceCamera, SourceScreen, SourceDir:
	default:
		c.Source = d.Source
	}
	if c.CameraDevice == "" {
		c.CameraDevice = d.CameraDevice
	}
	if c.CameraWidth <= 0 {
		c.CameraWidth = d.CameraWidth
	}
	if c.CameraHeight <= 0 {
		c.CameraHeight = d.CameraHeight
	}
	if c.FrameIntervalMS <= 0 {
		c.FrameIntervalMS = d.FrameIntervalMS
	}
	if c.GridSize < MinGridSize {
		c.GridSize = MinGridSize
	}
	if c.GridSize > MaxGridSize {
		c.GridSize = MaxGridSize
	}
	switch c.Metric {
	case MetricGray, MetricRGB, MetricEuclidean:
	default:
		c.Metric = d.Metric
	}
	switch c.Weighting {
	case WeightUniform, WeightCenter:
	default:
		c.Weighting = d.Weighting
	}
	if math.IsNaN(c.EnterThreshold) || c.EnterThreshold <= 0 || c.EnterThreshold > 1 {
		c.EnterThreshold = d.EnterThreshold
	}
	if math.IsNaN(c.ExitThreshold) || c.ExitThreshold < 0 || c.ExitThreshold > 1 {
		c.ExitThreshold = d.ExitThreshold
	}
	// A band is required; equal thresholds would flicker on a hovering score.
	if c.ExitThreshold >= c.EnterThreshold {
		c.ExitThreshold = c.EnterThreshold / 3
	}
	if c.LocateTemplateSize < 2 {
		c.LocateTemplateSize = d.LocateTemplateSize
	}
	if c.LocateFrameWidth < c.LocateTemplateSize {
		c.LocateFrameWidth = max(d.LocateFrameWidth, c.LocateTemplateSize)
	}
	if c.LocateStep < 1 {
		c.LocateStep = d.LocateStep
	}
	return nil
}

// Load attempts to read configuration from the given path. YAML is used for
// .yaml/.yml files, JSON otherwise. If the file does not exist it returns
// DefaultConfig(). On parse error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path. The format follows the
// file extension like Load.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides fields from PLAQUE_* variables. lookup is usually
// os.LookupEnv. Values that fail to parse, NaN and infinities are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
				*dst = f
			}
		}
	}
	str("PLAQUE_REFERENCE", &c.ReferencePath)
	str("PLAQUE_VIDEO", &c.VideoPath)
	str("PLAQUE_SOURCE", &c.Source)
	str("PLAQUE_CAMERA_DEVICE", &c.CameraDevice)
	str("PLAQUE_FRAMES_DIR", &c.FramesDir)
	float("PLAQUE_ENTER_THRESHOLD", &c.EnterThreshold)
	float("PLAQUE_EXIT_THRESHOLD", &c.ExitThreshold)
	if v, ok := lookup("PLAQUE_GRID_SIZE"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.GridSize = n
		}
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
