package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/soocke/plaque-overlay/config"
)

// loadConfig resolves configuration in order: defaults, config file,
// PLAQUE_* environment, flags. The logger is built from the result.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(mustGetString(cmd, "config"))
	if err != nil {
		return nil, nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)

	if changed(cmd, "log-level") {
		cfg.LogLevel = mustGetString(cmd, "log-level")
	}
	if changed(cmd, "log-format") {
		cfg.LogFormat = mustGetString(cmd, "log-format")
	}
	if changed(cmd, "reference") {
		cfg.ReferencePath = mustGetString(cmd, "reference")
	}
	if changed(cmd, "debug") {
		cfg.Debug = mustGetBool(cmd, "debug")
	}
	applyTrackingFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat), nil
}

// addTrackingFlags registers the recognition flags shared by watch, score
// and replay.
func addTrackingFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("grid", 0, "Grid size for downsampling (10-100)")
	f.String("metric", "", "Cell metric: gray, rgb or euclidean")
	f.String("weighting", "", "Cell weighting: uniform or center")
	f.Bool("histogram", false, "Blend the pixel score with histogram IoU")
	f.Float64("enter", 0, "Score at or above which tracking starts")
	f.Float64("exit", 0, "Score below which tracking stops")
	f.Bool("locate", false, "Locate the reference inside each frame")
}

func applyTrackingFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Lookup("grid") == nil {
		return
	}
	if changed(cmd, "grid") {
		cfg.GridSize = mustGetInt(cmd, "grid")
	}
	if changed(cmd, "metric") {
		cfg.Metric = mustGetString(cmd, "metric")
	}
	if changed(cmd, "weighting") {
		cfg.Weighting = mustGetString(cmd, "weighting")
	}
	if changed(cmd, "histogram") {
		cfg.HistogramBlend = mustGetBool(cmd, "histogram")
	}
	if changed(cmd, "enter") {
		cfg.EnterThreshold = mustGetFloat64(cmd, "enter")
	}
	if changed(cmd, "exit") {
		cfg.ExitThreshold = mustGetFloat64(cmd, "exit")
	}
	if changed(cmd, "locate") {
		cfg.Locate = mustGetBool(cmd, "locate")
	}
}
