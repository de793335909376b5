package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soocke/plaque-overlay/app"
	"github.com/soocke/plaque-overlay/debug"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a frame source and drive playback",
	Long: `Watch a frame source, score each frame against the reference and play the
configured video while the plaque is tracked.

Examples:
  # Headless, webcam, ffplay for playback
  plaque-overlay watch --video loop.mp4

  # Status window with preview
  plaque-overlay watch --gui --video loop.mp4

  # Replay recorded frames in real time
  plaque-overlay watch --source dir --frames-dir ./frames --log-format text`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	f := watchCmd.Flags()
	f.Bool("gui", false, "Show the Tk status window")
	f.String("source", "", "Frame source: camera, screen or dir")
	f.String("device", "", "Camera device path")
	f.String("frames-dir", "", "Directory of frames for --source dir")
	f.Bool("loop", false, "Loop the frames directory")
	f.String("video", "", "Video to play while tracking")
	f.Int("interval", 0, "Frame interval in milliseconds")
	addTrackingFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if changed(cmd, "source") {
		cfg.Source = mustGetString(cmd, "source")
	}
	if changed(cmd, "device") {
		cfg.CameraDevice = mustGetString(cmd, "device")
	}
	if changed(cmd, "frames-dir") {
		cfg.FramesDir = mustGetString(cmd, "frames-dir")
	}
	if changed(cmd, "loop") {
		cfg.FramesLoop = mustGetBool(cmd, "loop")
	}
	if changed(cmd, "video") {
		cfg.VideoPath = mustGetString(cmd, "video")
	}
	if changed(cmd, "interval") {
		cfg.FrameIntervalMS = mustGetInt(cmd, "interval")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c, err := app.BuildContainer(cfg, logger)
	if err != nil {
		return err
	}
	if mustGetBool(cmd, "gui") {
		if cfg.Debug {
			startDiagnostics(background(cmd), logger)
		}
		// The window owns shutdown; signals keep their default behaviour.
		app.NewApp("Plaque Overlay", 720, 420, c).Start()
		return nil
	}

	ctx, stop := signal.NotifyContext(background(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Debug {
		startDiagnostics(ctx, logger)
	}
	return app.RunHeadless(ctx, c, app.NewLogView(logger))
}

func startDiagnostics(ctx context.Context, logger *slog.Logger) {
	debug.StartGoroutineLogger(ctx, 5*time.Second, logger)
	debug.StartMemLogger(ctx, 5*time.Second, logger)
}

// background is used when a command runs without a cobra context.
func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
