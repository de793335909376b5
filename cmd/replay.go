package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/soocke/plaque-overlay/domain/capture"
	"github.com/soocke/plaque-overlay/domain/locate"
	"github.com/soocke/plaque-overlay/domain/tracking"
)

var replayCmd = &cobra.Command{
	Use:   "replay <dir>",
	Short: "Run recognition over a directory of frames",
	Long: `Replay the image files of a directory in lexical order through the scorer
and the hysteresis band, printing every state transition. Unlike watch, every
frame is analyzed.

Examples:
  plaque-overlay replay ./frames
  plaque-overlay replay --enter 0.3 --exit 0.1 --locate --json ./frames`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Bool("json", false, "Output as JSON")
	replayCmd.Flags().Bool("progress", true, "Show a progress bar on stderr")
	addTrackingFlags(replayCmd)
}

// ReplayTransition is a state change observed at a given frame.
type ReplayTransition struct {
	Frame    string           `json:"frame"`
	Index    int              `json:"index"`
	State    string           `json:"state"`
	Score    float64          `json:"score"`
	Position *PositionPayload `json:"position,omitempty"`
}

// PositionPayload is a located window in frame coordinates.
type PositionPayload struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ReplayReport summarizes a replay.
type ReplayReport struct {
	Frames        int                `json:"frames"`
	Errors        int                `json:"errors"`
	TrackedFrames int                `json:"tracked_frames"`
	Episodes      int                `json:"episodes"`
	FinalState    string             `json:"final_state"`
	Duration      time.Duration      `json:"duration_ns"`
	Transitions   []ReplayTransition `json:"transitions"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scorer, err := newScorer(cfg)
	if err != nil {
		return err
	}
	var locator *locate.Locator
	if cfg.Locate {
		if locator, err = locate.NewLocator(scorer, locate.OptionsFromConfig(cfg)); err != nil {
			return err
		}
	}
	hyst, err := tracking.NewHysteresis(cfg.EnterThreshold, cfg.ExitThreshold)
	if err != nil {
		return err
	}
	g, err := capture.NewDirGrabber(args[0], false)
	if err != nil {
		return err
	}
	defer g.Close()

	jsonOutput := mustGetBool(cmd, "json")
	var bar *progressbar.ProgressBar
	if mustGetBool(cmd, "progress") && !jsonOutput {
		bar = progressbar.NewOptions(g.Len(),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("Replaying frames"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("frames"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	report := ReplayReport{Transitions: []ReplayTransition{}}
	start := time.Now()
	for {
		img, err := g.Grab()
		if errors.Is(err, io.EOF) {
			break
		}
		report.Frames++
		if bar != nil {
			_ = bar.Add(1)
		}
		if err != nil {
			report.Errors++
			logger.Warn("replay.frame", "error", err)
			continue
		}
		res, err := scorer.Evaluate(img)
		if err != nil {
			report.Errors++
			logger.Warn("replay.score", "frame", g.Current(), "error", err)
			continue
		}
		state, changed := hyst.Observe(res.Score)
		if state == tracking.StateTracking {
			report.TrackedFrames++
		}
		if !changed {
			continue
		}
		tr := ReplayTransition{
			Frame: filepath.Base(g.Current()),
			Index: report.Frames - 1,
			State: state.String(),
			Score: res.Score,
		}
		if state == tracking.StateTracking {
			report.Episodes++
			if locator != nil {
				if m, err := locator.Locate(img); err == nil {
					tr.Position = &PositionPayload{X: m.Rect.Min.X, Y: m.Rect.Min.Y, Width: m.Rect.Dx(), Height: m.Rect.Dy()}
				} else {
					logger.Debug("replay.locate", "frame", tr.Frame, "error", err)
				}
			}
		}
		report.Transitions = append(report.Transitions, tr)
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	report.Duration = time.Since(start)
	report.FinalState = hyst.State().String()

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	for _, tr := range report.Transitions {
		line := fmt.Sprintf("%5d  %-8s  %.4f  %s", tr.Index, tr.State, tr.Score, tr.Frame)
		if p := tr.Position; p != nil {
			line += fmt.Sprintf("  at %d,%d %dx%d", p.X, p.Y, p.Width, p.Height)
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "\n%s frames, %s tracked, %s episodes, %s errors in %s (final: %s)\n",
		humanize.Comma(int64(report.Frames)),
		humanize.Comma(int64(report.TrackedFrames)),
		humanize.Comma(int64(report.Episodes)),
		humanize.Comma(int64(report.Errors)),
		report.Duration.Round(time.Millisecond),
		report.FinalState,
	)
	return nil
}
