package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/soocke/plaque-overlay/assets"
	"github.com/soocke/plaque-overlay/config"
	"github.com/soocke/plaque-overlay/domain/similarity"
)

var scoreCmd = &cobra.Command{
	Use:   "score <image>...",
	Short: "Score images against the reference",
	Long: `Score one or more images against the reference and report the pixel
score, the histogram overlap and the final score.

Examples:
  plaque-overlay score shot1.jpg shot2.jpg
  plaque-overlay score --metric euclidean --histogram --json shot.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().Bool("json", false, "Output as JSON")
	addTrackingFlags(scoreCmd)
}

// ScoreRow is one line of score output.
type ScoreRow struct {
	Path      string  `json:"path"`
	Pixel     float64 `json:"pixel"`
	Histogram float64 `json:"histogram,omitempty"`
	Score     float64 `json:"score"`
	Match     bool    `json:"match"`
	Error     string  `json:"error,omitempty"`
}

func newScorer(cfg *config.Config) (*similarity.Scorer, error) {
	ref, err := assets.LoadReference(cfg.ReferencePath)
	if err != nil {
		return nil, err
	}
	return similarity.NewScorer(ref, similarity.OptionsFromConfig(cfg))
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scorer, err := newScorer(cfg)
	if err != nil {
		return err
	}

	rows := make([]ScoreRow, 0, len(args))
	for _, path := range args {
		row := ScoreRow{Path: path}
		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		if err != nil {
			row.Error = err.Error()
			rows = append(rows, row)
			continue
		}
		res, err := scorer.Evaluate(img)
		if err != nil {
			row.Error = err.Error()
		}
		row.Pixel, row.Histogram, row.Score = res.Pixel, res.Histogram, res.Score
		row.Match = res.Score >= cfg.EnterThreshold
		rows = append(rows, row)
	}

	out := cmd.OutOrStdout()
	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IMAGE\tPIXEL\tHISTOGRAM\tSCORE\tMATCH")
	for _, r := range rows {
		if r.Error != "" {
			fmt.Fprintf(w, "%s\t-\t-\t-\terror: %s\n", r.Path, r.Error)
			continue
		}
		hist := "-"
		if cfg.HistogramBlend {
			hist = fmt.Sprintf("%.4f", r.Histogram)
		}
		fmt.Fprintf(w, "%s\t%.4f\t%s\t%.4f\t%v\n", r.Path, r.Pixel, hist, r.Score, r.Match)
	}
	return w.Flush()
}
