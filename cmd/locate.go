package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/soocke/plaque-overlay/domain/locate"
	"github.com/soocke/plaque-overlay/ui/images"
)

var locateCmd = &cobra.Command{
	Use:   "locate <image>",
	Short: "Find where the reference appears in an image",
	Long: `Slide a downsampled reference over a downsampled copy of the image and
report the best window in image coordinates.

Examples:
  plaque-overlay locate frame.jpg
  plaque-overlay locate --template 30 --width 160 --step 2 frame.jpg
  plaque-overlay locate --crop plaque.png --pad 8 frame.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
	f := locateCmd.Flags()
	f.Int("template", 0, "Template size in cells")
	f.Int("width", 0, "Width the image is downsampled to")
	f.Int("step", 0, "Window step in cells")
	f.String("crop", "", "Write the located window to this image file")
	f.Int("pad", 0, "Pixels added around the window when cropping")
	f.Bool("json", false, "Output as JSON")
}

type locateOutput struct {
	Path    string  `json:"path"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Score   float64 `json:"score"`
	Windows int     `json:"windows"`
	Crop    string  `json:"crop,omitempty"`
}

func runLocate(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if changed(cmd, "template") {
		cfg.LocateTemplateSize = mustGetInt(cmd, "template")
	}
	if changed(cmd, "width") {
		cfg.LocateFrameWidth = mustGetInt(cmd, "width")
	}
	if changed(cmd, "step") {
		cfg.LocateStep = mustGetInt(cmd, "step")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	scorer, err := newScorer(cfg)
	if err != nil {
		return err
	}
	locator, err := locate.NewLocator(scorer, locate.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	img, err := imaging.Open(args[0], imaging.AutoOrientation(true))
	if err != nil {
		return err
	}
	m, err := locator.Locate(img)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	res := locateOutput{
		Path:    args[0],
		X:       m.Rect.Min.X,
		Y:       m.Rect.Min.Y,
		Width:   m.Rect.Dx(),
		Height:  m.Rect.Dy(),
		Score:   m.Score,
		Windows: m.Windows,
	}
	if path := mustGetString(cmd, "crop"); path != "" {
		roi, _, err := images.ExtractROI(img, m.Rect, mustGetInt(cmd, "pad"))
		if err != nil {
			return fmt.Errorf("crop %s: %w", args[0], err)
		}
		if err := imaging.Save(roi, path); err != nil {
			return err
		}
		res.Crop = path
	}
	out := cmd.OutOrStdout()
	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintf(out, "%s: %dx%d at (%d,%d) score %.4f (%d windows)\n",
		res.Path, res.Width, res.Height, res.X, res.Y, res.Score, res.Windows)
	if res.Crop != "" {
		fmt.Fprintf(out, "cropped to %s\n", res.Crop)
	}
	return nil
}
