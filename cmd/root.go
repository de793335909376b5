package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "plaque-overlay",
	Short: "Play a video while a reference plaque is in view",
	Long: `plaque-overlay watches a camera, the screen or a directory of frames and
recognizes a reference photograph with a downsampled pixel similarity score.
While the plaque is tracked a looping video plays; when it leaves the video
pauses. Thresholds form a hysteresis band so a flickering score does not
toggle playback.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (.json, .yaml or .yml)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: json or text")
	pf.String("reference", "", "Reference image (default: embedded plaque)")
	pf.Bool("debug", false, "Log runtime diagnostics")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
