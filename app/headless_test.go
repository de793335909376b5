package app

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/soocke/plaque-overlay/config"
	"github.com/soocke/plaque-overlay/domain/playback"
	"github.com/soocke/plaque-overlay/domain/tracking"
)

// halves returns a w×h image whose left half is left and right half right.
func halves(w, h int, left, right color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.SetRGBA(x, y, left)
			} else {
				img.SetRGBA(x, y, right)
			}
		}
	}
	return img
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}
	dir := t.TempDir()
	ref := filepath.Join(dir, "reference.png")
	if err := imaging.Save(halves(60, 60, white, black), ref); err != nil {
		t.Fatal(err)
	}
	frames := filepath.Join(dir, "frames")
	if err := os.MkdirAll(frames, 0o755); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i++ {
		img := halves(60, 60, white, black)
		if i >= 4 {
			img = halves(60, 60, black, white)
		}
		if err := imaging.Save(img, filepath.Join(frames, fmt.Sprintf("%03d.png", i))); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.DefaultConfig()
	cfg.ReferencePath = ref
	cfg.Source = config.SourceDir
	cfg.FramesDir = frames
	cfg.FrameIntervalMS = 150
	cfg.Weighting = config.WeightUniform
	cfg.EnterThreshold = 0.8
	cfg.ExitThreshold = 0.3
	cfg.Locate = true
	cfg.LocateTemplateSize = 10
	cfg.LocateFrameWidth = 30
	cfg.LocateStep = 5
	return cfg
}

func TestBuildContainer_Wiring(t *testing.T) {
	c, err := BuildContainer(testConfig(t), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c.Shutdown()
	if c.Scorer == nil || c.Locator == nil || c.Analyzer == nil || c.Session == nil || c.CaptureSvc == nil {
		t.Fatalf("container incomplete: %+v", c)
	}
	if _, ok := c.Player.(*playback.LogPlayer); !ok {
		t.Fatalf("expected LogPlayer without video, got %T", c.Player)
	}
	c.Shutdown()
}

func TestBuildContainer_BadSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.FramesDir = filepath.Join(t.TempDir(), "missing")
	if _, err := BuildContainer(cfg, nil); err == nil {
		t.Fatalf("expected error for missing frames dir")
	}
	cfg = testConfig(t)
	cfg.ReferencePath = filepath.Join(t.TempDir(), "missing.png")
	if _, err := BuildContainer(cfg, nil); err == nil {
		t.Fatalf("expected error for missing reference")
	}
}

func TestRunHeadless_TracksThenLoses(t *testing.T) {
	c, err := BuildContainer(testConfig(t), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	view := NewLogView(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := RunHeadless(ctx, c, view); err != nil {
		t.Fatalf("run: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatalf("run ended by timeout, expected source exhaustion")
	}
	total, episodes, previews := view.Summary()
	if episodes != 1 || total <= 0 {
		t.Fatalf("expected one tracked episode, got episodes=%d total=%v", episodes, total)
	}
	if previews == 0 {
		t.Fatalf("no previews drawn")
	}
	if view.State() != tracking.StateNone {
		t.Fatalf("expected final state none, got %v", view.State())
	}
	last := c.CaptureSvc.LatestFrame()
	if last.Sequence != 8 {
		t.Fatalf("expected all 8 frames captured, got %d", last.Sequence)
	}
	if st := c.Session.Status(); !st.Updated.Equal(last.CapturedAt) {
		t.Fatalf("last observation came from a frame captured at %v, want the final frame at %v", st.Updated, last.CapturedAt)
	}
	plays, pauses := c.Player.(*playback.LogPlayer).Counts()
	if plays != 1 || pauses != 1 {
		t.Fatalf("expected one play and one pause, got %d/%d", plays, pauses)
	}
}
