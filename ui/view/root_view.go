package view

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/plaque-overlay/domain/tracking"
	"github.com/soocke/plaque-overlay/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootView composes the top-level layout and wires UI callbacks.
// It satisfies the presenter view contracts.
type RootView struct {
	logger *slog.Logger
	source string

	Session     SessionStats
	CapturePrev CapturePreview

	StateLabel      *LabelWidget
	ConfidenceLabel *LabelWidget
	PositionLabel   *LabelWidget
	SourceLabel     *LabelWidget
	captureBtn      *TButtonWidget

	state tracking.State
}

func NewRootView(source string, logger *slog.Logger) *RootView {
	return &RootView{source: source, logger: logger}
}

// Build constructs the layout. Handlers are invoked on user actions.
func (rv *RootView) Build(reference image.Image, onToggleCapture func(), onToggleDark func(), onExit func()) {
	if rv == nil {
		return
	}
	statusFrame := Frame()
	Grid(statusFrame, Row(0), Column(0), Columnspan(4), Sticky("we"), Padx("0.3m"), Pady("0.3m"))

	rv.StateLabel = Label(Width(10), Borderwidth(1), Relief("groove"))
	Grid(rv.StateLabel, In(statusFrame), Row(0), Column(0), Sticky("w"), Padx("0.2m"))
	rv.ConfidenceLabel = Label(Txt("Confidence: -"), Width(18))
	Grid(rv.ConfidenceLabel, In(statusFrame), Row(0), Column(1), Sticky("w"), Padx("0.2m"))
	rv.PositionLabel = Label(Txt("Position: -"), Width(28))
	Grid(rv.PositionLabel, In(statusFrame), Row(0), Column(2), Sticky("w"), Padx("0.2m"))

	rv.SourceLabel = Label(Txt("Source: " + rv.source + " (off)"))
	Grid(rv.SourceLabel, In(statusFrame), Row(1), Column(0), Sticky("w"), Padx("0.2m"))
	rv.Session = NewSessionStats(statusFrame, 1, 1)

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	rv.captureBtn = TButton(Txt("Start Capture"), Style(theme.StylePrimaryButton), Command(onToggleCapture))
	Grid(rv.captureBtn, In(btnFrame), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Grid(TButton(Txt("Dark Mode"), Command(func() {
		onToggleDark()
		rv.SetState(rv.state)
	})), In(btnFrame), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Grid(TButton(Txt("Exit"), Style(theme.StyleDangerButton), Command(onExit)), In(btnFrame), Row(2), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	rv.CapturePrev = NewCapturePreview(1)
	rv.CapturePrev.SetReference(reference)
	rv.SetState(tracking.StateNone)
}

// SetState updates the state label text and colours.
func (rv *RootView) SetState(s tracking.State) {
	if rv == nil || rv.StateLabel == nil {
		return
	}
	rv.state = s
	bg, fg := theme.StateColors(s)
	rv.StateLabel.Configure(Txt(theme.StateText(s)), Background(bg), Foreground(fg))
}

func (rv *RootView) SetConfidence(score float64) {
	if rv == nil || rv.ConfidenceLabel == nil {
		return
	}
	rv.ConfidenceLabel.Configure(Txt(fmt.Sprintf("Confidence: %.3f", score)))
}

func (rv *RootView) SetPosition(r *image.Rectangle) {
	if rv == nil || rv.PositionLabel == nil {
		return
	}
	if r == nil {
		rv.PositionLabel.Configure(Txt("Position: -"))
		return
	}
	rv.PositionLabel.Configure(Txt(fmt.Sprintf("Position: %d,%d %dx%d", r.Min.X, r.Min.Y, r.Dx(), r.Dy())))
}

// UpdatePreview proxies to the capture preview.
func (rv *RootView) UpdatePreview(img image.Image) {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.UpdateCapture(img)
	}
}

func (rv *RootView) SetSession(episode, total time.Duration, episodes int) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetEpisode(episode)
	rv.Session.SetTotal(total, episodes)
}

// PreviewReset clears the capture preview.
func (rv *RootView) PreviewReset() {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.Reset()
	}
}

// SetCaptureActive relabels the capture button and source label.
func (rv *RootView) SetCaptureActive(active bool) {
	if rv == nil || rv.captureBtn == nil {
		return
	}
	if active {
		rv.captureBtn.Configure(Txt("Stop Capture"))
		rv.SourceLabel.Configure(Txt("Source: " + rv.source + " (on)"))
		return
	}
	rv.captureBtn.Configure(Txt("Start Capture"))
	rv.SourceLabel.Configure(Txt("Source: " + rv.source + " (off)"))
}
