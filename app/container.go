package app

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/soocke/plaque-overlay/assets"
	"github.com/soocke/plaque-overlay/config"
	"github.com/soocke/plaque-overlay/domain/analysis"
	"github.com/soocke/plaque-overlay/domain/capture"
	"github.com/soocke/plaque-overlay/domain/locate"
	"github.com/soocke/plaque-overlay/domain/playback"
	"github.com/soocke/plaque-overlay/domain/similarity"
	"github.com/soocke/plaque-overlay/domain/tracking"
	"github.com/soocke/plaque-overlay/ui/model"
	"github.com/soocke/plaque-overlay/ui/presenter"
)

// View is everything the presenters need from a front end.
type View interface {
	presenter.TrackingView
	presenter.StateView
	presenter.SessionView
	presenter.CaptureView
}

// AppContainer assembles models, services and the tracking session.
type AppContainer struct {
	Config     *config.Config
	Logger     *slog.Logger
	Reference  image.Image
	Scorer     *similarity.Scorer
	Locator    *locate.Locator // nil unless cfg.Locate
	CaptureSvc capture.CaptureService
	Analyzer   *analysis.Analyzer
	Player     playback.Player
	Session    *tracking.Session

	CaptureModel  *model.CaptureModel
	SessionModel  *model.SessionModel
	TrackingModel *model.TrackingModel
}

// BuildContainer loads the reference and constructs all components. The
// frame source is opened but capture is not started.
func BuildContainer(cfg *config.Config, logger *slog.Logger) (*AppContainer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := &AppContainer{Config: cfg, Logger: logger}

	ref, err := assets.LoadReference(cfg.ReferencePath)
	if err != nil {
		return nil, err
	}
	c.Reference = ref
	if c.Scorer, err = similarity.NewScorer(ref, similarity.OptionsFromConfig(cfg)); err != nil {
		return nil, fmt.Errorf("scorer: %w", err)
	}
	var fl analysis.FrameLocator
	if cfg.Locate {
		if c.Locator, err = locate.NewLocator(c.Scorer, locate.OptionsFromConfig(cfg)); err != nil {
			return nil, fmt.Errorf("locator: %w", err)
		}
		fl = c.Locator
	}

	hyst, err := tracking.NewHysteresis(cfg.EnterThreshold, cfg.ExitThreshold)
	if err != nil {
		return nil, err
	}
	grabber, err := capture.NewGrabber(cfg)
	if err != nil {
		return nil, fmt.Errorf("frame source %s: %w", cfg.Source, err)
	}

	c.CaptureSvc = capture.NewCaptureService(logger, cfg.Source, grabber, cfg.FrameInterval())
	c.Analyzer = analysis.NewAnalyzer(logger, c.Scorer, fl)
	c.Player = playback.New(cfg, logger)
	c.Session = tracking.NewSession(logger, hyst, tracking.Actions{
		StartPlayback: c.Player.Play,
		PausePlayback: c.Player.Pause,
	})
	c.CaptureModel = model.NewCaptureModel(cfg.Source)
	c.SessionModel = model.NewSessionModel()
	c.TrackingModel = model.NewTrackingModel()
	if logger != nil {
		logger.Info("container.ready",
			"source", cfg.Source,
			"grid", cfg.GridSize,
			"metric", cfg.Metric,
			"weighting", cfg.Weighting,
			"enter", cfg.EnterThreshold,
			"exit", cfg.ExitThreshold,
			"locate", cfg.Locate,
		)
	}
	return c, nil
}

// Wire builds the presenters against view and registers the state
// presenter as a session listener.
func (c *AppContainer) Wire(view View, schedule func()) (*presenter.Loop, *presenter.CapturePresenter) {
	state := presenter.NewStatePresenter(view)
	c.Session.AddListener(state.OnState)
	track := presenter.NewTrackingPresenter(c.CaptureModel.Enabled, c.CaptureSvc, c.Analyzer, c.Session, view, c.TrackingModel, c.Logger)
	sess := presenter.NewSessionPresenter(c.SessionModel, c.Session, view)
	capP := presenter.NewCapturePresenter(c.CaptureModel, c.CaptureSvc, c.Session, view)
	return presenter.NewLoop(sess, state, track, schedule), capP
}

// Shutdown stops capture, closes the analyzer and session, and releases
// the player. Safe to call more than once.
func (c *AppContainer) Shutdown() {
	if c == nil {
		return
	}
	if c.CaptureSvc != nil {
		if err := c.CaptureSvc.Close(); err != nil && c.Logger != nil {
			c.Logger.Warn("capture close", "error", err)
		}
	}
	if c.Analyzer != nil {
		c.Analyzer.Close()
	}
	if c.Session != nil {
		c.Session.Close()
	}
	if c.Player != nil {
		if err := c.Player.Release(); err != nil && c.Logger != nil {
			c.Logger.Warn("player release", "error", err)
		}
	}
	if c.Logger != nil && c.Analyzer != nil {
		st := c.Analyzer.Stats()
		c.Logger.Info("container.shutdown",
			"analyzed", st.Analyzed,
			"skipped", st.Skipped,
			"failed", st.Failed,
			"avg_analysis", st.AvgDuration,
		)
	}
}
