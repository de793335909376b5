package playback

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/soocke/plaque-overlay/config"
)

// ErrReleased is returned by Play after Release.
var ErrReleased = errors.New("playback: player released")

// Player controls looping video playback.
type Player interface {
	Play() error
	Pause() error
	Playing() bool
	Release() error
}

// New returns a process-backed player when a video is configured and the
// platform supports it, and a LogPlayer otherwise.
func New(cfg *config.Config, logger *slog.Logger) Player {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if cfg.VideoPath != "" && len(cfg.PlayerCommand) > 0 && processPlaybackSupported {
		return NewProcessPlayer(cfg.PlayerCommand, cfg.VideoPath, logger)
	}
	if cfg.VideoPath != "" && logger != nil {
		logger.Warn("playback.fallback", "reason", "process playback unavailable", "video", cfg.VideoPath)
	}
	return NewLogPlayer(logger)
}

// LogPlayer records playback state without playing anything.
type LogPlayer struct {
	logger *slog.Logger

	mu       sync.Mutex
	playing  bool
	released bool
	plays    int
	pauses   int
}

func NewLogPlayer(logger *slog.Logger) *LogPlayer { return &LogPlayer{logger: logger} }

func (p *LogPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return ErrReleased
	}
	if p.playing {
		return nil
	}
	p.playing = true
	p.plays++
	if p.logger != nil {
		p.logger.Info("playback.play", "player", "log")
	}
	return nil
}

func (p *LogPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return nil
	}
	p.playing = false
	p.pauses++
	if p.logger != nil {
		p.logger.Info("playback.pause", "player", "log")
	}
	return nil
}

func (p *LogPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *LogPlayer) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.released = true
	return nil
}

// Counts returns how many times playback started and paused.
func (p *LogPlayer) Counts() (plays, pauses int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays, p.pauses
}

var _ Player = (*LogPlayer)(nil)
