//go:build !unix

package playback

import (
	"errors"
	"log/slog"
)

const processPlaybackSupported = false

// ProcessPlayer needs POSIX job-control signals and is unavailable here.
type ProcessPlayer struct{}

func NewProcessPlayer(command []string, video string, logger *slog.Logger) *ProcessPlayer {
	return &ProcessPlayer{}
}

var errUnsupported = errors.New("playback: process player not supported on this platform")

func (p *ProcessPlayer) Play() error    { return errUnsupported }
func (p *ProcessPlayer) Pause() error   { return nil }
func (p *ProcessPlayer) Playing() bool  { return false }
func (p *ProcessPlayer) Release() error { return nil }

var _ Player = (*ProcessPlayer)(nil)
