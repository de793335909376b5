//go:build unix

package playback

import (
	"fmt"
	"log/slog"
	"os/exec"
	"sync"

	"golang.org/x/sys/unix"
)

const processPlaybackSupported = true

// ProcessPlayer drives an external player process. The first Play starts
// it; Pause and later Plays stop and continue it with SIGSTOP and SIGCONT.
// A process that exited on its own is restarted by the next Play.
type ProcessPlayer struct {
	command []string
	video   string
	logger  *slog.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	exited   chan struct{}
	playing  bool
	released bool
}

// NewProcessPlayer returns a player that runs command followed by video.
func NewProcessPlayer(command []string, video string, logger *slog.Logger) *ProcessPlayer {
	return &ProcessPlayer{command: append([]string(nil), command...), video: video, logger: logger}
}

func (p *ProcessPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return ErrReleased
	}
	if p.alive() {
		if p.playing {
			return nil
		}
		if err := unix.Kill(p.cmd.Process.Pid, unix.SIGCONT); err != nil {
			return fmt.Errorf("resume player: %w", err)
		}
		p.playing = true
		p.log("playback.resume")
		return nil
	}
	if err := p.start(); err != nil {
		return err
	}
	p.playing = true
	p.log("playback.start")
	return nil
}

func (p *ProcessPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return nil
	}
	p.playing = false
	if !p.alive() {
		return nil
	}
	if err := unix.Kill(p.cmd.Process.Pid, unix.SIGSTOP); err != nil {
		return fmt.Errorf("pause player: %w", err)
	}
	p.log("playback.pause")
	return nil
}

func (p *ProcessPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && p.alive()
}

// Release kills the player process. The player cannot be used afterwards.
func (p *ProcessPlayer) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = true
	p.playing = false
	if !p.alive() {
		return nil
	}
	// A stopped process must be continued to act on SIGKILL promptly.
	_ = unix.Kill(p.cmd.Process.Pid, unix.SIGCONT)
	if err := p.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("kill player: %w", err)
	}
	<-p.exited
	p.log("playback.release")
	return nil
}

func (p *ProcessPlayer) start() error {
	if len(p.command) == 0 {
		return fmt.Errorf("playback: empty player command")
	}
	args := append(append([]string(nil), p.command[1:]...), p.video)
	cmd := exec.Command(p.command[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player %s: %w", p.command[0], err)
	}
	exited := make(chan struct{})
	go func() {
		err := cmd.Wait()
		close(exited)
		if p.logger != nil {
			p.logger.Debug("playback.exit", "pid", cmd.Process.Pid, "error", err)
		}
	}()
	p.cmd = cmd
	p.exited = exited
	return nil
}

func (p *ProcessPlayer) alive() bool {
	if p.cmd == nil || p.exited == nil {
		return false
	}
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

func (p *ProcessPlayer) log(msg string) {
	if p.logger == nil {
		return
	}
	p.logger.Info(msg, "pid", p.cmd.Process.Pid, "video", p.video)
}

var _ Player = (*ProcessPlayer)(nil)
