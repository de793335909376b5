package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows the current episode, the total tracked time and the
// episode count.
type SessionStats interface {
	SetEpisode(d time.Duration)
	SetTotal(d time.Duration, episodes int)
}

type sessionStats struct {
	episodeLbl *LabelWidget
	totalLbl   *LabelWidget
}

// NewSessionStats grids the episode label at (row, startCol) and the total
// label at (row, startCol+1) inside parent.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{episodeLbl: Label(Width(16)), totalLbl: Label(Width(20))}
	Grid(s.episodeLbl, In(parent), Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
	Grid(s.totalLbl, In(parent), Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	s.episodeLbl.Configure(Txt("Episode: 00:00"))
	s.totalLbl.Configure(Txt("Total: 00:00 (0)"))
	return s
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func (s *sessionStats) SetEpisode(d time.Duration) {
	if s == nil || s.episodeLbl == nil {
		return
	}
	s.episodeLbl.Configure(Txt("Episode: " + clock(d)))
}

func (s *sessionStats) SetTotal(d time.Duration, episodes int) {
	if s == nil || s.totalLbl == nil {
		return
	}
	s.totalLbl.Configure(Txt(fmt.Sprintf("Total: %s (%d)", clock(d), episodes)))
}
