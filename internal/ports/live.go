package ports

import (
	"context"

	"github.com/xvierd/wellflow/internal/domain"
)

// LiveSession is the control surface of a running focus session.
type LiveSession interface {
	Snapshot() domain.SessionSnapshot
	Pause() error
	Resume() error
	SkipBreak() error
	End() error
}

// Timer renders a live session and forwards user commands to it.
// This is a driving port (called by the application layer).
type Timer interface {
	// Run blocks until the session reaches a terminal state or the user quits.
	Run(ctx context.Context, session LiveSession) error
}
