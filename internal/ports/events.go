package ports

import "github.com/xvierd/wellflow/internal/domain"

// SessionEvents receives the events emitted by a live focus session.
// Handlers are called synchronously from the tick goroutine and must
// return quickly.
type SessionEvents interface {
	// ProgressUpdate reports cumulative focus minutes while a focus phase runs.
	ProgressUpdate(taskID *string, minutes int)

	// PhaseChanged fires after the session advances to a new phase.
	PhaseChanged(snap domain.SessionSnapshot)

	// SessionComplete fires once when the session ends with credit.
	SessionComplete(result domain.SessionResult)

	// SessionAbandoned fires when the session ends with no focus time.
	SessionAbandoned()

	// OnPause and OnResume are advisory hooks.
	OnPause()
	OnResume()
}

// NopEvents ignores every event. Embed it to implement a subset.
type NopEvents struct{}

func (NopEvents) ProgressUpdate(*string, int) {}
func (NopEvents) PhaseChanged(domain.SessionSnapshot) {}
func (NopEvents) SessionComplete(domain.SessionResult) {}
func (NopEvents) SessionAbandoned() {}
func (NopEvents) OnPause() {}
func (NopEvents) OnResume() {}

var _ SessionEvents = NopEvents{}
