package gate

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"time"
)

// RecentTranscriptWindow is how far back the transcript reaches that a
// candidate is compared against for redundancy.
const RecentTranscriptWindow = 60 * time.Second

// Context is an immutable snapshot of the meeting taken for exactly one
// evaluation. At is the instant it was taken; the gate never reads a clock.
type Context struct {
	At time.Time

	Style            agenda.Style
	CurrentTopic     string
	CurrentState     agenda.ItemState
	HasCurrentItem   bool
	ElapsedMinutes   float64
	AllocatedMinutes float64
	MeetingOvertime  float64
	RecentTranscript string
	InOverrideGrace  bool
	SilenceUntil     time.Time

	// TangentConfidence is the external judgment in [0,1] that the
	// conversation has left the current topic.
	TangentConfidence float64
	ItemsRemaining    int
}

func (this Context) SilenceActive() bool {
	return !this.SilenceUntil.IsZero() && this.At.Before(this.SilenceUntil)
}

// ContextOf snapshots the given meeting. The caller must hold whatever lock
// protects the meeting.
func ContextOf(m *agenda.Meeting, tangentConfidence float64) Context {
	result := Context{
		At:                m.Now(),
		Style:             m.Style(),
		MeetingOvertime:   m.Overtime(),
		RecentTranscript:  m.RecentTranscript(RecentTranscriptWindow),
		InOverrideGrace:   m.InOverrideGrace(),
		SilenceUntil:      m.SilenceUntil(),
		TangentConfidence: tangentConfidence,
		ItemsRemaining:    len(m.RemainingItems()),
	}
	if item, ok := m.CurrentItem(); ok {
		result.HasCurrentItem = true
		result.CurrentTopic = item.Topic
		result.CurrentState = item.State
		result.ElapsedMinutes = m.ElapsedMinutes()
		result.AllocatedMinutes = item.DurationMinutes
	}
	return result
}
