package webhook

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal"
	"time"
)

type state struct {
	timestamp time.Time
	state     signal.State
	snapshot  agenda.Snapshot
}

func (this *state) isEqualTo(o *state) bool {
	return this.state == o.state &&
		this.snapshot.IsEqualTo(o.snapshot)
}

type statePostRequest struct {
	State        signal.State    `json:"state"`
	MeetingId    string          `json:"meeting_id"`
	Title        string          `json:"title"`
	CurrentTopic string          `json:"current_item_topic,omitempty"`
	Overtime     float64         `json:"meeting_overtime"`
	Ended        bool            `json:"ended"`
	Items        []statePostItem `json:"items"`
	Notes        []agenda.Notes  `json:"meeting_notes,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

type statePostItem struct {
	Id              int              `json:"id"`
	Topic           string           `json:"topic"`
	State           agenda.ItemState `json:"state"`
	DurationMinutes float64          `json:"duration_minutes"`
	ActualElapsed   float64          `json:"actual_elapsed,omitempty"`
}
