package agenda

import (
	"strings"
	"time"
)

type Item struct {
	ID              int       `json:"id"`
	Topic           string    `json:"topic"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes float64   `json:"duration_minutes"`
	State           ItemState `json:"state"`
	ActualElapsed   float64   `json:"actual_elapsed"`
}

func (this Item) Allocated() time.Duration {
	return time.Duration(this.DurationMinutes * float64(time.Minute))
}

// Notes is what was captured for an item after it was completed.
type Notes struct {
	ItemID      int      `json:"item_id"`
	Topic       string   `json:"topic"`
	KeyPoints   []string `json:"key_points,omitempty"`
	Decisions   []string `json:"decisions,omitempty"`
	ActionItems []string `json:"action_items,omitempty"`
}

func (this Notes) IsZero() bool {
	return len(this.KeyPoints) == 0 && len(this.Decisions) == 0 && len(this.ActionItems) == 0
}

func (this Notes) String() string {
	lines := []string{"### " + this.Topic}
	if len(this.KeyPoints) > 0 {
		lines = append(lines, "Key points: "+strings.Join(this.KeyPoints, "; "))
	}
	if len(this.Decisions) > 0 {
		lines = append(lines, "Decisions: "+strings.Join(this.Decisions, "; "))
	}
	if len(this.ActionItems) > 0 {
		lines = append(lines, "Action items: "+strings.Join(this.ActionItems, "; "))
	}
	return strings.Join(lines, "\n")
}

type TranscriptEntry struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func (this TranscriptEntry) String() string {
	return this.Speaker + ": " + this.Text
}

type TranscriptEntries []TranscriptEntry

func (this TranscriptEntries) String() string {
	lines := make([]string, len(this))
	for i, v := range this {
		lines[i] = v.String()
	}
	return strings.Join(lines, "\n")
}

// Presence records when a participant was first and last heard.
type Presence struct {
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}
