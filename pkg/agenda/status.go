package agenda

import (
	"math"
	"time"
)

// TimeStatus is a deterministic view of the meeting timing at one instant.
type TimeStatus struct {
	Started                 bool      `json:"meeting_started"`
	CurrentTime             time.Time `json:"current_time"`
	TotalMeetingMinutes     float64   `json:"total_meeting_minutes"`
	CurrentTopic            string    `json:"current_item_topic"`
	CurrentElapsedMinutes   float64   `json:"current_item_elapsed_minutes"`
	CurrentRemainingMinutes float64   `json:"current_item_remaining_minutes"`
	CurrentAllocatedMinutes float64   `json:"current_item_allocated_minutes"`
	OvertimeMinutes         float64   `json:"meeting_overtime_minutes"`
}

func (this TimeStatus) HasCurrentItem() bool {
	return this.CurrentTopic != "" && this.CurrentAllocatedMinutes > 0
}

// TimeStatus evaluates the timing at the given instant. The overtime includes
// the running overrun of the current item.
func (this *Meeting) TimeStatus(at time.Time) TimeStatus {
	result := TimeStatus{
		Started:     this.Started(),
		CurrentTime: at,
	}
	item := this.current()
	if item != nil {
		result.CurrentTopic = item.Topic
		result.CurrentAllocatedMinutes = item.DurationMinutes
	}
	if !result.Started {
		return result
	}

	result.TotalMeetingMinutes = math.Max(0, minutesSince(this.meetingStart, at))
	if item != nil {
		result.CurrentElapsedMinutes = math.Max(0, minutesSince(this.itemStart, at))
	}
	result.CurrentRemainingMinutes = math.Max(0, result.CurrentAllocatedMinutes-result.CurrentElapsedMinutes)
	result.OvertimeMinutes = this.overtime + math.Max(0, result.CurrentElapsedMinutes-result.CurrentAllocatedMinutes)
	return result
}

// Snapshot is the agenda state published for external display.
type Snapshot struct {
	MeetingID           string    `json:"meeting_id"`
	Title               string    `json:"title"`
	Style               Style     `json:"style"`
	CurrentItemIndex    int       `json:"current_item_index"`
	Items               []Item    `json:"items"`
	ElapsedMinutes      float64   `json:"elapsed_minutes"`
	MeetingOvertime     float64   `json:"meeting_overtime"`
	TotalMeetingMinutes float64   `json:"total_meeting_minutes"`
	ServerNow           time.Time `json:"server_now"`
	MeetingStart        time.Time `json:"meeting_start,omitempty"`
	ItemStart           time.Time `json:"item_start,omitempty"`
	Ended               bool      `json:"ended"`
	Notes               []Notes   `json:"meeting_notes,omitempty"`
}

// CurrentState returns the state of the current item or false if the agenda
// is exhausted.
func (this Snapshot) CurrentState() (ItemState, bool) {
	if this.CurrentItemIndex >= 0 && this.CurrentItemIndex < len(this.Items) {
		return this.Items[this.CurrentItemIndex].State, true
	}
	return 0, false
}

func (this Snapshot) IsEqualTo(o Snapshot) bool {
	if this.Style != o.Style ||
		this.CurrentItemIndex != o.CurrentItemIndex ||
		this.Ended != o.Ended ||
		len(this.Items) != len(o.Items) ||
		len(this.Notes) != len(o.Notes) {
		return false
	}
	for i, v := range this.Items {
		if v.State != o.Items[i].State {
			return false
		}
	}
	return true
}

func (this *Meeting) Snapshot() Snapshot {
	return Snapshot{
		MeetingID:           this.id.String(),
		Title:               this.title,
		Style:               this.style,
		CurrentItemIndex:    this.currentIndex,
		Items:               this.Items(),
		ElapsedMinutes:      this.ElapsedMinutes(),
		MeetingOvertime:     this.overtime,
		TotalMeetingMinutes: this.TotalMeetingMinutes(),
		ServerNow:           this.clock.Now(),
		MeetingStart:        this.meetingStart,
		ItemStart:           this.itemStart,
		Ended:               this.ended,
		Notes:               this.Notes(),
	}
}
