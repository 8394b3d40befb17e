package agenda

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/clock"
	"github.com/google/uuid"
	"time"
)

const (
	DefaultOverrideGrace        = 120 * time.Second
	DefaultSilenceDuration      = 120 * time.Second
	DefaultInterventionCooldown = 30 * time.Second

	// TranscriptRetention bounds the rolling transcript buffer.
	TranscriptRetention = 120 * time.Second

	warningRatio = 0.8
)

type Option func(*Meeting)

func WithClock(v clock.Clock) Option {
	return func(m *Meeting) { m.clock = clock.OrSystem(v) }
}

func WithOverrideGrace(v time.Duration) Option {
	return func(m *Meeting) { m.overrideGrace = v }
}

func WithSilenceDuration(v time.Duration) Option {
	return func(m *Meeting) { m.silenceDuration = v }
}

func WithInterventionCooldown(v time.Duration) Option {
	return func(m *Meeting) { m.interventionCooldown = v }
}

// Meeting is the agenda timing state machine. It is not safe for concurrent
// use; the owner has to serialize all calls.
type Meeting struct {
	id    uuid.UUID
	title string
	items []Item
	style Style

	currentIndex int
	itemStart    time.Time
	meetingStart time.Time
	overtime     float64
	ended        bool

	lastIntervention time.Time
	lastOverride     time.Time
	silenceUntil     time.Time

	transcript      []TranscriptEntry
	itemTranscripts map[int][]TranscriptEntry
	notes           []Notes
	participants    map[string]Presence

	clock                clock.Clock
	overrideGrace        time.Duration
	silenceDuration      time.Duration
	interventionCooldown time.Duration
}

func NewMeeting(def Definition, opts ...Option) (*Meeting, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	items := make([]Item, len(def.Items))
	for i, v := range def.Items {
		items[i] = Item{
			ID:              *v.ID,
			Topic:           v.Topic,
			Description:     v.Description,
			DurationMinutes: *v.DurationMinutes,
			State:           ItemStateUpcoming,
		}
	}

	result := &Meeting{
		id:                   uuid.New(),
		title:                def.TitleOrDefault(),
		items:                items,
		style:                def.StyleOrDefault(),
		itemTranscripts:      make(map[int][]TranscriptEntry),
		participants:         make(map[string]Presence),
		clock:                clock.System,
		overrideGrace:        DefaultOverrideGrace,
		silenceDuration:      DefaultSilenceDuration,
		interventionCooldown: DefaultInterventionCooldown,
	}
	for _, opt := range opts {
		opt(result)
	}
	return result, nil
}

func (this *Meeting) ID() uuid.UUID {
	return this.id
}

func (this *Meeting) Title() string {
	return this.title
}

func (this *Meeting) Style() Style {
	return this.style
}

func (this *Meeting) SetStyle(v Style) {
	this.style = v
}

func (this *Meeting) Now() time.Time {
	return this.clock.Now()
}

func (this *Meeting) Started() bool {
	return !this.meetingStart.IsZero()
}

func (this *Meeting) Ended() bool {
	return this.ended
}

func (this *Meeting) End() {
	this.ended = true
}

// Items returns a copy of all items in agenda order.
func (this *Meeting) Items() []Item {
	result := make([]Item, len(this.items))
	copy(result, this.items)
	return result
}

func (this *Meeting) CurrentIndex() int {
	return this.currentIndex
}

func (this *Meeting) CurrentItem() (Item, bool) {
	if v := this.current(); v != nil {
		return *v, true
	}
	return Item{}, false
}

func (this *Meeting) current() *Item {
	if this.currentIndex >= 0 && this.currentIndex < len(this.items) {
		return &this.items[this.currentIndex]
	}
	return nil
}

// RemainingItems are the upcoming items after the current one.
func (this *Meeting) RemainingItems() []Item {
	var result []Item
	for i := this.currentIndex + 1; i < len(this.items); i++ {
		if v := this.items[i]; v.State == ItemStateUpcoming {
			result = append(result, v)
		}
	}
	return result
}

func (this *Meeting) TotalScheduledMinutes() (result float64) {
	for _, v := range this.items {
		result += v.DurationMinutes
	}
	return result
}

func (this *Meeting) Overtime() float64 {
	return this.overtime
}

func (this *Meeting) Start() {
	now := this.clock.Now()
	this.meetingStart = now
	this.itemStart = now
	if v := this.current(); v != nil {
		v.State = ItemStateActive
	}
}

// ElapsedMinutes is the time the current item is running. Without a current
// item it is 0.
func (this *Meeting) ElapsedMinutes() float64 {
	if this.current() == nil {
		return 0
	}
	return minutesSince(this.itemStart, this.clock.Now())
}

func (this *Meeting) TotalMeetingMinutes() float64 {
	return minutesSince(this.meetingStart, this.clock.Now())
}

// CheckTimeState moves the current item to warning at 80% and to overtime at
// 100% of its allocated time. It returns the new state only if this call
// caused a transition.
func (this *Meeting) CheckTimeState() (ItemState, bool) {
	item := this.current()
	if item == nil || !item.State.IsRunning() {
		return 0, false
	}

	ratio := 1.0
	if item.DurationMinutes > 0 {
		ratio = this.ElapsedMinutes() / item.DurationMinutes
	}

	old := item.State
	if ratio >= 1.0 && item.State != ItemStateOvertime && item.State != ItemStateExtended {
		item.State = ItemStateOvertime
	} else if ratio >= warningRatio && item.State == ItemStateActive {
		item.State = ItemStateWarning
	}

	if item.State != old {
		return item.State, true
	}
	return 0, false
}

// MarkWarning forces the current item into warning if it is still active.
func (this *Meeting) MarkWarning() bool {
	if item := this.current(); item != nil && item.State == ItemStateActive {
		item.State = ItemStateWarning
		return true
	}
	return false
}

// MarkOvertime forces the current item into overtime if it is still running.
func (this *Meeting) MarkOvertime() bool {
	if item := this.current(); item != nil && item.State.IsRunning() && item.State != ItemStateOvertime {
		item.State = ItemStateOvertime
		return true
	}
	return false
}

// AdvanceToNext completes the current item, folds its overrun into the
// meeting overtime and activates the next one. It returns false if there is
// no next item.
func (this *Meeting) AdvanceToNext() (Item, bool) {
	item := this.current()
	if item == nil {
		return Item{}, false
	}

	elapsed := this.ElapsedMinutes()
	if overrun := elapsed - item.DurationMinutes; overrun > 0 {
		this.overtime += overrun
	}
	item.ActualElapsed = elapsed
	item.State = ItemStateCompleted

	this.currentIndex++
	next := this.current()
	if next == nil {
		return Item{}, false
	}
	next.State = ItemStateActive
	this.itemStart = this.clock.Now()
	return *next, true
}

// HandleOverride marks the current item as extended and opens the override
// grace window. The clock keeps running.
func (this *Meeting) HandleOverride() bool {
	item := this.current()
	if item == nil {
		return false
	}
	item.State = ItemStateExtended
	this.lastOverride = this.clock.Now()
	return true
}

func (this *Meeting) OverrideGrace() time.Duration {
	return this.overrideGrace
}

func (this *Meeting) InOverrideGrace() bool {
	if this.lastOverride.IsZero() {
		return false
	}
	return this.clock.Now().Sub(this.lastOverride) < this.overrideGrace
}

func (this *Meeting) LastOverride() time.Time {
	return this.lastOverride
}

// OverrideGraceRemaining is what is left of the override grace window, 0 if
// there is none open.
func (this *Meeting) OverrideGraceRemaining() time.Duration {
	if !this.InOverrideGrace() {
		return 0
	}
	return this.overrideGrace - this.clock.Now().Sub(this.lastOverride)
}

func (this *Meeting) UpdateSilenceSignal() {
	this.silenceUntil = this.clock.Now().Add(this.silenceDuration)
}

func (this *Meeting) SilenceUntil() time.Time {
	return this.silenceUntil
}

func (this *Meeting) SilenceActive() bool {
	return !this.silenceUntil.IsZero() && this.clock.Now().Before(this.silenceUntil)
}

func (this *Meeting) RecordIntervention() {
	this.lastIntervention = this.clock.Now()
}

func (this *Meeting) CanIntervene() bool {
	if this.InOverrideGrace() {
		return false
	}
	return this.sinceLastIntervention() > this.interventionCooldown
}

func (this *Meeting) CanInterveneForTangent() bool {
	if !this.style.Facilitates() {
		return false
	}
	if this.InOverrideGrace() {
		return false
	}
	return this.sinceLastIntervention() > this.style.TangentTolerance()
}

func (this *Meeting) sinceLastIntervention() time.Duration {
	if this.lastIntervention.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return this.clock.Now().Sub(this.lastIntervention)
}

func (this *Meeting) AddNotes(v Notes) {
	this.notes = append(this.notes, v)
}

func (this *Meeting) Notes() []Notes {
	result := make([]Notes, len(this.notes))
	copy(result, this.notes)
	return result
}

// MemoryContext renders the notes of all completed items.
func (this *Meeting) MemoryContext() string {
	if len(this.notes) == 0 {
		return "No completed items yet."
	}
	result := ""
	for i, v := range this.notes {
		if i > 0 {
			result += "\n\n"
		}
		result += v.String()
	}
	return result
}

func minutesSince(start, now time.Time) float64 {
	if start.IsZero() {
		return 0
	}
	return now.Sub(start).Minutes()
}
