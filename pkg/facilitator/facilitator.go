// Package facilitator drives one meeting. It owns the agenda state machine,
// schedules the timers of the current item, routes what participants say and
// lets the speech gate decide about every utterance before it is spoken.
//
// All access to the meeting is serialized by one mutex. Nothing slow happens
// while it is held: the oracle and the speaker are always called after it was
// released.
package facilitator

import (
	"context"
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/clock"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/gate"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/oracle"
	log "github.com/echocat/slf4g"
	"math"
	"strings"
	"sync"
	"time"
)

const (
	introTemplate      = "Hi, I'm Beat, your meeting facilitator. I'll stay quiet unless you call my name or the meeting goes off track. Today: %d items, %d minutes. Starting with %s."
	chattingIntroText  = "Hey, I'm Beat! I'm in chat mode today, no agenda and no timers. Just ask me anything and I'll do my best to help."
	transitionTemplate = "Time's up. Moving to %s, %d minutes. Let's go."
	warningTemplate    = "Beat here, %.0f minutes left on %s. Let's stay focused and wrap this up."
	tangentTemplate    = "Beat here, we're off track. Back to %s."
	wrapUpText         = "That wraps up our agenda. Host, please click End Meeting when you're ready."
	skipTemplate       = "Sure, skipping %s. Moving on to %s."
	skipLastTemplate   = "Sure, skipping %s. That was the last agenda item, great meeting everyone!"
	nothingToSkipText  = "There are no active agenda items to skip."
	endRequestText     = "Please use the End Meeting button to end this meeting."
	overrideText       = "Got it, I'll give you more time on this one!"
	answerFailedText   = "Sorry, I had a technical hiccup. Could you repeat that?"
)

// TranscriptEvent is one final utterance of a participant.
type TranscriptEvent struct {
	Speaker string    `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at,omitempty"`
}

type Option func(*Facilitator)

func WithClock(v clock.Clock) Option {
	return func(f *Facilitator) { f.clock = clock.OrSystem(v) }
}

func WithPolicy(v gate.Policy) Option {
	return func(f *Facilitator) { f.policy = v }
}

func WithOracle(v oracle.Oracle) Option {
	return func(f *Facilitator) {
		if v != nil {
			f.oracle = v
		}
	}
}

func WithSpeaker(v Speaker) Option {
	return func(f *Facilitator) {
		if v != nil {
			f.speaker = v
		}
	}
}

func WithPublisher(v Publisher) Option {
	return func(f *Facilitator) {
		if v != nil {
			f.publisher = v
		}
	}
}

// New creates a facilitator for a meeting of the given definition. It fails
// with *agenda.ConfigurationError if the definition is invalid.
func New(def agenda.Definition, conf Configuration, opts ...Option) (*Facilitator, error) {
	result := &Facilitator{
		conf:      conf,
		policy:    gate.DefaultPolicy,
		oracle:    oracle.Disabled{},
		speaker:   LogSpeaker{},
		publisher: noopPublisher{},
		clock:     clock.System,
	}
	for _, opt := range opts {
		opt(result)
	}

	meeting, err := agenda.NewMeeting(def, append(conf.MeetingOptions(), agenda.WithClock(result.clock))...)
	if err != nil {
		return nil, err
	}
	result.meeting = meeting
	result.timers = newTimers(result.clock, result.onWarning, result.onOvertime)
	result.ctx, result.cancel = context.WithCancel(context.Background())
	return result, nil
}

type Facilitator struct {
	conf      Configuration
	policy    gate.Policy
	oracle    oracle.Oracle
	speaker   Speaker
	publisher Publisher
	clock     clock.Clock

	mutex          sync.Mutex
	meeting        *agenda.Meeting
	timers         *Timers
	heartbeat      *periodic
	tangentMonitor *periodic

	ctx        context.Context
	cancel     context.CancelFunc
	background sync.WaitGroup
	closed     bool
}

// outcome is everything that has to happen after the lock was released.
type outcome struct {
	say       gate.Result
	snapshot  *agenda.Snapshot
	summarize *completion
	ask       *oracle.Question
}

// completion describes an item which was just completed.
type completion struct {
	item       agenda.Item
	transcript string
	next       agenda.Item
	hasNext    bool
}

func (this *Facilitator) locked(fn func() outcome) {
	this.mutex.Lock()
	o := fn()
	this.mutex.Unlock()

	this.apply(o)
}

func (this *Facilitator) apply(o outcome) {
	if o.snapshot != nil {
		this.publisher.Publish(*o.snapshot)
	}
	this.say(o.say)
	if o.summarize != nil {
		this.summarize(*o.summarize)
	}
	if o.ask != nil {
		this.answer(*o.ask)
	}
}

func (this *Facilitator) snapshotLocked() *agenda.Snapshot {
	result := this.meeting.Snapshot()
	return &result
}

// decideLocked asks the gate and records the intervention if it allows to
// speak.
func (this *Facilitator) decideLocked(candidate string, trigger gate.Trigger, tangentConfidence float64) gate.Result {
	result := this.policy.Evaluate(candidate, trigger, gate.ContextOf(this.meeting, tangentConfidence))
	if result.ShouldSpeak() {
		this.meeting.RecordIntervention()
	}
	return result
}

func (this *Facilitator) say(result gate.Result) {
	if !result.ShouldSpeak() {
		return
	}
	if err := this.speaker.Say(this.ctx, result.Text, true); err != nil {
		log.WithError(err).
			With("text", result.Text).
			Warn("Cannot speak.")
	}
}

// Start starts the meeting, the timers of the first item, the heartbeat and
// the tangent monitor and delivers the intro. Calling it again does nothing.
func (this *Facilitator) Start() {
	this.locked(func() outcome {
		if this.meeting.Started() || this.meeting.Ended() {
			return outcome{}
		}
		this.meeting.Start()
		this.scheduleLocked()
		this.heartbeat = startPeriodic(this.clock, this.conf.HeartbeatInterval, this.onHeartbeat)
		this.tangentMonitor = startPeriodic(this.clock, this.conf.TangentCheckInterval, this.onTangentCheck)

		log.With("meeting", this.meeting.ID()).
			With("title", this.meeting.Title()).
			With("items", len(this.meeting.Items())).
			With("style", this.meeting.Style()).
			Info("Meeting started.")

		return outcome{
			say:      this.decideLocked(this.introLocked(), gate.TriggerIntro, 0),
			snapshot: this.snapshotLocked(),
		}
	})
}

func (this *Facilitator) introLocked() string {
	if !this.meeting.Style().Facilitates() {
		return chattingIntroText
	}
	first := "the discussion"
	if items := this.meeting.Items(); len(items) > 0 {
		first = items[0].Topic
	}
	return fmt.Sprintf(introTemplate, len(this.meeting.Items()), int(this.meeting.TotalScheduledMinutes()), first)
}

// scheduleLocked (re)starts the timers of the current item. Without a
// current item or while chatting there are no timers. An extended item keeps
// the overtime at the end of its grace window.
func (this *Facilitator) scheduleLocked() {
	item, ok := this.meeting.CurrentItem()
	if !ok || this.meeting.Ended() || !this.meeting.Style().Facilitates() {
		this.timers.Cancel()
		return
	}
	if item.State == agenda.ItemStateExtended {
		if remaining := this.meeting.OverrideGraceRemaining(); remaining > 0 {
			this.timers.Extend(remaining)
			return
		}
	}
	elapsed := time.Duration(this.meeting.ElapsedMinutes() * float64(time.Minute))
	this.timers.Schedule(item.Allocated(), elapsed)
}

func (this *Facilitator) onWarning(generation uint64) {
	this.locked(func() outcome {
		if !this.timers.IsCurrent(generation) || this.meeting.Ended() {
			return outcome{}
		}
		item, ok := this.meeting.CurrentItem()
		if !ok || !this.meeting.MarkWarning() {
			return outcome{}
		}

		var result outcome
		if this.meeting.CanIntervene() {
			remaining := math.Max(0, item.DurationMinutes-this.meeting.ElapsedMinutes())
			result.say = this.decideLocked(fmt.Sprintf(warningTemplate, remaining, item.Topic), gate.TriggerTimeWarning, 0)
		} else {
			log.With("topic", item.Topic).
				Debug("Time warning reached but intervening is not allowed right now.")
		}
		result.snapshot = this.snapshotLocked()
		return result
	})
}

func (this *Facilitator) onOvertime(generation uint64) {
	this.locked(func() outcome {
		if !this.timers.IsCurrent(generation) || this.meeting.Ended() {
			return outcome{}
		}
		this.meeting.MarkOvertime()

		c, ok := this.advanceLocked()
		if !ok {
			return outcome{}
		}
		result := outcome{summarize: &c}
		if c.hasNext {
			result.say = this.decideLocked(fmt.Sprintf(transitionTemplate, c.next.Topic, int(c.next.DurationMinutes)), gate.TriggerTransition, 0)
		} else {
			result.say = this.decideLocked(wrapUpText, gate.TriggerWrapUp, 0)
		}
		result.snapshot = this.snapshotLocked()
		return result
	})
}

// advanceLocked completes the current item and starts the timers of the next
// one.
func (this *Facilitator) advanceLocked() (completion, bool) {
	if _, ok := this.meeting.CurrentItem(); !ok {
		return completion{}, false
	}
	index := this.meeting.CurrentIndex()

	next, hasNext := this.meeting.AdvanceToNext()
	result := completion{
		item:       this.meeting.Items()[index],
		transcript: this.meeting.ItemTranscript(index),
		next:       next,
		hasNext:    hasNext,
	}
	this.scheduleLocked()

	l := log.With("completed", result.item.Topic).
		With("actualElapsed", fmt.Sprintf("%.1f", result.item.ActualElapsed))
	if hasNext {
		l.With("next", next.Topic).
			Info("Agenda advanced.")
	} else {
		l.Info("Agenda completed.")
	}
	return result, true
}

func (this *Facilitator) summarize(c completion) {
	this.mutex.Lock()
	if this.closed {
		this.mutex.Unlock()
		log.With("topic", c.item.Topic).
			Debug("Facilitator already closed. Item is not summarized.")
		return
	}
	this.background.Add(1)
	this.mutex.Unlock()

	go func() {
		defer this.background.Done()

		notes, err := this.oracle.SummarizeItem(this.ctx, oracle.SummaryRequest{
			Item:       c.item,
			Transcript: c.transcript,
		})
		if err != nil {
			log.WithError(err).
				With("topic", c.item.Topic).
				Warn("Cannot summarize item. Keeping empty notes.")
		}
		if notes.Topic == "" {
			notes.ItemID, notes.Topic = c.item.ID, c.item.Topic
		}

		this.locked(func() outcome {
			this.meeting.AddNotes(notes)
			return outcome{snapshot: this.snapshotLocked()}
		})
	}()
}

func (this *Facilitator) onHeartbeat() {
	this.locked(func() outcome {
		if this.meeting.Ended() {
			return outcome{}
		}
		return outcome{snapshot: this.snapshotLocked()}
	})
}

func (this *Facilitator) onTangentCheck() {
	var req oracle.TangentRequest
	index := -1

	this.mutex.Lock()
	if item, ok := this.meeting.CurrentItem(); ok && !this.meeting.Ended() && this.meeting.CanInterveneForTangent() {
		if transcript := this.meeting.RecentTranscript(gate.RecentTranscriptWindow); transcript != "" {
			req = oracle.TangentRequest{
				Topic:            item.Topic,
				Description:      item.Description,
				RecentTranscript: transcript,
			}
			index = this.meeting.CurrentIndex()
		}
	}
	this.mutex.Unlock()

	if index < 0 {
		return
	}

	judgment, err := this.oracle.JudgeTangent(this.ctx, req)
	if err != nil {
		log.WithError(err).
			Warn("Cannot judge the conversation. Skipping this check.")
		return
	}

	this.locked(func() outcome {
		if this.meeting.Ended() || this.meeting.CurrentIndex() != index || !this.meeting.CanInterveneForTangent() {
			return outcome{}
		}
		var candidate string
		if judgment.ShouldSpeak {
			candidate = judgment.SpokenResponse
			if strings.TrimSpace(candidate) == "" {
				candidate = fmt.Sprintf(tangentTemplate, req.Topic)
			}
		}
		return outcome{say: this.decideLocked(candidate, gate.TriggerTangent, judgment.TangentConfidence())}
	})
}

// HandleTranscript records what a participant said and reacts to it:
// requests for silence, time questions, skip, end and override requests and
// questions addressed to the facilitator.
func (this *Facilitator) HandleTranscript(ev TranscriptEvent) {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}
	speaker := ev.Speaker
	if speaker == "" {
		speaker = "participant"
	}

	this.locked(func() outcome {
		if this.meeting.Ended() {
			return outcome{}
		}
		this.meeting.AddTranscript(speaker, text)
		log.With("speaker", speaker).
			With("text", text).
			With("at", ev.At).
			Debug("Transcript received.")

		if gate.IsSilenceRequest(text) {
			this.meeting.UpdateSilenceSignal()
			log.With("speaker", speaker).
				With("until", this.meeting.SilenceUntil()).
				Info("Silence requested.")
			return outcome{}
		}

		addressed := IsAddressed(text)
		if this.meeting.SilenceActive() && !addressed {
			return outcome{}
		}

		switch ClassifyCommand(text) {
		case CommandTimeQuery:
			if this.conf.DeterministicTimeQueries {
				return outcome{say: this.decideLocked(this.timeStatusTextLocked(), gate.TriggerDirectQuestion, 0)}
			}
		case CommandSkip:
			if _, ok := this.meeting.CurrentItem(); ok {
				reply, c, _ := this.skipLocked()
				return outcome{
					say:       this.decideLocked(reply, gate.TriggerDirectQuestion, 0),
					snapshot:  this.snapshotLocked(),
					summarize: c,
				}
			}
		case CommandEnd:
			return outcome{say: this.decideLocked(endRequestText, gate.TriggerDirectQuestion, 0)}
		case CommandOverride:
			if this.extendLocked() {
				return outcome{
					say:      this.decideLocked(overrideText, gate.TriggerDirectQuestion, 0),
					snapshot: this.snapshotLocked(),
				}
			}
		}

		if !addressed {
			return outcome{}
		}
		q := this.questionLocked(speaker, text)
		return outcome{ask: &q}
	})
}

func (this *Facilitator) timeStatusTextLocked() string {
	return FormatTimeStatus(this.meeting.TimeStatus(this.meeting.Now()))
}

func (this *Facilitator) questionLocked(asker, text string) oracle.Question {
	result := oracle.Question{
		Text:   text,
		Asker:  asker,
		Style:  this.meeting.Style(),
		Status: this.meeting.TimeStatus(this.meeting.Now()),
	}
	if len(this.meeting.Notes()) > 0 {
		result.MemoryContext = this.meeting.MemoryContext()
	}
	return result
}

func (this *Facilitator) answer(q oracle.Question) {
	text, err := this.oracle.Answer(this.ctx, q)
	if err != nil {
		log.WithError(err).
			With("asker", q.Asker).
			Warn("Cannot answer question.")
		text = answerFailedText
	}

	this.locked(func() outcome {
		if this.meeting.Ended() {
			return outcome{}
		}
		return outcome{say: this.decideLocked(text, gate.TriggerDirectQuestion, 0)}
	})
}

func (this *Facilitator) skipLocked() (string, *completion, bool) {
	c, ok := this.advanceLocked()
	if !ok {
		return nothingToSkipText, nil, false
	}
	this.meeting.RecordIntervention()
	if c.hasNext {
		return fmt.Sprintf(skipTemplate, c.item.Topic, c.next.Topic), &c, true
	}
	return fmt.Sprintf(skipLastTemplate, c.item.Topic), &c, true
}

// Skip completes the current item right away and moves on to the next one.
// It returns false if there was no current item.
func (this *Facilitator) Skip() bool {
	var result bool
	this.locked(func() outcome {
		if this.meeting.Ended() {
			return outcome{}
		}
		reply, c, ok := this.skipLocked()
		if !ok {
			return outcome{}
		}
		result = true
		return outcome{
			say:       this.decideLocked(reply, gate.TriggerDirectQuestion, 0),
			snapshot:  this.snapshotLocked(),
			summarize: c,
		}
	})
	return result
}

func (this *Facilitator) extendLocked() bool {
	if this.meeting.Ended() || !this.meeting.HandleOverride() {
		return false
	}
	if this.meeting.Style().Facilitates() {
		this.timers.Extend(this.meeting.OverrideGrace())
	}
	log.With("grace", this.meeting.OverrideGrace()).
		Info("Current item extended.")
	return true
}

// Extend gives the current item more time: it is marked as extended and the
// overtime fires again after the override grace. It returns false if there
// is no current item.
func (this *Facilitator) Extend() bool {
	var result bool
	this.locked(func() outcome {
		if result = this.extendLocked(); !result {
			return outcome{}
		}
		return outcome{
			say:      this.decideLocked(overrideText, gate.TriggerDirectQuestion, 0),
			snapshot: this.snapshotLocked(),
		}
	})
	return result
}

// SetStyle changes the facilitation style. Chatting stops all item timers,
// every other style (re)starts them.
func (this *Facilitator) SetStyle(v agenda.Style) {
	this.locked(func() outcome {
		if this.meeting.Ended() {
			return outcome{}
		}
		old := this.meeting.Style()
		this.meeting.SetStyle(v)
		if this.meeting.Started() {
			this.scheduleLocked()
		}
		log.With("from", old).
			With("to", v).
			Info("Style changed.")
		return outcome{snapshot: this.snapshotLocked()}
	})
}

// RequestSilence keeps the facilitator quiet for the configured silence
// duration. Transitions and the wrap-up are still announced.
func (this *Facilitator) RequestSilence() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.meeting.UpdateSilenceSignal()
	log.With("until", this.meeting.SilenceUntil()).
		Info("Silence requested.")
}

// End ends the meeting: all timers, the heartbeat and the tangent monitor
// stop and the final state is published. Calling it again does nothing.
func (this *Facilitator) End() {
	this.locked(func() outcome {
		if this.meeting.Ended() {
			return outcome{}
		}
		this.timers.Cancel()
		this.heartbeat.Stop()
		this.tangentMonitor.Stop()
		this.meeting.End()

		log.With("meeting", this.meeting.ID()).
			With("totalMinutes", fmt.Sprintf("%.1f", this.meeting.TotalMeetingMinutes())).
			With("overtime", fmt.Sprintf("%.1f", this.meeting.Overtime())).
			Info("Meeting ended.")
		return outcome{snapshot: this.snapshotLocked()}
	})
}

// Ask answers a question which was written instead of spoken, like a chat
// message mentioning the facilitator. The reply is returned, not spoken.
func (this *Facilitator) Ask(asker, question string) string {
	question = strings.TrimSpace(question)

	var reply string
	var q *oracle.Question
	this.locked(func() outcome {
		if this.meeting.Ended() {
			reply = "The meeting is already over."
			return outcome{}
		}
		switch ClassifyCommand(question) {
		case CommandTimeQuery:
			reply = this.timeStatusTextLocked()
		case CommandSkip:
			var c *completion
			reply, c, _ = this.skipLocked()
			return outcome{snapshot: this.snapshotLocked(), summarize: c}
		case CommandEnd:
			reply = endRequestText
		default:
			v := this.questionLocked(asker, question)
			q = &v
		}
		return outcome{}
	})
	if q == nil {
		return reply
	}

	result, err := this.oracle.Answer(this.ctx, *q)
	if err != nil {
		log.WithError(err).
			With("asker", asker).
			Warn("Cannot answer question.")
		return "Sorry, I couldn't process that right now."
	}
	return result
}

func (this *Facilitator) Snapshot() agenda.Snapshot {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.meeting.Snapshot()
}

func (this *Facilitator) TimeStatus() agenda.TimeStatus {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.meeting.TimeStatus(this.meeting.Now())
}

// FormatTimeStatus is the spoken answer to a time question right now.
func (this *Facilitator) FormatTimeStatus() string {
	return FormatTimeStatus(this.TimeStatus())
}

func (this *Facilitator) Ended() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.meeting.Ended()
}

// Close ends the meeting if not done yet, aborts pending oracle calls and
// waits until all background work is done.
func (this *Facilitator) Close() error {
	this.mutex.Lock()
	this.closed = true
	this.mutex.Unlock()

	this.End()
	this.cancel()
	this.background.Wait()
	return nil
}
