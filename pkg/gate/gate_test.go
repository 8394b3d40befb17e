package gate

import (
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func baseContext() Context {
	return Context{
		At:               now,
		Style:            agenda.StyleModerate,
		CurrentTopic:     "Roadmap",
		CurrentState:     agenda.ItemStateActive,
		HasCurrentItem:   true,
		ElapsedMinutes:   4,
		AllocatedMinutes: 10,
		RecentTranscript: "alice: we need to decide the release date",
		ItemsRemaining:   2,
	}
}

func TestEvaluate_EmptyCandidateIsAlwaysSilent(t *testing.T) {
	ctx := baseContext()
	ctx.TangentConfidence = 1
	ctx.MeetingOvertime = 10
	for _, trigger := range append(AllTriggers, Trigger("unknown")) {
		for _, candidate := range []string{"", "   ", "\n\t"} {
			actual := Evaluate(candidate, trigger, ctx)
			assert.Equal(t, ActionSilent, actual.Action, "trigger %v", trigger)
			assert.Equal(t, "", actual.Text)
			assert.Equal(t, 1.0, actual.Confidence)
		}
	}
}

func TestEvaluate_TangentThresholds(t *testing.T) {
	cases := []struct {
		style     agenda.Style
		threshold float64
	}{
		{agenda.StyleGentle, 0.80},
		{agenda.StyleModerate, 0.70},
		{agenda.StyleAggressive, 0.60},
	}
	for _, tc := range cases {
		t.Run(tc.style.String(), func(t *testing.T) {
			ctx := baseContext()
			ctx.Style = tc.style

			ctx.TangentConfidence = tc.threshold + 0.01
			above := Evaluate("Let's get back to the roadmap.", TriggerTangent, ctx)
			assert.Equal(t, ActionSpeak, above.Action)
			assert.Equal(t, "Let's get back to the roadmap.", above.Text)
			assert.InDelta(t, tc.threshold+0.01, above.Confidence, 1e-9)

			ctx.TangentConfidence = tc.threshold
			at := Evaluate("Let's get back to the roadmap.", TriggerTangent, ctx)
			assert.Equal(t, ActionSpeak, at.Action)

			ctx.TangentConfidence = tc.threshold - 0.01
			below := Evaluate("Let's get back to the roadmap.", TriggerTangent, ctx)
			assert.Equal(t, ActionSilent, below.Action)
			assert.Equal(t, "", below.Text)
			assert.InDelta(t, 1-(tc.threshold-0.01), below.Confidence, 1e-9)
		})
	}
}

func TestEvaluate_TangentWhileChatting(t *testing.T) {
	ctx := baseContext()
	ctx.Style = agenda.StyleChatting
	ctx.TangentConfidence = 1

	actual := Evaluate("Back to topic please.", TriggerTangent, ctx)
	assert.Equal(t, ActionSilent, actual.Action)
}

func TestEvaluate_TangentDuringGrace(t *testing.T) {
	ctx := baseContext()
	ctx.InOverrideGrace = true
	ctx.TangentConfidence = 0.99

	actual := Evaluate("Back to topic please.", TriggerTangent, ctx)
	assert.Equal(t, ActionSilent, actual.Action)
	assert.Equal(t, 0.95, actual.Confidence)
}

func TestEvaluate_SilenceWindow(t *testing.T) {
	ctx := baseContext()
	ctx.SilenceUntil = now.Add(time.Minute)

	assert.Equal(t, ActionSilent, Evaluate("Two minutes left on roadmap.", TriggerTimeWarning, ctx).Action)
	assert.Equal(t, ActionSilent, Evaluate("Hello everyone.", TriggerIntro, ctx).Action)
	assert.Equal(t, ActionSilent, Evaluate("Yes, Friday.", TriggerDirectQuestion, ctx).Action)
	assert.Equal(t, ActionSpeak, Evaluate("Time's up. Moving to hiring.", TriggerTransition, ctx).Action)
	assert.Equal(t, ActionSpeak, Evaluate("That wraps up our agenda.", TriggerWrapUp, ctx).Action)

	ctx.At = ctx.SilenceUntil
	assert.Equal(t, ActionSpeak, Evaluate("Two minutes left on roadmap.", TriggerTimeWarning, ctx).Action)
}

func TestEvaluate_Redundancy(t *testing.T) {
	ctx := baseContext()
	ctx.RecentTranscript = "bob: we need to decide the release date today\nalice: yes the release date"

	for _, trigger := range AllTriggers {
		actual := Evaluate("We need to decide the release date!", trigger, ctx)
		assert.Equal(t, ActionSilent, actual.Action, "trigger %v", trigger)
		assert.Equal(t, "candidate speech is redundant with recent transcript", actual.Reason)
	}

	half := Evaluate("release date hiring budget", TriggerDirectQuestion, ctx)
	assert.Equal(t, ActionSpeak, half.Action, "exactly half is not more than half")

	ctx.RecentTranscript = ""
	assert.Equal(t, ActionSpeak, Evaluate("We need to decide the release date!", TriggerIntro, ctx).Action)
}

func TestPolicy_RedundancyExempt(t *testing.T) {
	instance := NewPolicy()
	require.NoError(t, instance.RedundancyExempt.Set("direct_question"))
	require.NoError(t, instance.RedundancyExempt.Set("intro"))
	require.NoError(t, instance.RedundancyExempt.Set("intro"))
	assert.Equal(t, "direct_question,intro", instance.RedundancyExempt.String())

	ctx := baseContext()
	ctx.RecentTranscript = "what is the release date"

	assert.Equal(t, ActionSpeak, instance.Evaluate("The release date is Friday.", TriggerDirectQuestion, ctx).Action)
	assert.Equal(t, ActionSilent, instance.Evaluate("What is the release date?", TriggerTimeWarning, ctx).Action)
}

func TestEvaluate_Transition(t *testing.T) {
	ctx := baseContext()

	actual := Evaluate("Moving on to hiring.", TriggerTransition, ctx)
	assert.Equal(t, ActionSpeak, actual.Action)
	assert.Equal(t, 0.95, actual.Confidence)

	ctx.InOverrideGrace = true
	actual = Evaluate("Moving on to hiring.", TriggerTransition, ctx)
	assert.Equal(t, ActionSilent, actual.Action)
	assert.Equal(t, 0.92, actual.Confidence)

	ctx.MeetingOvertime = 4.99
	assert.Equal(t, ActionSilent, Evaluate("Moving on to hiring.", TriggerTransition, ctx).Action)

	ctx.MeetingOvertime = 5
	actual = Evaluate("Moving on to hiring.", TriggerTransition, ctx)
	assert.Equal(t, ActionSpeak, actual.Action)
	assert.Equal(t, "transition forced due to significant meeting overtime", actual.Reason)
}

func TestEvaluate_TimeWarning(t *testing.T) {
	ctx := baseContext()

	assert.Equal(t, ActionSpeak, Evaluate("Two minutes left.", TriggerTimeWarning, ctx).Action)

	ctx.InOverrideGrace = true
	assert.Equal(t, ActionSilent, Evaluate("Two minutes left.", TriggerTimeWarning, ctx).Action)
}

func TestEvaluate_AlwaysSpoken(t *testing.T) {
	ctx := baseContext()
	ctx.InOverrideGrace = true

	for _, trigger := range (Triggers{TriggerIntro, TriggerWrapUp, TriggerDirectQuestion}) {
		actual := Evaluate("Hello there, friends.", trigger, ctx)
		assert.Equal(t, ActionSpeak, actual.Action, "trigger %v", trigger)
		assert.Equal(t, 1.0, actual.Confidence)
	}
}

func TestEvaluate_UnknownTrigger(t *testing.T) {
	actual := Evaluate("Hello there.", Trigger("smalltalk"), baseContext())

	assert.Equal(t, ActionSilent, actual.Action)
	assert.Equal(t, "no rule allows trigger 'smalltalk'", actual.Reason)
	assert.Equal(t, 0.75, actual.Confidence)
}

func TestEvaluate_ConfidenceIsClamped(t *testing.T) {
	ctx := baseContext()
	ctx.TangentConfidence = 1.7
	assert.Equal(t, 1.0, Evaluate("Back to topic.", TriggerTangent, ctx).Confidence)

	ctx.TangentConfidence = -0.3
	assert.Equal(t, 1.0, Evaluate("Back to topic.", TriggerTangent, ctx).Confidence)
}

func TestContextOf(t *testing.T) {
	c := clock.NewManual(now)
	id1, id2 := 1, 2
	d1, d2 := 10.0, 5.0
	m, err := agenda.NewMeeting(agenda.Definition{Items: []agenda.ItemDefinition{
		{ID: &id1, Topic: "Status", DurationMinutes: &d1},
		{ID: &id2, Topic: "Hiring", DurationMinutes: &d2},
	}}, agenda.WithClock(c))
	require.NoError(t, err)
	m.Start()
	m.AddTranscript("alice", "too old")
	c.Advance(90 * time.Second)
	m.AddTranscript("bob", "recent enough")
	m.UpdateSilenceSignal()

	actual := ContextOf(m, 0.4)

	assert.Equal(t, c.Now(), actual.At)
	assert.True(t, actual.HasCurrentItem)
	assert.Equal(t, "Status", actual.CurrentTopic)
	assert.Equal(t, agenda.ItemStateActive, actual.CurrentState)
	assert.InDelta(t, 1.5, actual.ElapsedMinutes, 1e-9)
	assert.Equal(t, 10.0, actual.AllocatedMinutes)
	assert.Equal(t, "bob: recent enough", actual.RecentTranscript)
	assert.True(t, actual.SilenceActive())
	assert.Equal(t, 0.4, actual.TangentConfidence)
	assert.Equal(t, 1, actual.ItemsRemaining)
}

func TestIsSilenceRequest(t *testing.T) {
	for _, given := range []string{"Beat, please be quiet.", "SHH", "hold on beat we're fine", "Not now!"} {
		assert.True(t, IsSilenceRequest(given), given)
	}
	for _, given := range []string{"", "quietly moving on", "let's talk about the budget"} {
		assert.False(t, IsSilenceRequest(given), given)
	}
}

func TestTrigger_Set(t *testing.T) {
	for _, expected := range AllTriggers {
		var actual Trigger
		require.NoError(t, actual.Set(expected.String()))
		assert.Equal(t, expected, actual)
	}
	var actual Trigger
	assert.EqualError(t, actual.Set("chit_chat"), "illegal-trigger: chit_chat")
}

func ExampleEvaluate() {
	result := Evaluate("Time's up. Moving to hiring.", TriggerTransition, Context{At: now, MeetingOvertime: 6, InOverrideGrace: true})
	fmt.Println(result.Action, result.Reason)
	// Output: speak transition forced due to significant meeting overtime
}
