package agenda

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func definition(durations ...float64) Definition {
	result := Definition{
		Title: "Weekly",
		Items: []ItemDefinition{},
	}
	for i, d := range durations {
		id := i + 1
		duration := d
		result.Items = append(result.Items, ItemDefinition{
			ID:              &id,
			Topic:           []string{"Status", "Roadmap", "Hiring", "Misc"}[i%4],
			Description:     "Item description",
			DurationMinutes: &duration,
		})
	}
	return result
}

func newMeeting(t testing.TB, def Definition) (*Meeting, *clock.Manual) {
	t.Helper()
	c := clock.NewManual(t0)
	instance, err := NewMeeting(def, WithClock(c))
	require.NoError(t, err)
	return instance, c
}

func TestMeeting_Start(t *testing.T) {
	instance, c := newMeeting(t, definition(10, 5))

	assert.Equal(t, 0.0, instance.ElapsedMinutes())
	assert.Equal(t, 0.0, instance.TotalMeetingMinutes())
	assert.False(t, instance.Started())

	c.Advance(time.Minute)
	assert.Equal(t, 0.0, instance.ElapsedMinutes())

	instance.Start()
	assert.True(t, instance.Started())
	assert.Equal(t, 0.0, instance.ElapsedMinutes())

	current, ok := instance.CurrentItem()
	require.True(t, ok)
	assert.Equal(t, ItemStateActive, current.State)
	assert.Equal(t, ItemStateUpcoming, instance.Items()[1].State)

	c.Advance(3 * time.Minute)
	assert.InDelta(t, 3.0, instance.ElapsedMinutes(), 1e-9)
	assert.InDelta(t, 3.0, instance.TotalMeetingMinutes(), 1e-9)
}

func TestMeeting_StartWithEmptyAgenda(t *testing.T) {
	instance, _ := newMeeting(t, definition())

	instance.Start()

	_, ok := instance.CurrentItem()
	assert.False(t, ok)
	_, transitioned := instance.CheckTimeState()
	assert.False(t, transitioned)
	_, ok = instance.AdvanceToNext()
	assert.False(t, ok)
	assert.False(t, instance.HandleOverride())
}

func TestMeeting_CheckTimeState(t *testing.T) {
	instance, c := newMeeting(t, definition(10, 5))
	instance.Start()

	c.Advance(7 * time.Minute)
	_, transitioned := instance.CheckTimeState()
	assert.False(t, transitioned)

	c.Advance(1 * time.Minute)
	state, transitioned := instance.CheckTimeState()
	assert.True(t, transitioned)
	assert.Equal(t, ItemStateWarning, state)

	_, transitioned = instance.CheckTimeState()
	assert.False(t, transitioned, "same elapsed time must not transition twice")

	c.Advance(2 * time.Minute)
	state, transitioned = instance.CheckTimeState()
	assert.True(t, transitioned)
	assert.Equal(t, ItemStateOvertime, state)

	c.Advance(2 * time.Minute)
	_, transitioned = instance.CheckTimeState()
	assert.False(t, transitioned)

	next, ok := instance.AdvanceToNext()
	require.True(t, ok)
	assert.Equal(t, "Roadmap", next.Topic)
	assert.InDelta(t, 2.0, instance.Overtime(), 1e-9)
	assert.InDelta(t, 12.0, instance.Items()[0].ActualElapsed, 1e-9)
	assert.Equal(t, ItemStateCompleted, instance.Items()[0].State)
	assert.Equal(t, 0.0, instance.ElapsedMinutes())
}

func TestMeeting_CheckTimeStateJumpsStraightToOvertime(t *testing.T) {
	instance, c := newMeeting(t, definition(10))
	instance.Start()

	c.Advance(11 * time.Minute)
	state, transitioned := instance.CheckTimeState()
	assert.True(t, transitioned)
	assert.Equal(t, ItemStateOvertime, state)
}

func TestMeeting_CheckTimeStateWithoutAllocation(t *testing.T) {
	instance, _ := newMeeting(t, definition(0, -3))
	instance.Start()

	state, transitioned := instance.CheckTimeState()
	assert.True(t, transitioned)
	assert.Equal(t, ItemStateOvertime, state)

	_, ok := instance.AdvanceToNext()
	require.True(t, ok)
	state, transitioned = instance.CheckTimeState()
	assert.True(t, transitioned)
	assert.Equal(t, ItemStateOvertime, state)
}

func TestMeeting_CheckTimeStateWhileExtended(t *testing.T) {
	instance, c := newMeeting(t, definition(10))
	instance.Start()

	c.Advance(9 * time.Minute)
	require.True(t, instance.HandleOverride())

	c.Advance(5 * time.Minute)
	_, transitioned := instance.CheckTimeState()
	assert.False(t, transitioned)

	current, _ := instance.CurrentItem()
	assert.Equal(t, ItemStateExtended, current.State)
}

func TestMeeting_AdvanceToNext(t *testing.T) {
	instance, c := newMeeting(t, definition(10, 5))
	instance.Start()

	c.Advance(4 * time.Minute)
	next, ok := instance.AdvanceToNext()
	require.True(t, ok)
	assert.Equal(t, 2, next.ID)
	assert.Equal(t, 1, instance.CurrentIndex())
	assert.Equal(t, 0.0, instance.Overtime(), "an early finish is not negative overtime")

	c.Advance(8 * time.Minute)
	_, ok = instance.AdvanceToNext()
	assert.False(t, ok)
	assert.InDelta(t, 3.0, instance.Overtime(), 1e-9)

	items := instance.Items()
	assert.Equal(t, ItemStateCompleted, items[0].State)
	assert.Equal(t, ItemStateCompleted, items[1].State)

	_, ok = instance.AdvanceToNext()
	assert.False(t, ok)
	assert.Equal(t, 2, instance.CurrentIndex(), "advancing an exhausted agenda is a no-op")
}

func TestMeeting_ElapsedMinutesAfterLastItem(t *testing.T) {
	instance, c := newMeeting(t, definition(5))
	instance.Start()
	c.Advance(4 * time.Minute)
	_, ok := instance.AdvanceToNext()
	require.False(t, ok)

	c.Advance(30 * time.Minute)

	assert.Equal(t, 0.0, instance.ElapsedMinutes())
	assert.Equal(t, 0.0, instance.Snapshot().ElapsedMinutes)
	assert.Equal(t, 0.0, instance.TimeStatus(c.Now()).CurrentElapsedMinutes)
	assert.InDelta(t, 34.0, instance.TotalMeetingMinutes(), 1e-9)
}

func TestMeeting_CompletedItemsNeverChange(t *testing.T) {
	instance, c := newMeeting(t, definition(1, 1, 1))
	instance.Start()

	var completed []int
	for i := 0; i < 5; i++ {
		c.Advance(90 * time.Second)
		instance.CheckTimeState()
		instance.HandleOverride()
		instance.AdvanceToNext()
		for idx, v := range instance.Items() {
			if v.State == ItemStateCompleted {
				completed = append(completed, idx)
			}
		}
		for _, idx := range completed {
			assert.Equal(t, ItemStateCompleted, instance.Items()[idx].State)
		}
	}
}

func TestMeeting_AtMostOneRunningItem(t *testing.T) {
	instance, c := newMeeting(t, definition(2, 2, 2))
	instance.Start()

	for i := 0; i < 4; i++ {
		c.Advance(time.Minute)
		instance.CheckTimeState()
		running := 0
		for idx, v := range instance.Items() {
			if v.State.IsRunning() {
				running++
				assert.Equal(t, instance.CurrentIndex(), idx)
			}
			if idx < instance.CurrentIndex() {
				assert.Equal(t, ItemStateCompleted, v.State)
			}
			if idx > instance.CurrentIndex() {
				assert.Equal(t, ItemStateUpcoming, v.State)
			}
		}
		assert.LessOrEqual(t, running, 1)
		instance.AdvanceToNext()
	}
}

func TestMeeting_OverrideGrace(t *testing.T) {
	instance, c := newMeeting(t, definition(10))
	instance.Start()

	assert.False(t, instance.InOverrideGrace())
	assert.True(t, instance.CanIntervene())

	assert.Equal(t, time.Duration(0), instance.OverrideGraceRemaining())

	instance.HandleOverride()
	assert.True(t, instance.InOverrideGrace())
	assert.Equal(t, t0, instance.LastOverride())
	assert.False(t, instance.CanIntervene())
	assert.False(t, instance.CanInterveneForTangent())

	c.Advance(30 * time.Second)
	assert.Equal(t, DefaultOverrideGrace-30*time.Second, instance.OverrideGraceRemaining())

	c.Advance(DefaultOverrideGrace)
	assert.False(t, instance.InOverrideGrace())
	assert.Equal(t, time.Duration(0), instance.OverrideGraceRemaining())
	assert.True(t, instance.CanIntervene())
}

func TestMeeting_SilenceSignal(t *testing.T) {
	instance, c := newMeeting(t, definition(10))
	instance.Start()

	assert.False(t, instance.SilenceActive())
	instance.UpdateSilenceSignal()
	assert.True(t, instance.SilenceActive())
	assert.Equal(t, t0.Add(DefaultSilenceDuration), instance.SilenceUntil())
	assert.False(t, instance.InOverrideGrace(), "silence is independent from override")

	c.Advance(DefaultSilenceDuration)
	assert.False(t, instance.SilenceActive())
}

func TestMeeting_CanIntervene(t *testing.T) {
	instance, c := newMeeting(t, definition(10))
	instance.Start()

	instance.RecordIntervention()
	assert.False(t, instance.CanIntervene())

	c.Advance(DefaultInterventionCooldown)
	assert.False(t, instance.CanIntervene())

	c.Advance(time.Second)
	assert.True(t, instance.CanIntervene())
}

func TestMeeting_CanInterveneForTangent(t *testing.T) {
	cases := []struct {
		style     Style
		tolerance time.Duration
	}{
		{StyleGentle, 60 * time.Second},
		{StyleModerate, 30 * time.Second},
		{StyleAggressive, 10 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.style.String(), func(t *testing.T) {
			def := definition(10)
			def.Style = &tc.style
			instance, c := newMeeting(t, def)
			instance.Start()

			assert.True(t, instance.CanInterveneForTangent())
			instance.RecordIntervention()
			c.Advance(tc.tolerance)
			assert.False(t, instance.CanInterveneForTangent())
			c.Advance(time.Second)
			assert.True(t, instance.CanInterveneForTangent())
		})
	}
}

func TestMeeting_CanInterveneForTangentWhileChatting(t *testing.T) {
	instance, _ := newMeeting(t, definition(10))
	instance.SetStyle(StyleChatting)
	instance.Start()

	assert.False(t, instance.CanInterveneForTangent())
}

func TestMeeting_Transcript(t *testing.T) {
	instance, c := newMeeting(t, definition(10, 10))
	instance.Start()

	instance.AddTranscript("alice", "we should ship on friday")
	c.Advance(70 * time.Second)
	instance.AddTranscript("bob", "friday works for me")
	instance.AddTranscript("bob", "   ")

	assert.Equal(t, "bob: friday works for me", instance.RecentTranscript(60*time.Second))
	assert.Equal(t, "alice: we should ship on friday\nbob: friday works for me", instance.RecentTranscript(TranscriptRetention))

	c.Advance(100 * time.Second)
	instance.AddTranscript("", "anyone else?")
	assert.Equal(t, "bob: friday works for me\nparticipant: anyone else?", instance.RecentTranscript(TranscriptRetention))
	assert.Len(t, instance.transcript, 2)

	instance.AdvanceToNext()
	instance.AddTranscript("carol", "next topic")

	assert.Equal(t, "alice: we should ship on friday\nbob: friday works for me\nparticipant: anyone else?", instance.ItemTranscript(0))
	assert.Equal(t, "carol: next topic", instance.ItemTranscript(1))
	assert.Equal(t, []string{"alice", "bob", "carol", "participant"}, instance.Participants())

	presence, ok := instance.Presence("bob")
	require.True(t, ok)
	assert.Equal(t, t0.Add(70*time.Second), presence.FirstSeen)
}

func TestMeeting_RemainingItems(t *testing.T) {
	instance, _ := newMeeting(t, definition(10, 5, 5))
	instance.Start()

	assert.Len(t, instance.RemainingItems(), 2)
	assert.Equal(t, 20.0, instance.TotalScheduledMinutes())

	instance.AdvanceToNext()
	assert.Len(t, instance.RemainingItems(), 1)
}

func TestMeeting_MemoryContext(t *testing.T) {
	instance, _ := newMeeting(t, definition(10))

	assert.Equal(t, "No completed items yet.", instance.MemoryContext())

	instance.AddNotes(Notes{ItemID: 1, Topic: "Status", KeyPoints: []string{"a", "b"}, ActionItems: []string{"c"}})
	instance.AddNotes(Notes{ItemID: 2, Topic: "Roadmap", Decisions: []string{"d"}})

	assert.Equal(t, "### Status\nKey points: a; b\nAction items: c\n\n### Roadmap\nDecisions: d", instance.MemoryContext())
}

func TestMeeting_TimeStatus(t *testing.T) {
	instance, _ := newMeeting(t, definition(10))

	before := instance.TimeStatus(t0)
	assert.False(t, before.Started)
	assert.Equal(t, 0.0, before.TotalMeetingMinutes)
	assert.Equal(t, 0.0, before.CurrentRemainingMinutes)
	assert.Equal(t, 0.0, before.OvertimeMinutes)

	instance.Start()

	status := instance.TimeStatus(t0.Add(5 * time.Minute))
	assert.True(t, status.Started)
	assert.InDelta(t, 5.0, status.TotalMeetingMinutes, 1e-9)
	assert.InDelta(t, 5.0, status.CurrentElapsedMinutes, 1e-9)
	assert.InDelta(t, 5.0, status.CurrentRemainingMinutes, 1e-9)
	assert.Equal(t, "Status", status.CurrentTopic)

	late := instance.TimeStatus(t0.Add(20 * time.Minute))
	assert.Equal(t, 0.0, late.CurrentRemainingMinutes)

	instance.overtime = 2
	withOverrun := instance.TimeStatus(t0.Add(15 * time.Minute))
	assert.InDelta(t, 7.0, withOverrun.OvertimeMinutes, 1e-9)
}

func TestMeeting_Snapshot(t *testing.T) {
	instance, c := newMeeting(t, definition(10, 5))
	instance.Start()
	c.Advance(3 * time.Minute)

	snapshot := instance.Snapshot()
	assert.Equal(t, instance.ID().String(), snapshot.MeetingID)
	assert.Equal(t, "Weekly", snapshot.Title)
	assert.Equal(t, StyleModerate, snapshot.Style)
	assert.Len(t, snapshot.Items, 2)
	assert.InDelta(t, 3.0, snapshot.ElapsedMinutes, 1e-9)
	assert.Equal(t, t0, snapshot.MeetingStart)

	state, ok := snapshot.CurrentState()
	require.True(t, ok)
	assert.Equal(t, ItemStateActive, state)

	assert.True(t, snapshot.IsEqualTo(instance.Snapshot()))
	instance.AdvanceToNext()
	assert.False(t, snapshot.IsEqualTo(instance.Snapshot()))
}
