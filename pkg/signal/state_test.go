package signal

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func snapshotWith(current int, states ...agenda.ItemState) agenda.Snapshot {
	result := agenda.Snapshot{CurrentItemIndex: current}
	for i, state := range states {
		result.Items = append(result.Items, agenda.Item{ID: i + 1, State: state})
	}
	return result
}

func TestStateOf(t *testing.T) {
	cases := []struct {
		name     string
		snapshot agenda.Snapshot
		expected State
	}{
		{"notStarted", snapshotWith(-1, agenda.ItemStateUpcoming), StateOff},
		{"active", snapshotWith(0, agenda.ItemStateActive), StateOnTrack},
		{"extended", snapshotWith(1, agenda.ItemStateCompleted, agenda.ItemStateExtended), StateOnTrack},
		{"warning", snapshotWith(0, agenda.ItemStateWarning), StateWarning},
		{"overtime", snapshotWith(0, agenda.ItemStateOvertime), StateOvertime},
		{"exhausted", snapshotWith(1, agenda.ItemStateCompleted), StateOff},
		{"ended", agenda.Snapshot{CurrentItemIndex: 0, Ended: true, Items: []agenda.Item{{State: agenda.ItemStateOvertime}}}, StateOff},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, StateOf(c.snapshot))
		})
	}
}

func TestState_Set(t *testing.T) {
	var instance State

	require.NoError(t, instance.Set(" On-Track "))
	assert.Equal(t, StateOnTrack, instance)

	require.NoError(t, instance.UnmarshalText([]byte("overtime")))
	assert.Equal(t, StateOvertime, instance)

	assert.EqualError(t, instance.Set("red"), "illegal-signal-state: red")
	assert.Equal(t, StateOvertime, instance)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "off,on_track,warning,overtime", AllStates.String())
	assert.Equal(t, "illegal-signal-state-9", State(9).String())
}

func TestType_Set(t *testing.T) {
	var instance Type

	require.NoError(t, instance.Set("Webhook"))
	assert.Equal(t, TypeWebhook, instance)

	require.NoError(t, instance.Set(""))
	assert.Equal(t, TypeLog, instance)

	assert.EqualError(t, instance.Set("systray"), "illegal-signal-type: systray")
	assert.Equal(t, "log,hue,webhook", AllTypes.String())
}

func TestContextOf(t *testing.T) {
	instance := ContextOf(snapshotWith(1, agenda.ItemStateCompleted, agenda.ItemStateWarning, agenda.ItemStateUpcoming))

	assert.Equal(t, StateWarning, instance.State())

	var ids []int
	for item, err := range instance.Items() {
		require.NoError(t, err)
		ids = append(ids, item.ID)
		if item.ID == 2 {
			break
		}
	}
	assert.Equal(t, []int{1, 2}, ids)
}
