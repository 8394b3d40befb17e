package logger

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestLogger_Ensure(t *testing.T) {
	instance := &Logger{}
	snapshot := agenda.Snapshot{
		Title:            "Weekly",
		CurrentItemIndex: 0,
		Items: []agenda.Item{
			{ID: 1, Topic: "Status", State: agenda.ItemStateActive},
			{ID: 2, Topic: "Roadmap"},
		},
	}

	require.NoError(t, instance.Ensure(signal.ContextOf(snapshot)))
	require.NotNil(t, instance.last)
	assert.Equal(t, signal.StateOnTrack, *instance.last)
	assert.Equal(t, 0, instance.index)

	snapshot.Items[0].State = agenda.ItemStateCompleted
	snapshot.Items[1].State = agenda.ItemStateWarning
	snapshot.CurrentItemIndex = 1
	require.NoError(t, instance.Ensure(signal.ContextOf(snapshot)))
	assert.Equal(t, signal.StateWarning, *instance.last)
	assert.Equal(t, 1, instance.index)

	require.NoError(t, instance.Dispose())
	assert.Nil(t, instance.last)
	assert.Equal(t, signal.TypeLog, instance.GetType())
}
