package hue

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal"
	"github.com/amimof/huego"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestHue_targetStateOf(t *testing.T) {
	conf := NewConfiguration()
	instance := &Hue{conf: &conf}

	cases := []struct {
		name     string
		state    signal.State
		current  huego.State
		expected *huego.State
	}{
		{"offStaysOff", signal.StateOff, huego.State{}, nil},
		{"offSwitchesOff", signal.StateOff, huego.State{On: true, Hue: 25500}, &huego.State{On: false}},
		{"onTrackSwitchesOn", signal.StateOnTrack, huego.State{}, &huego.State{On: true, Bri: 254, Hue: 25500, Sat: 254}},
		{"onTrackUnchanged", signal.StateOnTrack, huego.State{On: true, Bri: 254, Hue: 25500, Sat: 254}, nil},
		{"warningRecolors", signal.StateWarning, huego.State{On: true, Bri: 254, Hue: 25500, Sat: 254}, &huego.State{On: true, Bri: 254, Hue: 8000, Sat: 254}},
		{"overtimeRecolors", signal.StateOvertime, huego.State{On: true, Bri: 254, Hue: 8000, Sat: 254}, &huego.State{On: true, Bri: 254, Hue: 0, Sat: 254}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual := instance.targetStateOf(c.state, &c.current)
			assert.Equal(t, c.expected, actual)
		})
	}
}

func TestHueKinds_Set(t *testing.T) {
	var instance HueKinds

	assert.NoError(t, instance.Set("light, room"))
	assert.Equal(t, HueKinds{HueKindLight, HueKindGroup}, instance)
	assert.True(t, instance.Has(HueKindGroup))

	assert.EqualError(t, instance.Set("lamp"), "illegal-hue-kind: lamp")
}

func TestHueKinds_Has_Empty(t *testing.T) {
	assert.True(t, HueKinds{}.Has(HueKindLight))
	assert.False(t, HueKinds{HueKindLight}.Has(HueKindGroup))
}
