package hue

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/common"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal"
)

func NewConfiguration() Configuration {
	return Configuration{
		false,
		"",
		"",

		common.MustNewRegexp("^Meeting"),
		HueKinds{},

		254,
		254,
		25500,
		8000,
		0,
	}
}

type Configuration struct {
	Pair   bool   `yaml:"pair,omitempty"`
	Bridge string `yaml:"bridge,omitempty"`
	User   string `yaml:"user,omitempty"`

	Name  common.Regexp `yaml:"target"`
	Kinds HueKinds      `yaml:"kinds,omitempty"`

	Brightness uint8 `yaml:"brightness"`
	Saturation uint8 `yaml:"saturation"`

	OnTrackHue  uint16 `yaml:"onTrackHue"`
	WarningHue  uint16 `yaml:"warningHue"`
	OvertimeHue uint16 `yaml:"overtimeHue"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("signal.hue.pair", "If true this application will pair again with an existing hue. This will be implicit enabled if this application is not already paired.").
		Envar("BYM_SIGNAL_HUE_PAIR").
		BoolVar(&this.Pair)
	using.Flag("signal.hue.bridge", "Usually the bridge is automatically detected. You can specify an explicit one if they are more than one. This is only required while pairing and will afterwards be ignored.").
		Envar("BYM_SIGNAL_HUE_BRIDGE").
		StringVar(&this.Bridge)
	using.Flag("signal.hue.user", "Usually this is set while pairing and will then be persisted. If this set this will be used and not be persisted.").
		Envar("BYM_SIGNAL_HUE_USER").
		StringVar(&this.User)
	using.Flag("signal.hue.name", "Name as regex of the lights/groups which should show the agenda state.").
		Envar("BYM_SIGNAL_HUE_NAME").
		SetValue(&this.Name)
	using.Flag("signal.hue.kind", "Kind(s) of what should be handled. Possible values: "+AllHueKinds.String()).
		Envar("BYM_SIGNAL_HUE_KIND").
		SetValue(&this.Kinds)

	using.Flag("signal.hue.brightness", "The brightness value to set the light to. Brightness is a scale from 1 (the minimum the light is capable of) to 254 (the maximum).").
		Envar("BYM_SIGNAL_HUE_BRIGHTNESS").
		Uint8Var(&this.Brightness)
	using.Flag("signal.hue.saturation", "Saturation of the light. 254 is the most saturated (colored) and 0 is the least saturated (white).").
		Envar("BYM_SIGNAL_HUE_SATURATION").
		Uint8Var(&this.Saturation)
	using.Flag("signal.hue.onTrackHue", "The hue value while the current item is within its time. The hue value is a wrapping value between 0 and 65535. Both 0 and 65535 are red, 25500 is green and 46920 is blue.").
		Envar("BYM_SIGNAL_HUE_ON_TRACK_HUE").
		Uint16Var(&this.OnTrackHue)
	using.Flag("signal.hue.warningHue", "The hue value once the current item used 80% of its time.").
		Envar("BYM_SIGNAL_HUE_WARNING_HUE").
		Uint16Var(&this.WarningHue)
	using.Flag("signal.hue.overtimeHue", "The hue value once the current item is overtime.").
		Envar("BYM_SIGNAL_HUE_OVERTIME_HUE").
		Uint16Var(&this.OvertimeHue)
}

// HueOf returns the hue value for the given state or false if the light
// should be off.
func (this Configuration) HueOf(state signal.State) (uint16, bool) {
	switch state {
	case signal.StateOnTrack:
		return this.OnTrackHue, true
	case signal.StateWarning:
		return this.WarningHue, true
	case signal.StateOvertime:
		return this.OvertimeHue, true
	default:
		return 0, false
	}
}
