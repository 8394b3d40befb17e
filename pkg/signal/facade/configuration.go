package facade

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/common"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal/hue"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal/webhook"
)

func NewConfiguration() Configuration {
	return Configuration{
		Type:    signal.TypeDefault,
		Hue:     hue.NewConfiguration(),
		Webhook: webhook.NewConfiguration(),
	}
}

type Configuration struct {
	Type    signal.Type           `yaml:"type"`
	Hue     hue.Configuration     `yaml:"hue,omitempty"`
	Webhook webhook.Configuration `yaml:"webhook,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("signal", "Signal which shows the agenda state. All possible values: "+signal.AllTypes.String()).
		Envar("BYM_SIGNAL").
		SetValue(&this.Type)

	this.Hue.SetupConfiguration(using)
	this.Webhook.SetupConfiguration(using)
}
