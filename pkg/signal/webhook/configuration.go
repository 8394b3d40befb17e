package webhook

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/common"
	"time"
)

func NewConfiguration() Configuration {
	return Configuration{
		"",
		"",
		false,
		time.Second * 60,
		time.Second * 10,
	}
}

type Configuration struct {
	Url string `yaml:"url,omitempty"`

	// Token is only used if the platform has no credential store.
	Token          string `yaml:"token,omitempty"`
	PromptForToken bool   `yaml:"promptForToken,omitempty"`

	DeadZoneInterval time.Duration `yaml:"deadZoneInterval,omitempty"`
	Timeout          time.Duration `yaml:"timeout,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("signal.webhook.url", "URL the agenda state is posted to.").
		Envar("BYM_SIGNAL_WEBHOOK_URL").
		StringVar(&this.Url)
	using.Flag("signal.webhook.token", "Bearer token sent with every request. Optional.").
		Envar("BYM_SIGNAL_WEBHOOK_TOKEN").
		StringVar(&this.Token)
	using.Flag("signal.webhook.promptForToken", "If the webhook rejects the token ask for a new one on the terminal.").
		Envar("BYM_SIGNAL_WEBHOOK_PROMPT_FOR_TOKEN").
		BoolVar(&this.PromptForToken)
	using.Flag("signal.webhook.deadZoneInterval", "Duration for how long an unchanged state is not posted again.").
		Envar("BYM_SIGNAL_WEBHOOK_DEAD_ZONE_INTERVAL").
		DurationVar(&this.DeadZoneInterval)
	using.Flag("signal.webhook.timeout", "Timeout of every request to the webhook.").
		Envar("BYM_SIGNAL_WEBHOOK_TIMEOUT").
		DurationVar(&this.Timeout)
}
