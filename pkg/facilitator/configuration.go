package facilitator

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/common"
	"time"
)

func NewConfiguration() Configuration {
	return Configuration{
		time.Second * 60,
		time.Second * 15,
		agenda.DefaultOverrideGrace,
		agenda.DefaultSilenceDuration,
		agenda.DefaultInterventionCooldown,
		true,
	}
}

type Configuration struct {
	HeartbeatInterval    time.Duration `yaml:"heartbeatInterval,omitempty"`
	TangentCheckInterval time.Duration `yaml:"tangentCheckInterval,omitempty"`

	OverrideGrace        time.Duration `yaml:"overrideGrace,omitempty"`
	SilenceDuration      time.Duration `yaml:"silenceDuration,omitempty"`
	InterventionCooldown time.Duration `yaml:"interventionCooldown,omitempty"`

	// DeterministicTimeQueries answers time questions from the meeting state
	// instead of asking the oracle.
	DeterministicTimeQueries bool `yaml:"deterministicTimeQueries"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("facilitator.heartbeatInterval", "Interval in which the agenda state is published even without any change. 0 disables it.").
		Envar("BYM_FACILITATOR_HEARTBEAT_INTERVAL").
		DurationVar(&this.HeartbeatInterval)
	using.Flag("facilitator.tangentCheckInterval", "Interval in which the oracle is asked whether the conversation left the current topic. 0 disables it.").
		Envar("BYM_FACILITATOR_TANGENT_CHECK_INTERVAL").
		DurationVar(&this.TangentCheckInterval)
	using.Flag("facilitator.overrideGrace", "Duration the host can extend the current item for.").
		Envar("BYM_FACILITATOR_OVERRIDE_GRACE").
		DurationVar(&this.OverrideGrace)
	using.Flag("facilitator.silenceDuration", "Duration to stay quiet after a participant asked for it.").
		Envar("BYM_FACILITATOR_SILENCE_DURATION").
		DurationVar(&this.SilenceDuration)
	using.Flag("facilitator.interventionCooldown", "Minimal duration between two interventions.").
		Envar("BYM_FACILITATOR_INTERVENTION_COOLDOWN").
		DurationVar(&this.InterventionCooldown)
	using.Flag("facilitator.deterministicTimeQueries", "Answer time questions from the meeting state.").
		Envar("BYM_FACILITATOR_DETERMINISTIC_TIME_QUERIES").
		BoolVar(&this.DeterministicTimeQueries)
}

// MeetingOptions are the options a meeting needs to behave as configured.
func (this Configuration) MeetingOptions() []agenda.Option {
	var result []agenda.Option
	if v := this.OverrideGrace; v > 0 {
		result = append(result, agenda.WithOverrideGrace(v))
	}
	if v := this.SilenceDuration; v > 0 {
		result = append(result, agenda.WithSilenceDuration(v))
	}
	if v := this.InterventionCooldown; v > 0 {
		result = append(result, agenda.WithInterventionCooldown(v))
	}
	return result
}
