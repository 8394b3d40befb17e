// Package gate decides whether a candidate utterance of the facilitator is
// actually spoken. Evaluation is a pure function of its inputs; the caller
// records the intervention on the meeting if the result says speak.
package gate

import (
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/common"
	log "github.com/echocat/slf4g"
	"math"
	"strings"
)

const (
	// DefaultForcedTransitionOvertime is the cumulative meeting overtime in
	// minutes from which on a transition is spoken regardless of any grace.
	DefaultForcedTransitionOvertime = 5.0
	DefaultRedundancyRatio          = 0.5
)

func NewPolicy() Policy {
	return Policy{
		ForcedTransitionOvertime: DefaultForcedTransitionOvertime,
		RedundancyRatio:          DefaultRedundancyRatio,
	}
}

var DefaultPolicy = NewPolicy()

// Policy holds the tunables of the gate. The zero value is not useful, use
// NewPolicy.
type Policy struct {
	// RedundancyExempt names triggers that skip the redundancy check. By
	// default every trigger is checked.
	RedundancyExempt Triggers `yaml:"redundancyExempt,omitempty"`

	ForcedTransitionOvertime float64 `yaml:"forcedTransitionOvertime,omitempty"`
	RedundancyRatio          float64 `yaml:"redundancyRatio,omitempty"`
}

func (this *Policy) SetupConfiguration(using common.FlagHolder) {
	using.Flag("gate.redundancyExempt", "Trigger which is never suppressed as redundant. Can be repeated. Possible values: "+AllTriggers.String()).
		Envar("BYM_GATE_REDUNDANCY_EXEMPT").
		SetValue(&this.RedundancyExempt)
	using.Flag("gate.forcedTransitionOvertime", "Meeting overtime in minutes from which transitions are announced even during an override grace.").
		Envar("BYM_GATE_FORCED_TRANSITION_OVERTIME").
		FloatVar(&this.ForcedTransitionOvertime)
	using.Flag("gate.redundancyRatio", "Share of distinct words of a candidate which must already be in the recent transcript to suppress it.").
		Envar("BYM_GATE_REDUNDANCY_RATIO").
		FloatVar(&this.RedundancyRatio)
}

// TangentThreshold is the minimal tangent confidence required to call out a
// tangent. StyleChatting can never reach it.
func TangentThreshold(style agenda.Style) float64 {
	switch style {
	case agenda.StyleGentle:
		return 0.80
	case agenda.StyleModerate:
		return 0.70
	case agenda.StyleAggressive:
		return 0.60
	case agenda.StyleChatting:
		return 1.01
	default:
		return 0.70
	}
}

// Evaluate decides using DefaultPolicy.
func Evaluate(candidate string, trigger Trigger, ctx Context) Result {
	return DefaultPolicy.Evaluate(candidate, trigger, ctx)
}

func (this Policy) Evaluate(candidate string, trigger Trigger, ctx Context) Result {
	candidate = strings.TrimSpace(candidate)
	emit := func(action Action, reason string, confidence float64) Result {
		result := Result{
			Action:     action,
			Reason:     reason,
			Confidence: clamp01(confidence),
		}
		if action == ActionSpeak {
			result.Text = candidate
		}
		log.With("trigger", trigger).
			With("action", result.Action).
			With("confidence", fmt.Sprintf("%.2f", result.Confidence)).
			With("reason", result.Reason).
			Info("Speech gate decided.")
		return result
	}

	if candidate == "" {
		return emit(ActionSilent, "empty candidate text", 1.0)
	}

	if ctx.SilenceActive() && !trigger.BypassesSilence() {
		return emit(ActionSilent, "silence requested by participant", 0.98)
	}

	if !this.RedundancyExempt.Contains(trigger) && isRedundant(candidate, ctx.RecentTranscript, this.redundancyRatio()) {
		return emit(ActionSilent, "candidate speech is redundant with recent transcript", 0.90)
	}

	switch trigger {
	case TriggerIntro:
		return emit(ActionSpeak, "intro is always delivered", 1.0)
	case TriggerWrapUp:
		return emit(ActionSpeak, "wrap-up is always delivered", 1.0)
	case TriggerDirectQuestion:
		return emit(ActionSpeak, "direct question is always answered", 1.0)

	case TriggerTransition:
		if ctx.MeetingOvertime >= this.forcedTransitionOvertime() {
			return emit(ActionSpeak, "transition forced due to significant meeting overtime", 0.98)
		}
		if ctx.InOverrideGrace {
			return emit(ActionSilent, "host override grace active; transition deferred", 0.92)
		}
		return emit(ActionSpeak, "transition allowed", 0.95)

	case TriggerTimeWarning:
		if ctx.InOverrideGrace {
			return emit(ActionSilent, "host override grace active; suppressing time warning", 0.95)
		}
		return emit(ActionSpeak, "time warning at 80%", 0.95)

	case TriggerTangent:
		if ctx.InOverrideGrace {
			return emit(ActionSilent, "host override grace active; suppressing tangent intervention", 0.95)
		}
		threshold := TangentThreshold(ctx.Style)
		if ctx.TangentConfidence >= threshold {
			return emit(ActionSpeak, fmt.Sprintf("tangent confidence %.2f >= style threshold %.2f", ctx.TangentConfidence, threshold), ctx.TangentConfidence)
		}
		return emit(ActionSilent, fmt.Sprintf("tangent confidence %.2f below style threshold %.2f", ctx.TangentConfidence, threshold), 1.0-math.Min(1.0, ctx.TangentConfidence))

	default:
		return emit(ActionSilent, fmt.Sprintf("no rule allows trigger '%s'", trigger), 0.75)
	}
}

func (this Policy) forcedTransitionOvertime() float64 {
	if v := this.ForcedTransitionOvertime; v > 0 {
		return v
	}
	return DefaultForcedTransitionOvertime
}

func (this Policy) redundancyRatio() float64 {
	if v := this.RedundancyRatio; v > 0 {
		return v
	}
	return DefaultRedundancyRatio
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
