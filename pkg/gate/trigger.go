package gate

import (
	"fmt"
	"strings"
)

// Trigger names the occasion a candidate utterance was produced for.
type Trigger string

const (
	TriggerIntro          = Trigger("intro")
	TriggerTimeWarning    = Trigger("time_warning")
	TriggerTangent        = Trigger("tangent_intervention")
	TriggerTransition     = Trigger("transition")
	TriggerWrapUp         = Trigger("wrap_up")
	TriggerDirectQuestion = Trigger("direct_question")
)

var (
	AllTriggers = Triggers{
		TriggerIntro,
		TriggerTimeWarning,
		TriggerTangent,
		TriggerTransition,
		TriggerWrapUp,
		TriggerDirectQuestion,
	}
)

// IsKnown reports whether the gate has a rule for this trigger.
func (this Trigger) IsKnown() bool {
	return AllTriggers.Contains(this)
}

// BypassesSilence is true for the triggers that are spoken even while
// participants asked for quiet.
func (this Trigger) BypassesSilence() bool {
	return this == TriggerTransition || this == TriggerWrapUp
}

func (this *Trigger) Set(plain string) error {
	candidate := Trigger(strings.TrimSpace(strings.ToLower(plain)))
	if !candidate.IsKnown() {
		return fmt.Errorf("illegal-trigger: %s", plain)
	}
	*this = candidate
	return nil
}

func (this Trigger) String() string {
	return string(this)
}

func (this Trigger) MarshalText() (text []byte, err error) {
	return []byte(this), nil
}

func (this *Trigger) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type Triggers []Trigger

func (this Triggers) Contains(v Trigger) bool {
	for _, candidate := range this {
		if candidate == v {
			return true
		}
	}
	return false
}

// Set appends one trigger, which makes Triggers usable as a repeatable flag.
func (this *Triggers) Set(plain string) error {
	var v Trigger
	if err := v.Set(plain); err != nil {
		return err
	}
	if !this.Contains(v) {
		*this = append(*this, v)
	}
	return nil
}

func (this Triggers) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Triggers) String() string {
	return strings.Join(this.Strings(), ",")
}

// IsCumulative tells kingpin that the flag may be repeated.
func (this *Triggers) IsCumulative() bool {
	return true
}
