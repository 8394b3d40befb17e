package gate

import (
	"fmt"
	"strings"
)

type Action uint8

const (
	ActionSilent = Action(0)
	ActionSpeak  = Action(1)
)

func (this *Action) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "silent":
		*this = ActionSilent
	case "speak":
		*this = ActionSpeak
	default:
		return fmt.Errorf("illegal-action: %s", plain)
	}
	return nil
}

func (this Action) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-action-%d", this)
	}
	return string(v)
}

func (this Action) MarshalText() (text []byte, err error) {
	switch this {
	case ActionSilent:
		return []byte("silent"), nil
	case ActionSpeak:
		return []byte("speak"), nil
	default:
		return nil, fmt.Errorf("illegal action: %d", this)
	}
}

func (this *Action) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

// Result is the outcome of one evaluation. Text is empty unless Action is
// ActionSpeak. Confidence is always within [0,1].
type Result struct {
	Action     Action  `json:"action"`
	Text       string  `json:"text,omitempty"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

func (this Result) ShouldSpeak() bool {
	return this.Action == ActionSpeak
}

func (this Result) String() string {
	return fmt.Sprintf("%v (%.2f): %s", this.Action, this.Confidence, this.Reason)
}
