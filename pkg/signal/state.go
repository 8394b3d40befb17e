package signal

import (
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"strings"
)

type State uint8

const (
	StateOff      = State(0)
	StateOnTrack  = State(1)
	StateWarning  = State(2)
	StateOvertime = State(3)
)

var (
	AllStates = States{
		StateOff,
		StateOnTrack,
		StateWarning,
		StateOvertime,
	}
)

// StateOf maps the current item of the snapshot to a State. Without a
// running item, or once the meeting ended, it is StateOff.
func StateOf(snapshot agenda.Snapshot) State {
	if snapshot.Ended {
		return StateOff
	}
	current, ok := snapshot.CurrentState()
	if !ok {
		return StateOff
	}
	switch current {
	case agenda.ItemStateActive, agenda.ItemStateExtended:
		return StateOnTrack
	case agenda.ItemStateWarning:
		return StateWarning
	case agenda.ItemStateOvertime:
		return StateOvertime
	default:
		return StateOff
	}
}

func (this *State) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "off", "0", "false", "no":
		*this = StateOff
		return nil
	case "on_track", "on-track", "on":
		*this = StateOnTrack
		return nil
	case "warning":
		*this = StateWarning
		return nil
	case "overtime":
		*this = StateOvertime
		return nil
	default:
		return fmt.Errorf("illegal-signal-state: %s", plain)
	}
}

func (this State) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-signal-state-%d", this)
	}
	return string(v)
}

func (this State) MarshalText() (text []byte, err error) {
	switch this {
	case StateOff:
		return []byte("off"), nil
	case StateOnTrack:
		return []byte("on_track"), nil
	case StateWarning:
		return []byte("warning"), nil
	case StateOvertime:
		return []byte("overtime"), nil
	default:
		return nil, fmt.Errorf("illegal signal state: %d", this)
	}
}

func (this *State) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type States []State

func (this States) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this States) String() string {
	return strings.Join(this.Strings(), ",")
}
