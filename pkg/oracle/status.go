package oracle

import (
	"fmt"
	"strings"
)

type Status uint8

const (
	StatusOnTopic     = Status(0)
	StatusDrifting    = Status(1)
	StatusOffTopic    = Status(2)
	StatusTimeWarning = Status(3)
)

var (
	AllStatuses = Statuses{
		StatusOnTopic,
		StatusDrifting,
		StatusOffTopic,
		StatusTimeWarning,
	}
)

func (this Status) IsTangent() bool {
	return this == StatusDrifting || this == StatusOffTopic
}

func (this *Status) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "on_topic":
		*this = StatusOnTopic
	case "drifting":
		*this = StatusDrifting
	case "off_topic":
		*this = StatusOffTopic
	case "time_warning":
		*this = StatusTimeWarning
	default:
		return fmt.Errorf("illegal-status: %s", plain)
	}
	return nil
}

func (this Status) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-status-%d", this)
	}
	return string(v)
}

func (this Status) MarshalText() (text []byte, err error) {
	switch this {
	case StatusOnTopic:
		return []byte("on_topic"), nil
	case StatusDrifting:
		return []byte("drifting"), nil
	case StatusOffTopic:
		return []byte("off_topic"), nil
	case StatusTimeWarning:
		return []byte("time_warning"), nil
	default:
		return nil, fmt.Errorf("illegal-status: %d", this)
	}
}

func (this *Status) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type Statuses []Status

func (this Statuses) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Statuses) String() string {
	return strings.Join(this.Strings(), ",")
}
