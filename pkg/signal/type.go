package signal

import (
	"fmt"
	"strings"
)

type Type uint8

const (
	TypeLog     = Type(0)
	TypeHue     = Type(1)
	TypeWebhook = Type(2)

	TypeDefault = TypeLog
)

var (
	AllTypes = Types{
		TypeLog,
		TypeHue,
		TypeWebhook,
	}
)

func (this *Type) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "log", "":
		*this = TypeLog
		return nil
	case "hue":
		*this = TypeHue
		return nil
	case "webhook":
		*this = TypeWebhook
		return nil
	default:
		return fmt.Errorf("illegal-signal-type: %s", plain)
	}
}

func (this Type) String() string {
	switch this {
	case TypeLog:
		return "log"
	case TypeHue:
		return "hue"
	case TypeWebhook:
		return "webhook"
	default:
		return fmt.Sprintf("illegal-signal-type-%d", this)
	}
}

func (this Type) MarshalText() (text []byte, err error) {
	if this > TypeWebhook {
		return nil, fmt.Errorf("illegal signal type: %d", this)
	}
	return []byte(this.String()), nil
}

func (this *Type) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type Types []Type

func (this Types) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Types) String() string {
	return strings.Join(this.Strings(), ",")
}
