package agenda

import (
	"fmt"
	"strings"
	"time"
)

type Style uint8

const (
	StyleGentle     = Style(0)
	StyleModerate   = Style(1)
	StyleAggressive = Style(2)
	StyleChatting   = Style(3)

	StyleDefault = StyleModerate
)

var (
	AllStyles = Styles{
		StyleGentle,
		StyleModerate,
		StyleAggressive,
		StyleChatting,
	}
)

// TangentTolerance is the minimum time since the last intervention before a
// tangent may be called out. It is zero for StyleChatting which never
// checks for tangents.
func (this Style) TangentTolerance() time.Duration {
	switch this {
	case StyleGentle:
		return 60 * time.Second
	case StyleModerate:
		return 30 * time.Second
	case StyleAggressive:
		return 10 * time.Second
	default:
		return 0
	}
}

// Facilitates is false for StyleChatting: no agenda timers, no tangent checks.
func (this Style) Facilitates() bool {
	return this != StyleChatting
}

func (this *Style) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "gentle":
		*this = StyleGentle
	case "moderate", "":
		*this = StyleModerate
	case "aggressive":
		*this = StyleAggressive
	case "chatting", "chat":
		*this = StyleChatting
	default:
		return fmt.Errorf("illegal-style: %s", plain)
	}
	return nil
}

func (this Style) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-style-%d", this)
	}
	return string(v)
}

func (this Style) MarshalText() (text []byte, err error) {
	switch this {
	case StyleGentle:
		return []byte("gentle"), nil
	case StyleModerate:
		return []byte("moderate"), nil
	case StyleAggressive:
		return []byte("aggressive"), nil
	case StyleChatting:
		return []byte("chatting"), nil
	default:
		return nil, fmt.Errorf("illegal style: %d", this)
	}
}

func (this *Style) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type Styles []Style

func (this Styles) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Styles) String() string {
	return strings.Join(this.Strings(), ",")
}
