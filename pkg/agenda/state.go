package agenda

import (
	"fmt"
	"strings"
)

type ItemState uint8

const (
	ItemStateUpcoming  = ItemState(0)
	ItemStateActive    = ItemState(1)
	ItemStateWarning   = ItemState(2)
	ItemStateOvertime  = ItemState(3)
	ItemStateExtended  = ItemState(4)
	ItemStateCompleted = ItemState(5)
)

var (
	AllItemStates = ItemStates{
		ItemStateUpcoming,
		ItemStateActive,
		ItemStateWarning,
		ItemStateOvertime,
		ItemStateExtended,
		ItemStateCompleted,
	}
)

// IsRunning reports whether an item in this state is the one currently
// being discussed.
func (this ItemState) IsRunning() bool {
	switch this {
	case ItemStateActive, ItemStateWarning, ItemStateOvertime, ItemStateExtended:
		return true
	default:
		return false
	}
}

func (this *ItemState) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "upcoming":
		*this = ItemStateUpcoming
	case "active":
		*this = ItemStateActive
	case "warning":
		*this = ItemStateWarning
	case "overtime":
		*this = ItemStateOvertime
	case "extended":
		*this = ItemStateExtended
	case "completed":
		*this = ItemStateCompleted
	default:
		return fmt.Errorf("illegal-item-state: %s", plain)
	}
	return nil
}

func (this ItemState) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-item-state-%d", this)
	}
	return string(v)
}

func (this ItemState) MarshalText() (text []byte, err error) {
	switch this {
	case ItemStateUpcoming:
		return []byte("upcoming"), nil
	case ItemStateActive:
		return []byte("active"), nil
	case ItemStateWarning:
		return []byte("warning"), nil
	case ItemStateOvertime:
		return []byte("overtime"), nil
	case ItemStateExtended:
		return []byte("extended"), nil
	case ItemStateCompleted:
		return []byte("completed"), nil
	default:
		return nil, fmt.Errorf("illegal item state: %d", this)
	}
}

func (this *ItemState) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type ItemStates []ItemState

func (this ItemStates) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this ItemStates) String() string {
	return strings.Join(this.Strings(), ",")
}
