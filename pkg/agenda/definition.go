package agenda

import (
	"encoding/json"
	"fmt"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Definition is the agenda as provided by the host before the meeting
// starts. Required fields are pointers so a missing value can be told apart
// from a zero value.
type Definition struct {
	Title string           `yaml:"title,omitempty" toml:"title" json:"title,omitempty"`
	Style *Style           `yaml:"style,omitempty" toml:"style" json:"style,omitempty"`
	Items []ItemDefinition `yaml:"items" toml:"items" json:"items"`
}

type ItemDefinition struct {
	ID              *int     `yaml:"id" toml:"id" json:"id"`
	Topic           string   `yaml:"topic" toml:"topic" json:"topic"`
	Description     string   `yaml:"description,omitempty" toml:"description" json:"description,omitempty"`
	DurationMinutes *float64 `yaml:"duration_minutes" toml:"duration_minutes" json:"duration_minutes"`
}

func (this Definition) StyleOrDefault() Style {
	if v := this.Style; v != nil {
		return *v
	}
	return StyleDefault
}

func (this Definition) TitleOrDefault() string {
	if v := strings.TrimSpace(this.Title); v != "" {
		return v
	}
	return "Meeting"
}

// Validate checks every required field. An explicitly empty item list is
// valid, a missing one is not. Durations of zero or below are accepted: such
// an item is overtime as soon as it starts.
func (this Definition) Validate() error {
	if this.Items == nil {
		return &ConfigurationError{Field: "items", Reason: "missing"}
	}
	seen := make(map[int]int, len(this.Items))
	for i, item := range this.Items {
		field := func(name string) string {
			return fmt.Sprintf("items[%d].%s", i, name)
		}
		if item.ID == nil {
			return &ConfigurationError{Field: field("id"), Reason: "missing"}
		}
		if prev, ok := seen[*item.ID]; ok {
			return &ConfigurationError{Field: field("id"), Reason: fmt.Sprintf("duplicates id of items[%d]", prev)}
		}
		seen[*item.ID] = i
		if strings.TrimSpace(item.Topic) == "" {
			return &ConfigurationError{Field: field("topic"), Reason: "missing"}
		}
		if item.DurationMinutes == nil {
			return &ConfigurationError{Field: field("duration_minutes"), Reason: "missing"}
		}
		if d := *item.DurationMinutes; math.IsNaN(d) || math.IsInf(d, 0) {
			return &ConfigurationError{Field: field("duration_minutes"), Reason: fmt.Sprintf("not a number: %v", d)}
		}
	}
	return nil
}

func LoadDefinitionFromFile(fn string) (Definition, error) {
	f, err := os.Open(fn)
	if err != nil {
		return Definition{}, &ConfigurationError{Field: "file", Reason: fmt.Sprintf("cannot open agenda %q", fn), Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(fn)), ".")
	result, err := LoadDefinition(f, format)
	if err != nil {
		return Definition{}, fmt.Errorf("cannot load agenda %q: %w", fn, err)
	}
	return result, nil
}

// LoadDefinition decodes and validates a definition. Supported formats are
// yaml (default), toml and json.
func LoadDefinition(r io.Reader, format string) (result Definition, _ error) {
	switch format {
	case "toml":
		md, err := toml.NewDecoder(r).Decode(&result)
		if err != nil {
			return Definition{}, &ConfigurationError{Field: "file", Reason: "malformed toml", Err: err}
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Definition{}, &ConfigurationError{Field: undecoded[0].String(), Reason: "unknown field"}
		}
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&result); err != nil {
			return Definition{}, &ConfigurationError{Field: "file", Reason: "malformed json", Err: err}
		}
	case "yaml", "yml", "":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&result); err != nil {
			return Definition{}, &ConfigurationError{Field: "file", Reason: "malformed yaml", Err: err}
		}
	default:
		return Definition{}, &ConfigurationError{Field: "file", Reason: fmt.Sprintf("unsupported format %q", format)}
	}

	if err := result.Validate(); err != nil {
		return Definition{}, err
	}
	return result, nil
}

type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (this *ConfigurationError) Error() string {
	msg := fmt.Sprintf("illegal agenda configuration: %s: %s", this.Field, this.Reason)
	if this.Err != nil {
		msg += ": " + this.Err.Error()
	}
	return msg
}

func (this *ConfigurationError) Unwrap() error {
	return this.Err
}
