package agenda

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefinition_Yaml(t *testing.T) {
	actual, err := LoadDefinition(strings.NewReader(`
title: Sprint review
style: aggressive
items:
  - id: 1
    topic: Demo
    duration_minutes: 15
  - id: 2
    topic: Retro
    description: What went well
    duration_minutes: 7.5
`), "yaml")
	require.NoError(t, err)

	assert.Equal(t, "Sprint review", actual.TitleOrDefault())
	assert.Equal(t, StyleAggressive, actual.StyleOrDefault())
	require.Len(t, actual.Items, 2)
	assert.Equal(t, 2, *actual.Items[1].ID)
	assert.Equal(t, "What went well", actual.Items[1].Description)
	assert.Equal(t, 7.5, *actual.Items[1].DurationMinutes)
}

func TestLoadDefinition_Toml(t *testing.T) {
	actual, err := LoadDefinition(strings.NewReader(`
style = "gentle"

[[items]]
id = 1
topic = "Demo"
duration_minutes = 10
`), "toml")
	require.NoError(t, err)

	assert.Equal(t, "Meeting", actual.TitleOrDefault())
	assert.Equal(t, StyleGentle, actual.StyleOrDefault())
	require.Len(t, actual.Items, 1)
}

func TestLoadDefinition_Json(t *testing.T) {
	actual, err := LoadDefinition(strings.NewReader(`{"items":[]}`), "json")
	require.NoError(t, err)

	assert.Equal(t, StyleDefault, actual.StyleOrDefault())
	assert.Empty(t, actual.Items)
}

func TestLoadDefinition_UnknownField(t *testing.T) {
	cases := map[string]string{
		"yaml": "items: []\nfoo: bar\n",
		"toml": "foo = \"bar\"\nitems = []\n",
		"json": `{"items":[],"foo":"bar"}`,
	}
	for format, content := range cases {
		t.Run(format, func(t *testing.T) {
			_, err := LoadDefinition(strings.NewReader(content), format)
			var cErr *ConfigurationError
			assert.True(t, errors.As(err, &cErr), "expected configuration error but got: %v", err)
		})
	}
}

func TestLoadDefinition_UnsupportedFormat(t *testing.T) {
	_, err := LoadDefinition(strings.NewReader(""), "xml")
	assert.EqualError(t, err, `illegal agenda configuration: file: unsupported format "xml"`)
}

func TestLoadDefinitionFromFile(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "agenda.json")
	require.NoError(t, os.WriteFile(fn, []byte(`{"title":"Planning","items":[{"id":1,"topic":"Scope","duration_minutes":5}]}`), 0600))

	actual, err := LoadDefinitionFromFile(fn)
	require.NoError(t, err)
	assert.Equal(t, "Planning", actual.Title)

	_, err = LoadDefinitionFromFile(filepath.Join(dir, "missing.yaml"))
	var cErr *ConfigurationError
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, "file", cErr.Field)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDefinition_Validate(t *testing.T) {
	id := func(v int) *int { return &v }
	duration := func(v float64) *float64 { return &v }

	cases := []struct {
		name     string
		given    Definition
		expected string
	}{{
		name:     "missing items",
		given:    Definition{},
		expected: "illegal agenda configuration: items: missing",
	}, {
		name:     "missing id",
		given:    Definition{Items: []ItemDefinition{{Topic: "a", DurationMinutes: duration(1)}}},
		expected: "illegal agenda configuration: items[0].id: missing",
	}, {
		name: "duplicate id",
		given: Definition{Items: []ItemDefinition{
			{ID: id(1), Topic: "a", DurationMinutes: duration(1)},
			{ID: id(1), Topic: "b", DurationMinutes: duration(1)},
		}},
		expected: "illegal agenda configuration: items[1].id: duplicates id of items[0]",
	}, {
		name:     "missing topic",
		given:    Definition{Items: []ItemDefinition{{ID: id(1), Topic: "  ", DurationMinutes: duration(1)}}},
		expected: "illegal agenda configuration: items[0].topic: missing",
	}, {
		name:     "missing duration",
		given:    Definition{Items: []ItemDefinition{{ID: id(1), Topic: "a"}}},
		expected: "illegal agenda configuration: items[0].duration_minutes: missing",
	}}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.EqualError(t, tc.given.Validate(), tc.expected)
		})
	}

	t.Run("zero duration", func(t *testing.T) {
		given := Definition{Items: []ItemDefinition{{ID: id(1), Topic: "a", DurationMinutes: duration(0)}}}
		assert.NoError(t, given.Validate())
	})
}

func TestNewMeeting_RejectsInvalidDefinition(t *testing.T) {
	_, err := NewMeeting(Definition{})
	assert.Error(t, err)
}

func TestStyle_Set(t *testing.T) {
	cases := map[string]Style{
		"gentle":     StyleGentle,
		"Moderate":   StyleModerate,
		"":           StyleModerate,
		"aggressive": StyleAggressive,
		"chat":       StyleChatting,
		"chatting":   StyleChatting,
	}
	for given, expected := range cases {
		var actual Style
		require.NoError(t, actual.Set(given))
		assert.Equal(t, expected, actual)
	}

	var actual Style
	assert.EqualError(t, actual.Set("loud"), "illegal-style: loud")
	assert.Equal(t, "gentle,moderate,aggressive,chatting", AllStyles.String())
}

func TestItemState_Set(t *testing.T) {
	for _, expected := range AllItemStates {
		var actual ItemState
		require.NoError(t, actual.Set(expected.String()))
		assert.Equal(t, expected, actual)
	}
}
