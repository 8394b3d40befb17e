package gate

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestWords(t *testing.T) {
	cases := []struct {
		text     string
		expected []string
	}{
		{"Let's move on, ok?", []string{"let's", "move", "on", "ok"}},
		{"Die Größe der Überschrift", []string{"die", "größe", "der", "überschrift"}},
		{"café naïve 42", []string{"café", "naïve", "42"}},
		{"", nil},
	}
	for _, c := range cases {
		t.Run(c.text, func(t *testing.T) {
			actual := words(c.text)

			assert.Len(t, actual, len(c.expected))
			for _, w := range c.expected {
				assert.Contains(t, actual, w)
			}
		})
	}
}

func TestIsRedundant_NonAscii(t *testing.T) {
	assert.True(t, isRedundant("Größe und Überschrift", "wir reden über größe und überschrift", 0.6))
	assert.False(t, isRedundant("Größe und Überschrift", "gross und uberschrift", 0.6))
}
