package facilitator

import (
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"math"
	"regexp"
	"strings"
)

type Command uint8

const (
	CommandNone      = Command(0)
	CommandTimeQuery = Command(1)
	CommandSkip      = Command(2)
	CommandEnd       = Command(3)
	CommandOverride  = Command(4)
)

func (this Command) String() string {
	switch this {
	case CommandNone:
		return "none"
	case CommandTimeQuery:
		return "time_query"
	case CommandSkip:
		return "skip"
	case CommandEnd:
		return "end"
	case CommandOverride:
		return "override"
	default:
		return fmt.Sprintf("illegal-command-%d", this)
	}
}

var (
	timeQueryPatterns = patterns(
		`\bwhat(?:'s| is)?\s+time\b`,
		`\bwhat(?:'s| is)?\s+the\s+time\b`,
		`\bwhat\s+time\s+is\s+it\b`,
		`\bhow\s+long\s+has\s+this\s+meeting\b`,
		`\bhow\s+long\s+have\s+we\s+been\b`,
		`\bhow\s+much\s+time(?:\s+is)?\s+left\b`,
		`\btime\s+left\b`,
		`\bremaining\s+time\b`,
		`\bminutes?\s+left\b`,
	)
	skipPatterns = patterns(
		`\bskip\s+(?:this|that|the\s+\w+|current)\b`,
		`\blet'?s?\s+skip\b`,
		`\bcan\s+we\s+skip\b`,
		`\bmove\s+on\s+to\s+the\s+next\b`,
		`\bnext\s+agenda\s+item\b`,
		`\bnext\s+topic\b`,
		`\bskip\s+ahead\b`,
	)
	endPatterns = patterns(
		`\bend\s+the\s+meeting\b`,
		`\bmeeting\s+is\s+(?:over|done|ended|finished)\b`,
		`\bmeeting'?s\s+(?:over|done|ended)\b`,
		`\blet'?s?\s+end\s+(?:the\s+)?meeting\b`,
		`\badjourn\b`,
		`\bthat'?s?\s+(?:it|all)\s+for\s+today\b`,
		`\bclose\s+(?:the\s+)?meeting\b`,
		`\bwe'?re?\s+done\s+(?:with\s+the\s+)?meeting\b`,
	)
	overridePatterns = patterns(
		`\bkeep\s+going\b`,
		`\blet'?s?\s+continue\b`,
		`\bwe'?re?\s+not\s+done\b`,
		`\bmore\s+time\b`,
		`\bextend\b`,
	)
	addressPatterns = patterns(
		`\b(?:hey\s+)?beat\b`,
		`(?:^|\s)@beat\b`,
	)
)

func patterns(plains ...string) []*regexp.Regexp {
	result := make([]*regexp.Regexp, len(plains))
	for i, plain := range plains {
		result[i] = regexp.MustCompile(plain)
	}
	return result
}

func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func matchesAny(text string, candidates []*regexp.Regexp) bool {
	text = normalize(text)
	if text == "" {
		return false
	}
	for _, candidate := range candidates {
		if candidate.MatchString(text) {
			return true
		}
	}
	return false
}

// ClassifyCommand finds the command a participant said. The order of checks
// decides between ambiguous phrases like "skip ahead, we are done with the
// meeting".
func ClassifyCommand(text string) Command {
	switch {
	case matchesAny(text, timeQueryPatterns):
		return CommandTimeQuery
	case matchesAny(text, skipPatterns):
		return CommandSkip
	case matchesAny(text, endPatterns):
		return CommandEnd
	case matchesAny(text, overridePatterns):
		return CommandOverride
	default:
		return CommandNone
	}
}

// IsAddressed reports whether the facilitator was called by its name.
func IsAddressed(text string) bool {
	return matchesAny(text, addressPatterns)
}

// FormatDuration renders minutes the way they are read out loud, like
// "2 minutes 30 seconds".
func FormatDuration(minutes float64) string {
	totalSeconds := int(math.Max(0, math.Round(minutes*60)))
	m, s := totalSeconds/60, totalSeconds%60

	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("%d %s", n, unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}

	switch {
	case m > 0 && s > 0:
		return plural(m, "minute") + " " + plural(s, "second")
	case m > 0:
		return plural(m, "minute")
	default:
		return plural(s, "second")
	}
}

// FormatTimeStatus answers a time question from the live meeting state.
func FormatTimeStatus(status agenda.TimeStatus) string {
	if !status.Started {
		return "The meeting clock has not started yet."
	}

	at := status.CurrentTime.Format("3:04 PM")
	total := FormatDuration(status.TotalMeetingMinutes)
	if !status.HasCurrentItem() {
		return fmt.Sprintf("It's %s. The meeting has run for %s, and there is no active agenda item right now.", at, total)
	}
	return fmt.Sprintf("It's %s. The meeting has run for %s, with %s left on %s.", at, total, FormatDuration(status.CurrentRemainingMinutes), status.CurrentTopic)
}
