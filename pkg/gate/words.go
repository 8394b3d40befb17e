package gate

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_']+`)

func words(text string) map[string]struct{} {
	found := wordPattern.FindAllString(strings.ToLower(text), -1)
	result := make(map[string]struct{}, len(found))
	for _, v := range found {
		result[v] = struct{}{}
	}
	return result
}

// isRedundant is true if more than ratio of the distinct words of candidate
// already appear in transcript.
func isRedundant(candidate, transcript string, ratio float64) bool {
	if candidate == "" || transcript == "" {
		return false
	}
	candidateWords := words(candidate)
	if len(candidateWords) == 0 {
		return false
	}
	transcriptWords := words(transcript)

	overlap := 0
	for w := range candidateWords {
		if _, ok := transcriptWords[w]; ok {
			overlap++
		}
	}
	return float64(overlap)/float64(len(candidateWords)) > ratio
}

var silencePhrases = []string{
	"please be quiet",
	"be quiet",
	"quiet please",
	"stop talking",
	"stop interrupting",
	"don't interrupt",
	"we've got this",
	"we're fine",
	"let us talk",
	"hold on bot",
	"hold on beat",
	"not now",
	"stay quiet",
	"zip it",
	"shh",
	"shut up",
	"shut it",
	"pipe down",
	"hush",
	"silence beat",
	"beat stop",
}

// IsSilenceRequest reports whether a participant asked the facilitator to
// keep quiet.
func IsSilenceRequest(text string) bool {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return false
	}
	for _, phrase := range silencePhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
