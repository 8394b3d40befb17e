package agenda

import (
	"sort"
	"strings"
	"time"
)

// AddTranscript appends a finalized recognition result to the rolling buffer
// and to the complete log of the current item.
func (this *Meeting) AddTranscript(speaker, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	speaker = strings.TrimSpace(speaker)
	if speaker == "" {
		speaker = "participant"
	}

	now := this.clock.Now()
	entry := TranscriptEntry{
		Speaker:   speaker,
		Text:      text,
		Timestamp: now,
	}

	this.transcript = append(this.transcript, entry)
	this.itemTranscripts[this.currentIndex] = append(this.itemTranscripts[this.currentIndex], entry)

	if p, ok := this.participants[speaker]; ok {
		p.LastSeen = now
		this.participants[speaker] = p
	} else {
		this.participants[speaker] = Presence{FirstSeen: now, LastSeen: now}
	}

	this.pruneTranscript(now)
}

func (this *Meeting) pruneTranscript(now time.Time) {
	cutoff := now.Add(-TranscriptRetention)
	i := 0
	for i < len(this.transcript) && !this.transcript[i].Timestamp.After(cutoff) {
		i++
	}
	if i > 0 {
		this.transcript = append(this.transcript[:0:0], this.transcript[i:]...)
	}
}

// RecentTranscript renders everything said within the given window. The
// window cannot reach further back than TranscriptRetention.
func (this *Meeting) RecentTranscript(window time.Duration) string {
	cutoff := this.clock.Now().Add(-window)
	var result TranscriptEntries
	for _, v := range this.transcript {
		if v.Timestamp.After(cutoff) {
			result = append(result, v)
		}
	}
	return result.String()
}

func (this *Meeting) ItemTranscript(index int) string {
	return TranscriptEntries(this.itemTranscripts[index]).String()
}

func (this *Meeting) Participants() []string {
	result := make([]string, 0, len(this.participants))
	for k := range this.participants {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

func (this *Meeting) Presence(speaker string) (Presence, bool) {
	v, ok := this.participants[speaker]
	return v, ok
}
