// Package oracle is the narrow interface to the language model which judges
// the conversation, summarises completed agenda items and answers questions
// addressed to the facilitator. Whatever it returns is advisory: the speech
// gate still decides whether anything gets spoken.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"math"
	"strings"
)

var (
	ErrDisabled = errors.New("oracle disabled")
	ErrNoApiKey = errors.New("no oracle API key available")
)

type Oracle interface {
	// JudgeTangent assesses whether the recent conversation still belongs
	// to the current agenda item.
	JudgeTangent(ctx context.Context, req TangentRequest) (Judgment, error)

	// SummarizeItem condenses the transcript of a completed item into notes.
	SummarizeItem(ctx context.Context, req SummaryRequest) (agenda.Notes, error)

	// Answer replies to a question somebody addressed to the facilitator.
	Answer(ctx context.Context, q Question) (string, error)
}

type TangentRequest struct {
	Topic            string
	Description      string
	RecentTranscript string
}

type SummaryRequest struct {
	Item       agenda.Item
	Transcript string
}

type Question struct {
	Text   string
	Asker  string
	Style  agenda.Style
	Status agenda.TimeStatus

	// MemoryContext are the notes of all items completed so far.
	MemoryContext string
}

type Judgment struct {
	Status         Status  `json:"status"`
	Confidence     float64 `json:"confidence"`
	ShouldSpeak    bool    `json:"should_speak"`
	SpokenResponse string  `json:"spoken_response,omitempty"`
}

// TangentConfidence is the confidence that the conversation left the current
// topic. It is zero unless the status says so.
func (this Judgment) TangentConfidence() float64 {
	if !this.Status.IsTangent() || math.IsNaN(this.Confidence) {
		return 0
	}
	return math.Max(0, math.Min(1, this.Confidence))
}

func (this Judgment) String() string {
	return fmt.Sprintf("%v (%.2f)", this.Status, this.Confidence)
}

// TransientError is any failure of the oracle. It is never fatal; callers
// continue without the signal they asked for.
type TransientError struct {
	Op  string
	Err error
}

func (this *TransientError) Error() string {
	return fmt.Sprintf("oracle cannot %s: %v", this.Op, this.Err)
}

func (this *TransientError) Unwrap() error {
	return this.Err
}

// Disabled is used if no oracle is configured. Every call fails with
// ErrDisabled.
type Disabled struct{}

func (this Disabled) JudgeTangent(context.Context, TangentRequest) (Judgment, error) {
	return Judgment{}, &TransientError{"judge tangent", ErrDisabled}
}

func (this Disabled) SummarizeItem(_ context.Context, req SummaryRequest) (agenda.Notes, error) {
	return agenda.Notes{ItemID: req.Item.ID, Topic: req.Item.Topic}, &TransientError{"summarize item", ErrDisabled}
}

func (this Disabled) Answer(context.Context, Question) (string, error) {
	return "", &TransientError{"answer", ErrDisabled}
}

func normalizeAnswer(in string) string {
	return strings.TrimSpace(in)
}
