package facilitator

import (
	"context"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	log "github.com/echocat/slf4g"
)

// Speaker voices what the facilitator decided to say. Say may block until the
// text is spoken.
type Speaker interface {
	Say(ctx context.Context, text string, allowInterruptions bool) error
}

type SpeakerFunc func(ctx context.Context, text string, allowInterruptions bool) error

func (this SpeakerFunc) Say(ctx context.Context, text string, allowInterruptions bool) error {
	return this(ctx, text, allowInterruptions)
}

// LogSpeaker only logs the text. It is used if no speech synthesis is
// attached.
type LogSpeaker struct{}

func (this LogSpeaker) Say(_ context.Context, text string, _ bool) error {
	log.With("text", text).
		Info("Beat says.")
	return nil
}

// Publisher receives the agenda state after each transition and on every
// heartbeat.
type Publisher interface {
	Publish(snapshot agenda.Snapshot)
}

type PublisherFunc func(snapshot agenda.Snapshot)

func (this PublisherFunc) Publish(snapshot agenda.Snapshot) {
	this(snapshot)
}

type noopPublisher struct{}

func (this noopPublisher) Publish(agenda.Snapshot) {}
