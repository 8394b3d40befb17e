package logger

import (
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal"
	log "github.com/echocat/slf4g"
	"sync"
)

// Logger only logs the agenda state. Changes are logged on info level,
// everything else on debug level.
type Logger struct {
	Logger log.Logger

	mutex sync.Mutex
	last  *signal.State
	index int
}

func (this *Logger) Ensure(ctx signal.Context) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	snapshot := ctx.Snapshot()
	state := ctx.State()

	l := this.logger().
		With("title", snapshot.Title).
		With("state", state).
		With("overtime", fmt.Sprintf("%.1f", snapshot.MeetingOvertime))
	if i := snapshot.CurrentItemIndex; i >= 0 && i < len(snapshot.Items) {
		l = l.With("item", snapshot.Items[i].Topic)
	}

	if this.last != nil && *this.last == state && this.index == snapshot.CurrentItemIndex {
		l.Debug("Agenda state unchanged.")
		return nil
	}

	done, total := 0, 0
	for item, err := range ctx.Items() {
		if err != nil {
			return err
		}
		total++
		if item.State == agenda.ItemStateCompleted {
			done++
		}
	}
	l.With("progress", fmt.Sprintf("%d/%d", done, total)).
		Info("Agenda state changed.")

	this.last = &state
	this.index = snapshot.CurrentItemIndex
	return nil
}

func (this *Logger) logger() log.Logger {
	if v := this.Logger; v != nil {
		return v
	}
	return log.GetLogger("agenda")
}

func (this *Logger) Update() error {
	return nil
}

func (this *Logger) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.last = nil
	return nil
}

func (this *Logger) GetType() signal.Type {
	return signal.TypeLog
}
