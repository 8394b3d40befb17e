package facade

import (
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal/hue"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal/logger"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal/webhook"
	log "github.com/echocat/slf4g"
	"sync"
	"sync/atomic"
)

// Facade holds the configured Signal and feeds it with published agenda
// snapshots. Publish never blocks; snapshots arriving while the signal is
// still busy are collapsed into the latest one.
type Facade struct {
	signal.Signal

	lock sync.RWMutex

	pending atomic.Pointer[agenda.Snapshot]
	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

func (this *Facade) Ensure(c signal.Context) error {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Signal; v != nil {
		return v.Ensure(c)
	}
	return nil
}

func (this *Facade) Update() error {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Signal; v != nil {
		return v.Update()
	}
	return nil
}

// Publish hands the snapshot over to the signal. It is dropped if the facade
// was not initialized.
func (this *Facade) Publish(snapshot agenda.Snapshot) {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if this.wake == nil {
		return
	}
	this.pending.Store(&snapshot)
	select {
	case this.wake <- struct{}{}:
	default:
	}
}

func (this *Facade) work(wake, done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	for {
		select {
		case <-wake:
			this.flush()
		case <-done:
			this.flush()
			return
		}
	}
}

func (this *Facade) flush() {
	v := this.pending.Swap(nil)
	if v == nil {
		return
	}
	ctx := signal.ContextOf(*v)
	if err := this.Ensure(ctx); err != nil {
		log.WithError(err).
			With("type", this.GetType()).
			With("state", ctx.State()).
			Warn("Cannot ensure agenda state at signal.")
	}
}

func (this *Facade) Initialize(conf *Configuration, saveConfFunc func() error) error {
	var s signal.Signal
	switch conf.Type {
	case signal.TypeLog:
		s = &logger.Logger{}
	case signal.TypeHue:
		var buf hue.Hue
		if err := buf.Initialize(&conf.Hue, saveConfFunc); err != nil {
			return err
		}
		s = &buf
	case signal.TypeWebhook:
		var buf webhook.Webhook
		if err := buf.Initialize(&conf.Webhook, saveConfFunc); err != nil {
			return err
		}
		s = &buf
	default:
		return fmt.Errorf("unsupported signal type: %v", conf.Type)
	}

	if !this.initializeWith(s) {
		return s.Dispose()
	}
	return nil
}

func (this *Facade) initializeWith(s signal.Signal) bool {
	this.lock.Lock()
	defer this.lock.Unlock()

	if this.Signal != nil {
		return false
	}

	this.Signal = s
	this.wake = make(chan struct{}, 1)
	this.done = make(chan struct{})
	this.stopped = make(chan struct{})
	go this.work(this.wake, this.done, this.stopped)
	return true
}

// Dispose delivers the last published snapshot, if still pending, and
// disposes the signal afterward.
func (this *Facade) Dispose() error {
	this.lock.Lock()
	done, stopped := this.done, this.stopped
	this.wake, this.done, this.stopped = nil, nil, nil
	this.lock.Unlock()

	if done != nil {
		close(done)
		<-stopped
	}

	this.lock.Lock()
	defer this.lock.Unlock()

	defer func() {
		this.Signal = nil
	}()

	if v := this.Signal; v != nil {
		return v.Dispose()
	}
	return nil
}

func (this *Facade) GetType() signal.Type {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Signal; v != nil {
		return v.GetType()
	}

	return signal.TypeDefault
}
