// Package mixer merges the audio of many concurrently attached sources into
// one stream of fixed size frames.
//
// Every source has exactly one slot which always holds only the most recent
// unread frame of that source. Each tick takes all filled slots, empties
// them and emits one frame: silence if nothing arrived, the frame as it is if
// exactly one source delivered, otherwise the saturated sum. Emitted frames
// are buffered in a bounded queue which drops the oldest frames on overflow.
package mixer

import (
	"context"
	"errors"
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/common"
	log "github.com/echocat/slf4g"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrClosed          = errors.New("mixer closed")
	ErrAlreadyAttached = errors.New("source already attached")
	ErrNotRelevant     = errors.New("source is excluded")
)

// Source delivers frames of one participant. ReadFrame blocks until the next
// frame is available. io.EOF signals a regular end of the source. If a Source
// also implements io.Closer it is closed once it gets detached; this has to
// unblock a pending ReadFrame.
type Source interface {
	ReadFrame(ctx context.Context) (Frame, error)
}

type SourceFunc func(ctx context.Context) (Frame, error)

func (this SourceFunc) ReadFrame(ctx context.Context) (Frame, error) {
	return this(ctx)
}

// LifecycleError is a failure of one source. It never affects other sources
// or the mix itself.
type LifecycleError struct {
	Source string
	Op     string
	Err    error
}

func (this *LifecycleError) Error() string {
	return fmt.Sprintf("cannot %s audio source %q: %v", this.Op, this.Source, this.Err)
}

func (this *LifecycleError) Unwrap() error {
	return this.Err
}

func New(conf Configuration) *Mixer {
	conf = conf.orDefaults()
	return &Mixer{
		conf:      conf,
		slots:     make(map[string]*slot),
		output:    common.NewRingBuffer[Frame](conf.QueueDepth),
		available: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

type Mixer struct {
	conf Configuration

	mutex sync.Mutex
	slots map[string]*slot

	output    *common.RingBuffer[Frame]
	available chan struct{}
	dropped   atomic.Uint64

	done      chan struct{}
	closeOnce sync.Once
	readers   sync.WaitGroup
}

type slot struct {
	id      string
	source  Source
	cancel  context.CancelFunc
	latest  *Frame
	release sync.Once
}

func (this *Mixer) Configuration() Configuration {
	return this.conf
}

// Attach starts reading from the given source.
func (this *Mixer) Attach(id string, source Source) error {
	fail := func(err error) error {
		return &LifecycleError{Source: id, Op: "attach", Err: err}
	}

	this.mutex.Lock()
	select {
	case <-this.done:
		this.mutex.Unlock()
		return fail(ErrClosed)
	default:
	}
	if !this.conf.isSourceRelevant(id) {
		this.mutex.Unlock()
		return fail(ErrNotRelevant)
	}
	if _, ok := this.slots[id]; ok {
		this.mutex.Unlock()
		return fail(ErrAlreadyAttached)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &slot{
		id:     id,
		source: source,
		cancel: cancel,
	}
	this.slots[id] = s
	this.readers.Add(1)
	this.mutex.Unlock()

	go this.read(ctx, s)

	log.With("source", id).
		Info("Audio source attached.")
	return nil
}

// Detach stops reading from the source with the given id and releases it.
// It returns false if no such source is attached.
func (this *Mixer) Detach(id string) bool {
	this.mutex.Lock()
	s, ok := this.slots[id]
	if ok {
		delete(this.slots, id)
	}
	this.mutex.Unlock()

	if !ok {
		return false
	}
	this.release(s)
	return true
}

func (this *Mixer) detachSlot(s *slot) {
	this.mutex.Lock()
	if this.slots[s.id] == s {
		delete(this.slots, s.id)
	}
	this.mutex.Unlock()

	this.release(s)
}

func (this *Mixer) release(s *slot) {
	s.release.Do(func() {
		s.cancel()
		if closer, ok := s.source.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				log.WithError(&LifecycleError{Source: s.id, Op: "close", Err: err}).
					Warn("Cannot close audio source.")
			}
		}
		log.With("source", s.id).
			Info("Audio source detached.")
	})
}

func (this *Mixer) read(ctx context.Context, s *slot) {
	defer this.readers.Done()

	for {
		f, err := s.source.ReadFrame(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
			case errors.Is(err, io.EOF):
				log.With("source", s.id).
					Debug("Audio source ended.")
			default:
				log.WithError(&LifecycleError{Source: s.id, Op: "read", Err: err}).
					Warn("Cannot read from audio source. Detaching it...")
			}
			this.detachSlot(s)
			return
		}

		this.mutex.Lock()
		if this.slots[s.id] == s {
			s.latest = &f
		}
		this.mutex.Unlock()
	}
}

// Sources returns the ids of all attached sources.
func (this *Mixer) Sources() []string {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	result := make([]string, 0, len(this.slots))
	for id := range this.slots {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

func (this *Mixer) pending() int {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	result := 0
	for _, s := range this.slots {
		if s.latest != nil {
			result++
		}
	}
	return result
}

// Tick produces exactly one frame out of the current slots and enqueues it.
func (this *Mixer) Tick() Frame {
	this.mutex.Lock()
	frames := make([]Frame, 0, len(this.slots))
	for _, s := range this.slots {
		if s.latest != nil {
			frames = append(frames, *s.latest)
			s.latest = nil
		}
	}
	this.mutex.Unlock()

	var result Frame
	switch len(frames) {
	case 0:
		result = NewSilence(this.conf.SampleRate, this.conf.Channels, this.conf.SamplesPerChannel())
	case 1:
		result = frames[0]
	default:
		result = mix(this.conf.SampleRate, this.conf.Channels, this.conf.SamplesPerChannel(), frames...)
	}

	this.emit(result)
	return result
}

func (this *Mixer) emit(f Frame) {
	select {
	case <-this.done:
		return
	default:
	}

	if this.output.Push(f) {
		if n := this.dropped.Add(1); n == 1 || n%100 == 0 {
			log.With("dropped", n).
				Warn("Consumer of mixed audio is too slow. Oldest frames are dropped.")
		}
	}
	select {
	case this.available <- struct{}{}:
	default:
	}
}

// Dropped is the number of mixed frames that were dropped from the queue so
// far.
func (this *Mixer) Dropped() uint64 {
	return this.dropped.Load()
}

// Next blocks until a mixed frame is available. It returns false once the
// mixer is closed or ctx is done.
func (this *Mixer) Next(ctx context.Context) (Frame, bool) {
	for {
		select {
		case <-this.done:
			return Frame{}, false
		default:
		}

		if f, ok := this.output.Pop(); ok {
			return f, true
		}

		select {
		case <-this.done:
			return Frame{}, false
		case <-ctx.Done():
			return Frame{}, false
		case <-this.available:
		}
	}
}

// Run ticks every frame duration until ctx is done or the mixer is closed.
func (this *Mixer) Run(ctx context.Context) error {
	ticker := time.NewTicker(this.conf.FrameDuration)
	defer ticker.Stop()

	log.With("frameDuration", this.conf.FrameDuration).
		With("sampleRate", this.conf.SampleRate).
		Debug("Mixer started.")

	for {
		select {
		case <-ctx.Done():
			log.Debug("Mix loop interrupted.")
			return nil
		case <-this.done:
			return nil
		case <-ticker.C:
			this.Tick()
		}
	}
}

// Close detaches all sources and ends consumption.
func (this *Mixer) Close() error {
	this.closeOnce.Do(func() {
		this.mutex.Lock()
		close(this.done)
		slots := this.slots
		this.slots = make(map[string]*slot)
		this.mutex.Unlock()

		for _, s := range slots {
			this.release(s)
		}
		this.readers.Wait()
		this.output.Clear()
	})
	return nil
}
