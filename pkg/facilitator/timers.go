package facilitator

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/clock"
	log "github.com/echocat/slf4g"
	"sync"
	"time"
)

const warningRatio = 0.8

// Timers holds the one-shot warning and overtime timers of the current item.
// Every change bumps the generation; a callback is only honoured if its
// generation is still the current one, so a callback racing a cancel is a
// no-op.
type Timers struct {
	clock      clock.Clock
	onWarning  func(generation uint64)
	onOvertime func(generation uint64)

	mutex      sync.Mutex
	generation uint64
	warning    clock.Timer
	overtime   clock.Timer
}

func newTimers(c clock.Clock, onWarning, onOvertime func(generation uint64)) *Timers {
	return &Timers{
		clock:      clock.OrSystem(c),
		onWarning:  onWarning,
		onOvertime: onOvertime,
	}
}

// Schedule replaces all pending timers with new ones for an item with the
// given allocation which is already running for elapsed. A warning which is
// already due is not scheduled at all; an overtime which is already due fires
// as soon as the clock moves on.
func (this *Timers) Schedule(allocated, elapsed time.Duration) uint64 {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	gen := this.resetLocked()

	warningIn := time.Duration(float64(allocated)*warningRatio) - elapsed
	if allocated > 0 && warningIn > 0 {
		this.warning = this.clock.AfterFunc(warningIn, func() { this.onWarning(gen) })
	}
	overtimeIn := max(0, allocated-elapsed)
	this.overtime = this.clock.AfterFunc(overtimeIn, func() { this.onOvertime(gen) })

	log.With("allocated", allocated).
		With("warningIn", warningIn).
		With("overtimeIn", overtimeIn).
		Debug("Item timers scheduled.")
	return gen
}

// Extend drops the pending timers and schedules the overtime again after
// grace.
func (this *Timers) Extend(grace time.Duration) uint64 {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	gen := this.resetLocked()
	this.overtime = this.clock.AfterFunc(grace, func() { this.onOvertime(gen) })

	log.With("grace", grace).
		Debug("Overtime timer extended.")
	return gen
}

// Cancel drops all pending timers. It can be called any number of times.
func (this *Timers) Cancel() {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.resetLocked()
}

func (this *Timers) IsCurrent(generation uint64) bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.generation == generation
}

func (this *Timers) resetLocked() uint64 {
	if this.warning != nil {
		this.warning.Stop()
		this.warning = nil
	}
	if this.overtime != nil {
		this.overtime.Stop()
		this.overtime = nil
	}
	this.generation++
	return this.generation
}

// periodic runs fn every interval on the given clock until it is stopped.
type periodic struct {
	clock    clock.Clock
	interval time.Duration
	fn       func()

	mutex   sync.Mutex
	timer   clock.Timer
	stopped bool
}

func startPeriodic(c clock.Clock, interval time.Duration, fn func()) *periodic {
	result := &periodic{
		clock:    clock.OrSystem(c),
		interval: interval,
		fn:       fn,
	}
	if interval <= 0 {
		result.stopped = true
		return result
	}
	result.mutex.Lock()
	result.scheduleLocked()
	result.mutex.Unlock()
	return result
}

func (this *periodic) scheduleLocked() {
	this.timer = this.clock.AfterFunc(this.interval, func() {
		this.mutex.Lock()
		if this.stopped {
			this.mutex.Unlock()
			return
		}
		this.mutex.Unlock()

		this.fn()

		this.mutex.Lock()
		defer this.mutex.Unlock()
		if !this.stopped {
			this.scheduleLocked()
		}
	})
}

func (this *periodic) Stop() {
	if this == nil {
		return
	}
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.stopped = true
	if this.timer != nil {
		this.timer.Stop()
		this.timer = nil
	}
}
