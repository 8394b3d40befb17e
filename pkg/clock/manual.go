package clock

import (
	"sort"
	"sync"
	"time"
)

// NewManual creates a clock frozen at start. Time only moves with Set or
// Advance, which also run every timer that became due, in due order, on the
// calling goroutine.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

type Manual struct {
	now    time.Time
	timers []*manualTimer
	seq    uint64
	mutex  sync.Mutex
}

func (this *Manual) Now() time.Time {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.now
}

func (this *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.seq++
	t := &manualTimer{
		owner: this,
		at:    this.now.Add(d),
		seq:   this.seq,
		fn:    fn,
	}
	this.timers = append(this.timers, t)
	return t
}

func (this *Manual) Advance(d time.Duration) {
	this.Set(this.Now().Add(d))
}

func (this *Manual) Set(to time.Time) {
	for {
		this.mutex.Lock()
		next := this.popDue(to)
		if next == nil {
			if to.After(this.now) {
				this.now = to
			}
			this.mutex.Unlock()
			return
		}
		if next.at.After(this.now) {
			this.now = next.at
		}
		this.mutex.Unlock()

		next.fn()
	}
}

// Pending returns the number of timers which are scheduled but not fired.
func (this *Manual) Pending() int {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return len(this.timers)
}

func (this *Manual) popDue(to time.Time) *manualTimer {
	if len(this.timers) == 0 {
		return nil
	}
	sort.SliceStable(this.timers, func(i, j int) bool {
		a, b := this.timers[i], this.timers[j]
		if a.at.Equal(b.at) {
			return a.seq < b.seq
		}
		return a.at.Before(b.at)
	})
	first := this.timers[0]
	if first.at.After(to) {
		return nil
	}
	this.timers = this.timers[1:]
	first.fired = true
	return first
}

func (this *Manual) remove(t *manualTimer) bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if t.fired {
		return false
	}
	for i, candidate := range this.timers {
		if candidate == t {
			this.timers = append(this.timers[:i], this.timers[i+1:]...)
			t.fired = true
			return true
		}
	}
	return false
}

type manualTimer struct {
	owner *Manual
	at    time.Time
	seq   uint64
	fn    func()
	fired bool
}

func (this *manualTimer) Stop() bool {
	return this.owner.remove(this)
}
