package clock

import (
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestManual_Advance(t *testing.T) {
	instance := NewManual(t0)

	var fired []string
	instance.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	instance.AfterFunc(1*time.Second, func() { fired = append(fired, "a") })
	instance.AfterFunc(5*time.Second, func() { fired = append(fired, "c") })

	instance.Advance(3 * time.Second)

	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, t0.Add(3*time.Second), instance.Now())
	assert.Equal(t, 1, instance.Pending())
}

func TestManual_TimerSeesDueTime(t *testing.T) {
	instance := NewManual(t0)

	var seen time.Time
	instance.AfterFunc(time.Minute, func() { seen = instance.Now() })
	instance.Advance(time.Hour)

	assert.Equal(t, t0.Add(time.Minute), seen)
	assert.Equal(t, t0.Add(time.Hour), instance.Now())
}

func TestManual_StopIsIdempotent(t *testing.T) {
	instance := NewManual(t0)

	called := false
	timer := instance.AfterFunc(time.Second, func() { called = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	instance.Advance(time.Minute)
	assert.False(t, called)
}

func TestManual_StopAfterFire(t *testing.T) {
	instance := NewManual(t0)

	timer := instance.AfterFunc(time.Second, func() {})
	instance.Advance(time.Second)

	assert.False(t, timer.Stop())
}

func TestManual_TimerScheduledFromCallback(t *testing.T) {
	instance := NewManual(t0)

	var fired []time.Duration
	instance.AfterFunc(time.Second, func() {
		fired = append(fired, instance.Now().Sub(t0))
		instance.AfterFunc(time.Second, func() {
			fired = append(fired, instance.Now().Sub(t0))
		})
	})

	instance.Advance(5 * time.Second)

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, fired)
}

func TestOrSystem(t *testing.T) {
	assert.Equal(t, System, OrSystem(nil))

	m := NewManual(t0)
	assert.Same(t, m, OrSystem(m))
}
