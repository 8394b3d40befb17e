package common

import (
	"errors"
	"sync"
)

var (
	ErrStopIteration = errors.New("stop iteration")
)

// NewRingBuffer creates a buffer holding at most capacity elements. Once it
// is full every Push drops the oldest element.
func NewRingBuffer[T any](capacity uint32) *RingBuffer[T] {
	if capacity == 0 {
		capacity = 1
	}
	return &RingBuffer[T]{
		elements: make([]T, capacity),
	}
}

type RingBuffer[T any] struct {
	offset   int
	length   int
	elements []T

	mutex sync.RWMutex
}

// Push appends v and reports whether the oldest element had to be dropped
// for it.
func (this *RingBuffer[T]) Push(v T) (dropped bool) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	capacity := len(this.elements)
	if this.length >= capacity {
		var zero T
		this.elements[this.offset] = zero
		this.offset = (this.offset + 1) % capacity
		this.length--
		dropped = true
	}

	this.elements[(this.offset+this.length)%capacity] = v
	this.length++
	return dropped
}

// Pop removes and returns the oldest element.
func (this *RingBuffer[T]) Pop() (result T, ok bool) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.length == 0 {
		return result, false
	}

	var zero T
	result = this.elements[this.offset]
	this.elements[this.offset] = zero
	this.offset = (this.offset + 1) % len(this.elements)
	this.length--
	return result, true
}

func (this *RingBuffer[T]) Len() uint32 {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	return uint32(this.length)
}

func (this *RingBuffer[T]) Cap() uint32 {
	return uint32(len(this.elements))
}

func (this *RingBuffer[T]) Clear() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	clear(this.elements)
	this.offset = 0
	this.length = 0
}

type Consumer[T any] func(uint32, T) error

// Consume visits all elements from the oldest to the newest without
// removing them. Returning ErrStopIteration ends the visit without error.
func (this *RingBuffer[T]) Consume(consumer Consumer[T]) error {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	for i := 0; i < this.length; i++ {
		v := this.elements[(this.offset+i)%len(this.elements)]
		if err := consumer(uint32(i), v); err != nil {
			if errors.Is(err, ErrStopIteration) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (this *RingBuffer[T]) Snapshot() []T {
	result := make([]T, 0, this.Len())
	_ = this.Consume(func(_ uint32, v T) error {
		result = append(result, v)
		return nil
	})
	return result
}
