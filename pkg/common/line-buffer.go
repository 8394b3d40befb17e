package common

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

var (
	ErrLineTooLong = errors.New("line too long")
)

// NewLineBuffer keeps the last maxLines lines written to it. It is used as
// backlog of the log output which can be replayed on the host console.
func NewLineBuffer(maxLines, maxLineLength uint32) *LineBuffer {
	return &LineBuffer{
		current: make([]byte, 0, maxLineLength),
		lines:   NewRingBuffer[[]byte](maxLines),
	}
}

type LineBuffer struct {
	TruncateTooLongLines bool

	current    []byte
	discarding bool
	lines      *RingBuffer[[]byte]

	mutex sync.Mutex
}

func (this *LineBuffer) Write(p []byte) (n int, err error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	for len(p) > 0 {
		rl := bytes.IndexByte(p, '\n')
		hasNl := rl >= 0
		if this.discarding {
			if !hasNl {
				return n + len(p), nil
			}
			this.discarding = false
			n += rl + 1
			p = p[rl+1:]
			continue
		}
		if !hasNl {
			rl = len(p)
		}

		consumed := rl
		if hasNl {
			consumed++
		}

		free := cap(this.current) - len(this.current)
		if rl > free {
			if !this.TruncateTooLongLines {
				return n, ErrLineTooLong
			}
			// The rest of this line up to the next \n is dropped.
			this.current = append(this.current, p[:free]...)
			this.flush()
			this.discarding = !hasNl
			n += consumed
			p = p[consumed:]
			continue
		}

		this.current = append(this.current, p[:rl]...)
		n += consumed
		if hasNl {
			this.flush()
		}
		p = p[consumed:]
	}

	return n, nil
}

func (this *LineBuffer) flush() {
	this.lines.Push(bytes.Clone(this.current))
	this.current = this.current[:0]
}

func (this *LineBuffer) NumberOfLines() uint32 {
	return this.lines.Len()
}

func (this *LineBuffer) Lines() [][]byte {
	return this.lines.Snapshot()
}

func (this *LineBuffer) WriteTo(to io.Writer) (n int64, err error) {
	err = this.lines.Consume(func(_ uint32, line []byte) error {
		wn, wErr := to.Write(append(bytes.Clone(line), '\n'))
		n += int64(wn)
		return wErr
	})
	return n, err
}
