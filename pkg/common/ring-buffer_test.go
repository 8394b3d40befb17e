package common

import (
	"bytes"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestRingBuffer_Push(t *testing.T) {
	instance := NewRingBuffer[int](5)

	for i := 1; i <= 5; i++ {
		assert.False(t, instance.Push(i))
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, instance.elements)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, instance.Snapshot())

	assert.True(t, instance.Push(6))
	assert.Equal(t, []int{6, 2, 3, 4, 5}, instance.elements)
	assert.Equal(t, []int{2, 3, 4, 5, 6}, instance.Snapshot())

	assert.True(t, instance.Push(7))
	assert.True(t, instance.Push(8))
	assert.True(t, instance.Push(9))
	assert.True(t, instance.Push(10))
	assert.Equal(t, []int{6, 7, 8, 9, 10}, instance.elements)

	assert.True(t, instance.Push(11))
	assert.Equal(t, []int{11, 7, 8, 9, 10}, instance.elements)
	assert.Equal(t, []int{7, 8, 9, 10, 11}, instance.Snapshot())
	assert.Equal(t, uint32(5), instance.Len())
}

func TestRingBuffer_Pop(t *testing.T) {
	instance := NewRingBuffer[string](3)

	_, ok := instance.Pop()
	assert.False(t, ok)

	instance.Push("a")
	instance.Push("b")
	instance.Push("c")
	instance.Push("d")

	actual, ok := instance.Pop()
	require.True(t, ok)
	assert.Equal(t, "b", actual)

	instance.Push("e")
	assert.Equal(t, []string{"c", "d", "e"}, instance.Snapshot())

	for _, expected := range []string{"c", "d", "e"} {
		actual, ok = instance.Pop()
		require.True(t, ok)
		assert.Equal(t, expected, actual)
	}
	_, ok = instance.Pop()
	assert.False(t, ok)
	assert.Equal(t, uint32(0), instance.Len())
}

func TestRingBuffer_Consume(t *testing.T) {
	instance := NewRingBuffer[int](4)
	for i := 0; i < 6; i++ {
		instance.Push(i)
	}

	var visited []int
	assert.NoError(t, instance.Consume(func(i uint32, v int) error {
		visited = append(visited, v)
		if i == 1 {
			return ErrStopIteration
		}
		return nil
	}))
	assert.Equal(t, []int{2, 3}, visited)

	expectedErr := errors.New("expected")
	assert.Equal(t, expectedErr, instance.Consume(func(uint32, int) error {
		return expectedErr
	}))

	instance.Clear()
	assert.Empty(t, instance.Snapshot())
}

func TestLineBuffer_Write(t *testing.T) {
	instance := NewLineBuffer(3, 10)
	write := func(v ...string) {
		t.Helper()
		toWrite := b(v...)
		n, err := instance.Write(toWrite)
		require.NoError(t, err)
		require.Equal(t, len(toWrite), n)
	}

	write("abc")
	assert.Empty(t, instance.Lines())
	assert.Equal(t, b("abc"), instance.current)

	write("def\n")
	assert.Equal(t, [][]byte{b("abcdef")}, instance.Lines())
	assert.Empty(t, instance.current)

	write("foo\nbar\nxyz")
	assert.Equal(t, [][]byte{b("abcdef"), b("foo"), b("bar")}, instance.Lines())
	assert.Equal(t, b("xyz"), instance.current)

	write("\n")
	assert.Equal(t, [][]byte{b("foo"), b("bar"), b("xyz")}, instance.Lines())

	_, err := instance.Write(b("0123456789abc\n"))
	assert.Equal(t, ErrLineTooLong, err)

	instance.TruncateTooLongLines = true
	write("0123456789abc\n")
	assert.Equal(t, [][]byte{b("bar"), b("xyz"), b("0123456789")}, instance.Lines())

	write("0123456789ab", "cd", "ef\nok\n")
	assert.Equal(t, [][]byte{b("0123456789"), b("0123456789"), b("ok")}, instance.Lines())

	var buf bytes.Buffer
	n, err := instance.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "0123456789\n0123456789\nok\n", buf.String())
	assert.Equal(t, int64(buf.Len()), n)
}

func b(v ...string) []byte {
	return []byte(strings.Join(v, ""))
}
