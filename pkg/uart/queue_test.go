package uart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue(8)
	for _, b := range []byte("abcde") {
		require.True(t, q.Put(b))
	}
	require.Equal(t, 5, q.Len())
	buf := make([]byte, 8)
	n := q.Drain(buf)
	require.Equal(t, []byte("abcde"), buf[:n])
	require.Zero(t, q.Len())
}

func TestQueueDropWhenFull(t *testing.T) {
	q := NewQueue(4)
	for _, b := range []byte("wxyz") {
		require.True(t, q.Put(b))
	}
	require.False(t, q.Put('!'))
	require.Equal(t, 4, q.Len())
	buf := make([]byte, 4)
	require.Equal(t, 4, q.Drain(buf))
	require.Equal(t, []byte("wxyz"), buf)
}

func TestQueueDrainPartial(t *testing.T) {
	q := NewQueue(8)
	for _, b := range []byte("abcdef") {
		require.True(t, q.Put(b))
	}
	buf := make([]byte, 4)
	require.Equal(t, 4, q.Drain(buf))
	require.Equal(t, []byte("abcd"), buf)
	require.Equal(t, 2, q.Len())
	require.Equal(t, 2, q.Drain(buf))
	require.Equal(t, []byte("ef"), buf[:2])
}

func TestQueueWrapAround(t *testing.T) {
	q := NewQueue(4)
	buf := make([]byte, 4)
	require.True(t, q.Put('a'))
	require.True(t, q.Put('b'))
	require.Equal(t, 2, q.Drain(buf))
	for _, b := range []byte("cdef") {
		require.True(t, q.Put(b))
	}
	require.Equal(t, 4, q.Drain(buf))
	require.Equal(t, []byte("cdef"), buf)
}

func TestQueueConcurrent(t *testing.T) {
	q := NewQueue(16)
	const total = 4096
	expect := make([]byte, total)
	for i := range expect {
		expect[i] = byte(i)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, b := range expect {
			for !q.Put(b) {
				time.Sleep(time.Microsecond)
			}
		}
	}()
	var got []byte
	buf := make([]byte, 16)
	deadline := time.Now().Add(5 * time.Second)
	for len(got) < total {
		if n := q.Drain(buf); n > 0 {
			got = append(got, buf[:n]...)
		}
		require.True(t, time.Now().Before(deadline), "drain timeout")
	}
	<-done
	require.Equal(t, expect, got)
}
