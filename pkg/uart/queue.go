package uart

import (
	"github.com/robotalks/console.go/pkg/irq"
)

// Queue is the bounded byte queue between the receive interrupt
// handler and the foreground. The contract is single producer,
// single consumer: Put runs only in the interrupt context, Drain
// only in the foreground. Every mutation happens inside the queue's
// critical section and holds it for one operation only.
type Queue struct {
	sec  irq.Section
	buf  []byte
	head int
	size int
}

// NewQueue creates a Queue with a fixed capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{buf: make([]byte, capacity)}
}

// Put appends b and reports success. When the queue is full, b is
// dropped and Put reports false. It never blocks.
func (q *Queue) Put(b byte) (ok bool) {
	q.sec.Do(func() {
		if q.size == len(q.buf) {
			return
		}
		q.buf[(q.head+q.size)%len(q.buf)] = b
		q.size++
		ok = true
	})
	return
}

// Drain moves queued bytes into buf in arrival order, up to
// len(buf), within one critical section. It returns the number of
// bytes moved. A buf at least Cap large empties the queue.
func (q *Queue) Drain(buf []byte) (n int) {
	q.sec.Do(func() {
		for n < len(buf) && q.size > 0 {
			buf[n] = q.buf[q.head]
			q.head = (q.head + 1) % len(q.buf)
			q.size--
			n++
		}
	})
	return
}

// Len gets the number of queued bytes.
func (q *Queue) Len() (n int) {
	q.sec.Do(func() { n = q.size })
	return
}

// Cap gets the fixed capacity.
func (q *Queue) Cap() int {
	return len(q.buf)
}
