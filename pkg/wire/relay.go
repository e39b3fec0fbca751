package wire

import (
	"context"
	"io"
	"sync"

	fx "github.com/robotalks/console.go/pkg/framework"
)

// Relay owns the serial line of a console device and hands it to one
// session at a time. Output produced while no session is attached is
// buffered, so a later session starts with the pending bytes instead
// of stealing reads from a stale one.
type Relay struct {
	dev    io.ReadWriter
	dataCh chan []byte
	done   chan struct{}

	lock sync.Mutex
	busy bool
}

// NewRelay creates a Relay over the device serial line.
func NewRelay(dev io.ReadWriter) *Relay {
	return &Relay{
		dev:    dev,
		dataCh: make(chan []byte, 64),
		done:   make(chan struct{}),
	}
}

// Run implements Runnable. It keeps draining the device output into
// the buffer.
func (r *Relay) Run(ctx context.Context) error {
	defer close(r.done)
	return fx.RunWithContextCancel(ctx, r.closeDev, func() error {
		buf := make([]byte, 512)
		for {
			n, err := r.dev.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				r.push(data)
			}
			if err != nil {
				return err
			}
		}
	})
}

// AddToLoop implements LoopAdder.
func (r *Relay) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(r)
}

// Attach opens the single session on the device line. A second Attach
// fails with ErrBusy until the first session is closed.
func (r *Relay) Attach() (Session, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.busy {
		return nil, ErrBusy
	}
	r.busy = true
	return &relaySession{relay: r, detach: make(chan struct{})}, nil
}

// push never blocks: when the buffer is full the oldest chunk is
// dropped.
func (r *Relay) push(data []byte) {
	for {
		select {
		case r.dataCh <- data:
			return
		default:
		}
		select {
		case <-r.dataCh:
		default:
		}
	}
}

func (r *Relay) closeDev() {
	if closer, ok := r.dev.(io.Closer); ok {
		closer.Close()
	}
}

func (r *Relay) release() {
	r.lock.Lock()
	r.busy = false
	r.lock.Unlock()
}

type relaySession struct {
	relay  *Relay
	detach chan struct{}
	once   sync.Once
	left   []byte
}

// Read implements Reader.
func (s *relaySession) Read(p []byte) (int, error) {
	if len(s.left) == 0 {
		select {
		case data := <-s.relay.dataCh:
			s.left = data
		case <-s.detach:
			return 0, io.EOF
		case <-s.relay.done:
			return 0, io.EOF
		}
	}
	n := copy(p, s.left)
	s.left = s.left[n:]
	return n, nil
}

// Write implements Writer.
func (s *relaySession) Write(p []byte) (int, error) {
	select {
	case <-s.detach:
		return 0, io.ErrClosedPipe
	default:
	}
	return s.relay.dev.Write(p)
}

// Close implements Closer. The device line stays open for the next
// session.
func (s *relaySession) Close() error {
	s.once.Do(func() {
		close(s.detach)
		s.relay.release()
	})
	return nil
}
