package mqtt

import (
	"io"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/robotalks/console.go/pkg/wire"
)

// Stream is a byte stream over a pair of topics. Reads deliver the
// payloads received on the sub topic, writes publish to the pub
// topic. It serves as the console serial line on the hosting side and
// as the Session on the client side.
type Stream struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	sub       *Subscription
	dataCh    chan []byte
	done      chan struct{}
	closeOnce sync.Once
	left      []byte
}

// NewStream creates a Stream and subscribes the sub topic.
func NewStream(q *Queue, subTopic, pubTopic string) *Stream {
	s := &Stream{
		Queue:    q,
		SubTopic: subTopic,
		PubTopic: pubTopic,
		dataCh:   make(chan []byte, 16),
		done:     make(chan struct{}),
	}
	s.sub = q.Sub(subTopic, s.handleMsg)
	return s
}

// NewConsoleStream creates the hosting side stream of a console:
// keystrokes arrive on rx, display output is published on tx.
func NewConsoleStream(q *Queue, ref wire.ConsoleRef) *Stream {
	name := ref.Name()
	return NewStream(q, name+"/rx", name+"/tx")
}

// NewSessionStream creates the client side stream of a console:
// display output arrives on tx, keystrokes are published on rx.
func NewSessionStream(q *Queue, ref wire.ConsoleRef) *Stream {
	name := ref.Name()
	return NewStream(q, name+"/tx", name+"/rx")
}

// Read implements Reader.
func (s *Stream) Read(p []byte) (int, error) {
	if len(s.left) == 0 {
		select {
		case data := <-s.dataCh:
			s.left = data
		case <-s.done:
			return 0, io.EOF
		}
	}
	n := copy(p, s.left)
	s.left = s.left[n:]
	return n, nil
}

// Write implements Writer. Bytes written while the broker link is
// down are dropped, the way a serial line loses bytes with no cable
// attached.
func (s *Stream) Write(p []byte) (int, error) {
	// The payload is referenced after Write returns.
	data := make([]byte, len(p))
	copy(data, p)
	token := s.Queue.Pub(s.PubTopic, data)
	token.Wait()
	if err := token.Error(); err != nil && err != paho.ErrNotConnected {
		return 0, err
	}
	return len(p), nil
}

// Close implements Closer. It unsubscribes and unblocks pending reads
// with EOF.
func (s *Stream) Close() (err error) {
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.sub.Close()
	})
	return
}

func (s *Stream) handleMsg(_ string, payload []byte) {
	data := make([]byte, len(payload))
	copy(data, payload)
	select {
	case s.dataCh <- data:
	case <-s.done:
	}
}
