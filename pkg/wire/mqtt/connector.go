package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/robotalks/console.go/pkg/wire"
)

// Connector implements wire.Connector using MQTT.
type Connector struct {
	DiscoverTimeout time.Duration

	options     *paho.ClientOptions
	topicPrefix string
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Connector{
		DiscoverTimeout: DefaultDiscoverTimeout,
		options:         opts,
		topicPrefix:     topicPrefix,
	}, nil
}

// Discover implements Connector. Hosted consoles are found by their
// retained meta announcements.
func (c *Connector) Discover(ctx context.Context) (res []wire.ConsoleInfo, err error) {
	q := NewQueue(c.options, c.topicPrefix)
	q.Connect()
	defer q.Close()
	resCh := make(chan wire.ConsoleInfo, 1)
	q.Sub("+/+/meta", Handler(func(topic string, payload []byte) {
		// An empty retained payload is the tombstone of an
		// unregistered console.
		if len(payload) == 0 {
			return
		}
		items := strings.Split(topic, "/")
		if len(items) != 3 {
			return
		}
		info := wire.ConsoleInfo{Ref: wire.ConsoleRef{Model: items[0], ID: items[1]}}
		json.Unmarshal(payload, &info.Meta)
		select {
		case resCh <- info:
		case <-time.After(time.Second):
		}
	}))

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	for {
		select {
		case info := <-resCh:
			res = append(res, info)
		case <-timeout:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

// Attach implements Connector.
func (c *Connector) Attach(ctx context.Context, ref wire.ConsoleRef) (wire.Session, error) {
	q := NewQueue(c.options, c.topicPrefix)
	token := q.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	return &session{Stream: NewSessionStream(q, ref), queue: q}, nil
}

// session owns the queue created for one attachment.
type session struct {
	*Stream
	queue *Queue
}

// Close implements Closer.
func (s *session) Close() error {
	s.Stream.Close()
	return s.queue.Close()
}
