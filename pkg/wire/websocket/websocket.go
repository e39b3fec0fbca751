// Package websocket serves and attaches console sessions over
// websockets.
package websocket

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/net/websocket"

	"github.com/robotalks/console.go/pkg/wire"
)

// Dial attaches to a console served at a websocket URL.
func Dial(wsURL, origin string) (wire.Session, error) {
	if origin == "" {
		origin = "http://localhost/"
	}
	conn, err := websocket.Dial(wsURL, "", origin)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}

// Connector implements wire.Connector over a console served directly
// at a websocket endpoint, with no registry in between.
type Connector struct {
	URL    string
	Origin string

	host string
}

// NewConnector creates a Connector for the endpoint URL.
func NewConnector(wsURL string) (*Connector, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid websocket URL %q", wsURL)
	}
	return &Connector{URL: wsURL, host: u.Host}, nil
}

// Discover implements Connector. The endpoint serves exactly one
// console, so that one is the result.
func (c *Connector) Discover(ctx context.Context) ([]wire.ConsoleInfo, error) {
	return []wire.ConsoleInfo{
		{Ref: wire.ConsoleRef{Model: "ws", ID: c.host}},
	}, nil
}

// Attach implements Connector. The ref does not select here, the
// endpoint already names the console.
func (c *Connector) Attach(ctx context.Context, ref wire.ConsoleRef) (wire.Session, error) {
	return Dial(c.URL, c.Origin)
}

// Handler creates an http.Handler bridging each websocket connection
// to the console serial line opened by attach, commonly a Relay.
func Handler(attach func() (wire.Session, error)) http.Handler {
	return websocket.Server{Handler: func(conn *websocket.Conn) {
		conn.PayloadType = websocket.BinaryFrame
		dev, err := attach()
		if err != nil {
			io.WriteString(conn, err.Error()+"\r\n")
			conn.Close()
			return
		}
		wire.NewPump(dev, conn).Run(context.Background())
	}}
}
