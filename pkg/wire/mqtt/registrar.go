package mqtt

import (
	"context"
	"encoding/json"

	fx "github.com/robotalks/console.go/pkg/framework"
	"github.com/robotalks/console.go/pkg/wire"
)

// Registrar announces a hosted console over MQTT and bridges its
// serial line to remote sessions.
type Registrar struct {
	Queue *Queue
	Info  wire.ConsoleInfo

	metaJSON string
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info wire.ConsoleInfo) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		panic(err)
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+info.Ref.Name()+"/meta", nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("console:" + info.Ref.Name())
	}
	r := &Registrar{
		Queue:    NewQueue(opts, topicPrefix),
		Info:     info,
		metaJSON: string(meta),
	}
	r.Queue.OnConnect = func(*Queue) { r.onConnected() }
	return r, nil
}

// Serial creates the hosting side byte stream of the console.
func (r *Registrar) Serial() *Stream {
	return NewConsoleStream(r.Queue, r.Info.Ref)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(r)
}

// Run implements Runnable. The console is announced while running and
// unregistered on exit.
func (r *Registrar) Run(ctx context.Context) error {
	r.Queue.Connect()
	<-ctx.Done()
	r.Queue.PubWith(r.Info.Ref.Name()+"/meta", nil, 1, true)
	r.Queue.Close()
	return nil
}

func (r *Registrar) onConnected() {
	r.Queue.PubWith(r.Info.Ref.Name()+"/meta", []byte(r.metaJSON), 1, true)
}
