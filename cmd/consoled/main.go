package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"

	fx "github.com/robotalks/console.go/pkg/framework"
	"github.com/robotalks/console.go/pkg/sim"
	"github.com/robotalks/console.go/pkg/term"
	"github.com/robotalks/console.go/pkg/wire"
	"github.com/robotalks/console.go/pkg/wire/env/host"
	"github.com/robotalks/console.go/pkg/wire/mqtt"
	"github.com/robotalks/console.go/pkg/wire/serial"
	"github.com/robotalks/console.go/pkg/wire/websocket"
)

var (
	serialConf serial.Config
	listenAddr string
)

func init() {
	host.SetModel("uart", wire.ConsoleMeta{Description: "Hosted UART Console"})
	host.SetupFlags()
	flag.StringVar(&serialConf.Device, "serial", serialConf.Device, "Serial device of a physical console (default: simulate one).")
	flag.IntVar(&serialConf.Baud, "baud", serial.DefaultBaud, "Serial device baud rate.")
	flag.StringVar(&listenAddr, "listen", listenAddr, "Address to serve websocket sessions, e.g. :8087.")
}

func main() {
	flag.Parse()

	conf := host.NewConfig()
	loop := fx.NewLoop()

	var devWire io.ReadWriteCloser
	if serialConf.Device != "" {
		port, err := serial.Open(serialConf)
		if err != nil {
			log.Fatalln(err)
		}
		devWire = port
	} else {
		board := sim.NewBoard()
		con := term.NewConsole(board.NewPort(nil), term.Config{})
		loop.Add(board, con)
		loop.AddController(fx.PrLvCommand, term.HandleLines(func(_ fx.ControlContext, line []byte) {
			switch {
			case len(line) == 0:
			case string(line) == "clear":
				con.Editor().Start()
			default:
				con.Editor().Print(append(append([]byte("echo: "), line...), '\r', '\n'), true)
			}
		}))
		devWire = board.UART.Wire()
	}

	switch {
	case conf.MQTTBrokerURL != "":
		env := conf.MustNewEnv()
		loop.Add(env, wire.NewPump(devWire, env.Registrar.Serial()))
		if listenAddr != "" {
			// Websocket sessions go through the broker so console
			// output still reaches every subscriber.
			connector, err := mqtt.NewConnector(conf.MQTTBrokerURL)
			if err != nil {
				log.Fatalln(err)
			}
			serveWebsocket(websocket.Handler(func() (wire.Session, error) {
				return connector.Attach(context.Background(), conf.Info.Ref)
			}))
		}
	case listenAddr != "":
		// Broker disabled: serve the line directly, one session at
		// a time.
		relay := wire.NewRelay(devWire)
		loop.Add(relay)
		serveWebsocket(websocket.Handler(relay.Attach))
	default:
		log.Fatalln("either an MQTT broker or a websocket listener is required")
	}

	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NamedRun("loop", loop))
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}

func serveWebsocket(h http.Handler) {
	go func() {
		log.Fatalln(http.ListenAndServe(listenAddr, h))
	}()
}
