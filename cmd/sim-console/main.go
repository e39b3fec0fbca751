package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"io"
	"log"

	fx "github.com/robotalks/console.go/pkg/framework"
	"github.com/robotalks/console.go/pkg/sim"
	"github.com/robotalks/console.go/pkg/term"
	"github.com/robotalks/console.go/pkg/wire"
	"github.com/robotalks/console.go/pkg/wire/tty"
)

var (
	promptColor = term.ColorBlue.String()
)

func init() {
	flag.StringVar(&promptColor, "color", promptColor, "Prompt color: red, green or blue.")
}

func main() {
	flag.Parse()

	color, err := term.ParseColor(promptColor)
	if err != nil {
		log.Fatalln(err)
	}
	if !tty.IsTerminal() {
		log.Fatalln("stdin is not a terminal")
	}

	board := sim.NewBoard()
	con := term.NewConsole(board.NewPort(nil), term.Config{
		Banner:      term.DefaultBanner + "Type Ctrl-] to quit.\r\n",
		PromptColor: color,
	})

	loop := fx.NewLoop().Add(board, con)
	loop.AddController(fx.PrLvCommand, term.HandleLines(func(_ fx.ControlContext, line []byte) {
		switch {
		case len(line) == 0:
		case string(line) == "clear":
			con.Editor().Start()
		default:
			con.Editor().Print(append(append([]byte("echo: "), line...), '\r', '\n'), true)
		}
	}))

	restore, err := tty.MakeRaw()
	if err != nil {
		log.Fatalln(err)
	}

	runner := fx.NewRunner().HandleSignals()
	ctx, cancel := context.WithCancel(runner.Context)
	runner.Context = ctx
	runner.Go(fx.NamedRun("loop", loop))

	conn := struct {
		io.Reader
		io.Writer
	}{wire.NewDetachReader(tty.Stdio{}), tty.Stdio{}}
	err = wire.NewPump(board.UART.Wire(), conn).Run(ctx)

	cancel()
	runner.Wait()
	restore()
	if err != nil && err != io.EOF && err != context.Canceled {
		log.Fatalln(err)
	}
}
