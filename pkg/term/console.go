package term

import (
	fx "github.com/robotalks/console.go/pkg/framework"
)

// DefaultBanner is displayed once when the console starts.
const DefaultBanner = "╔══════════════════════════╗\r\n" +
	"║       ROBO CONSOLE       ║\r\n" +
	"║  Embedded Serial Console ║\r\n" +
	"╚══════════════════════════╝\r\n"

// DefaultPrompt leads every input line.
const DefaultPrompt = "[ROBO]$ "

// Config defines the look of a console.
type Config struct {
	Banner      string
	Prompt      string
	PromptColor Color
}

// Device is the serial device a console runs on: the rendering side
// plus a non-blocking drain of received input.
type Device interface {
	Port
	// PollInput moves pending input into buf without blocking and
	// returns the number of bytes copied.
	PollInput(buf []byte) int
}

// LineMsg carries one committed input line.
type LineMsg struct {
	Line []byte
}

// NewMessage implements Message.
func (m *LineMsg) NewMessage() fx.Message { return &LineMsg{} }

// Console runs an interactive console over a serial device. On every
// loop iteration it drains pending input, feeds the bytes through the
// line editor and posts a LineMsg for each committed line.
type Console struct {
	editor *Editor
	dev    Device
	buf    []byte
}

// NewConsole creates a Console over dev and renders the startup
// screen. Zero values in conf fall back to the defaults.
func NewConsole(dev Device, conf Config) *Console {
	if conf.Banner == "" {
		conf.Banner = DefaultBanner
	}
	if conf.Prompt == "" {
		conf.Prompt = DefaultPrompt
	}
	ed := NewEditor(dev, conf.Banner, conf.Prompt, conf.PromptColor)
	ed.Start()
	return &Console{
		editor: ed,
		dev:    dev,
		buf:    make([]byte, MaxLineLength),
	}
}

// Editor gets the underlying line editor.
func (c *Console) Editor() *Editor {
	return c.editor
}

// Print writes s to the console display, uncolored.
func (c *Console) Print(s []byte) {
	c.editor.Print(s, false)
}

// AddToLoop implements LoopAdder.
func (c *Console) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvConsole, c)
}

// Control implements Controller.
func (c *Console) Control(ctx fx.ControlContext) error {
	posted := false
	for {
		n := c.dev.PollInput(c.buf)
		if n == 0 {
			break
		}
		for _, line := range c.editor.Feed(c.buf[:n]) {
			ctx.PostMessage(&LineMsg{Line: line})
			posted = true
		}
	}
	if posted {
		// Lines become visible to consumers on the next iteration.
		ctx.TriggerNext()
	}
	return nil
}

// HandleLines creates a controller processing every committed line
// with fn, to be registered at PrLvCommand.
func HandleLines(fn func(fx.ControlContext, []byte)) fx.Controller {
	return fx.ControlFunc(func(ctx fx.ControlContext) error {
		ctx.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
			if m, ok := mc.CurrentMessage().(*LineMsg); ok {
				mc.MessageTaken()
				fn(ctx, m.Line)
			}
		}))
		return nil
	})
}
