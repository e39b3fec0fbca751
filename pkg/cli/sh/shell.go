package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/console.go/pkg/wire"
	env "github.com/robotalks/console.go/pkg/wire/env/client"
	"github.com/robotalks/console.go/pkg/wire/tty"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoAttach  bool

	Shell    *ishell.Shell
	Config   *env.Config
	Attached *Attachment
}

// Attachment is an attached console session. Console output is pulled
// into a buffer so it survives between commands.
type Attachment struct {
	Ref wire.ConsoleRef

	conn      wire.Session
	dataCh    chan []byte
	closing   chan struct{}
	closeOnce sync.Once
	closeErr  error
}

const (
	shellKey         = "$shell"
	unattachedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&AttachCmd,
		&DetachCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unattachedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeAttached wraps command func requires an attached console.
func MustBeAttached(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Attached == nil {
			c.Err(fmt.Errorf("not attached"))
			return
		}
		fn(c)
	}
}

// FormatInfo prints ConsoleInfo into friendly string for display.
func FormatInfo(info wire.ConsoleInfo) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	return w.String()
}

func newAttachment(ref wire.ConsoleRef, conn wire.Session) *Attachment {
	a := &Attachment{
		Ref:     ref,
		conn:    conn,
		dataCh:  make(chan []byte, 64),
		closing: make(chan struct{}),
	}
	go a.pull()
	return a
}

func (a *Attachment) pull() {
	defer close(a.dataCh)
	buf := make([]byte, 512)
	for {
		n, err := a.conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case a.dataCh <- data:
			case <-a.closing:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// Send writes keystrokes to the console.
func (a *Attachment) Send(data []byte) error {
	_, err := a.conn.Write(data)
	return err
}

// Recv collects buffered console output until it stays quiet for wait.
func (a *Attachment) Recv(wait time.Duration) []byte {
	var out []byte
	for {
		select {
		case data, ok := <-a.dataCh:
			if !ok {
				return out
			}
			out = append(out, data...)
		case <-time.After(wait):
			return out
		}
	}
}

// Close implements Closer.
func (a *Attachment) Close() error {
	a.closeOnce.Do(func() {
		close(a.closing)
		a.closeErr = a.conn.Close()
	})
	return a.closeErr
}

// WithAutoAttach sets AutoAttach.
func (s *Shell) WithAutoAttach(en bool) *Shell {
	s.AutoAttach = en
	return s
}

// DiscoverConsoles discovers hosted consoles.
func (s *Shell) DiscoverConsoles(filter func(wire.ConsoleInfo) bool) (wire.Connector, []wire.ConsoleInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, nil, err
	}
	infoList, err := connector.Discover(context.TODO())
	if err != nil {
		return connector, nil, err
	}
	if filter != nil {
		items := make([]wire.ConsoleInfo, 0, len(infoList))
		for _, info := range infoList {
			if filter(info) {
				items = append(items, info)
			}
		}
		infoList = items
	}
	return connector, infoList, nil
}

// SelectConsole discovers consoles and asks for a choice.
func (s *Shell) SelectConsole(filter func(wire.ConsoleInfo) bool) (wire.Connector, *wire.ConsoleInfo, error) {
	connector, infoList, err := s.DiscoverConsoles(filter)
	if err != nil {
		return nil, nil, err
	}
	if len(infoList) == 0 {
		return connector, nil, nil
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, nil, fmt.Errorf("more than 1 consoles discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = info.Ref.Name()
			if info.Meta.Description != "" {
				items[n] += ": " + info.Meta.Description
			}
		}
		index = s.Shell.MultiChoice(items, "Which one to attach?")
	}

	return connector, &infoList[index], nil
}

// Attach attaches the console with ref.
func (s *Shell) Attach(ref wire.ConsoleRef) error {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return err
	}
	conn, err := connector.Attach(context.TODO(), ref)
	if err != nil {
		return err
	}
	if s.Attached != nil {
		s.Attached.Close()
	}
	s.Attached = newAttachment(ref, conn)
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", ref.Name()))
	return nil
}

// Detach detaches current console.
func (s *Shell) Detach() {
	if s.Attached != nil {
		s.Attached.Close()
		s.Attached = nil
		s.Shell.SetPrompt(unattachedPrompt)
	}
}

// Bridge connects the attached console to the process terminal until
// Ctrl-] is typed. The session stays attached.
func (s *Shell) Bridge() error {
	a := s.Attached
	if a == nil {
		return fmt.Errorf("not attached")
	}
	restore, err := tty.MakeRaw()
	if err != nil {
		return err
	}
	defer restore()

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	go func() {
		defer close(doneCh)
		for {
			select {
			case data, ok := <-a.dataCh:
				if !ok {
					return
				}
				os.Stdout.Write(data)
			case <-stopCh:
				return
			}
		}
	}()

	in := wire.NewDetachReader(tty.Stdio{})
	buf := make([]byte, 512)
	for {
		n, rerr := in.Read(buf)
		if n > 0 {
			if err = a.Send(buf[:n]); err != nil {
				break
			}
		}
		if rerr != nil {
			if rerr != io.EOF {
				err = rerr
			}
			break
		}
	}
	close(stopCh)
	<-doneCh
	return err
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoAttach && s.Config.Ref.IsValid() {
		if s.Interactive {
			s.Shell.Printf("Attaching %s ...\n", s.Config.Ref.Name())
		}
		if err := s.Attach(s.Config.Ref); err != nil {
			log.Fatalf("attach %q failed: %v", s.Config.Ref.Name(), err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// DiscoverCmd discovers hosted consoles.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			_, infoList, err := s.DiscoverConsoles(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if len(infoList) == 0 {
					// in case infoList is nil, make it empty slice.
					infoList = []wire.ConsoleInfo{}
				}
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No consoles found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// AttachCmd attaches a console.
	AttachCmd = ishell.Cmd{
		Name:    "attach",
		Aliases: []string{"a"},
		Help:    "MODEL ID",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var ref wire.ConsoleRef
			if len(c.Args) >= 2 {
				ref.Model, ref.ID = c.Args[0], c.Args[1]
			} else {
				var filter func(wire.ConsoleInfo) bool
				if len(c.Args) == 1 {
					filter = func(info wire.ConsoleInfo) bool {
						return info.Ref.Model == c.Args[0]
					}
				}
				_, info, err := s.SelectConsole(filter)
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(fmt.Errorf("no console discovered"))
					return
				}
				ref = info.Ref
			}
			if err := s.Attach(ref); err != nil {
				c.Err(err)
				return
			}
			if s.Interactive {
				c.Println("Type Ctrl-] to detach.")
				if err := s.Bridge(); err != nil {
					c.Err(err)
					return
				}
				c.Println()
			}
		},
	}

	// DetachCmd detaches current console.
	DetachCmd = ishell.Cmd{
		Name:    "detach",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Detach()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoAttach(true).Run(flag.Args()...)
}
