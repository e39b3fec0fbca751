package console

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/console.go/pkg/cli/sh"
)

// respWait is how long console output may stay quiet before a
// response is considered complete.
const respWait = 500 * time.Millisecond

var (
	// TermCmd exposes the attached console as an interactive terminal.
	TermCmd = ishell.Cmd{
		Name:    "term",
		Aliases: []string{"t"},
		Help:    "",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			c.Println("Type Ctrl-] to detach.")
			if err := s.Bridge(); err != nil {
				c.Err(err)
				return
			}
			c.Println()
		}),
	}

	// SendCmd sends one input line and prints the response.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "TEXT...",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("TEXT required"))
				return
			}
			s := sh.ShellFrom(c)
			a := s.Attached
			line := strings.Join(c.Args, " ")
			if err := a.Send([]byte(line + "\r")); err != nil {
				c.Err(err)
				return
			}
			printOutput(c, s, a.Recv(respWait))
		}),
	}

	// TailCmd prints console output buffered since the last command.
	TailCmd = ishell.Cmd{
		Name:    "tail",
		Aliases: []string{"r"},
		Help:    "",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			printOutput(c, s, s.Attached.Recv(respWait))
		}),
	}
)

func printOutput(c *ishell.Context, s *sh.Shell, out []byte) {
	if s.OutputJSON {
		encoded, err := json.Marshal(string(out))
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(encoded))
		return
	}
	c.Printf("%s", string(out))
}

func init() {
	sh.AddCmds(
		&TermCmd,
		&SendCmd,
		&TailCmd,
	)
}
