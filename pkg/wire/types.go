package wire

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ConsoleRef is a reference to a hosted console.
type ConsoleRef struct {
	// Model is the device model hosting the console.
	Model string
	// ID is the unique ID of the device.
	ID string
}

// Name retrieves the name from ref.
func (r ConsoleRef) Name() string {
	return r.Model + "/" + r.ID
}

// IsValid indicates ConsoleRef is valid.
func (r ConsoleRef) IsValid() bool {
	return r.Model != "" && r.ID != ""
}

// ParseRef parses "model/id" into a ConsoleRef.
func ParseRef(s string) (ConsoleRef, error) {
	items := strings.Split(s, "/")
	if len(items) != 2 {
		return ConsoleRef{}, fmt.Errorf("invalid console ref %q", s)
	}
	ref := ConsoleRef{Model: items[0], ID: items[1]}
	if !ref.IsValid() {
		return ConsoleRef{}, fmt.Errorf("invalid console ref %q", s)
	}
	return ref, nil
}

// ConsoleMeta provides metadata of a hosted console.
type ConsoleMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ConsoleInfo provides information of a hosted console.
type ConsoleInfo struct {
	Ref  ConsoleRef
	Meta ConsoleMeta
}

// Session is an attached console session. Reads deliver the console
// display output, writes send keystrokes to the console.
type Session interface {
	io.ReadWriteCloser
}

// Connector is used by clients to reach hosted consoles.
type Connector interface {
	// Discover enumerates hosted consoles.
	Discover(context.Context) ([]ConsoleInfo, error)
	// Attach opens a session on the specified console.
	Attach(context.Context, ConsoleRef) (Session, error)
}
