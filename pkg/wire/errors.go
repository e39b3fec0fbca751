package wire

import "errors"

var (
	// ErrBusy indicates the console serial line is already attached.
	ErrBusy = errors.New("console busy")
)
