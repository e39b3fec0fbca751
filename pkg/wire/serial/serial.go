// Package serial opens physical serial devices as console lines.
package serial

import (
	"io"

	"github.com/tarm/serial"
)

// Config specifies the serial device.
type Config struct {
	Device string
	Baud   int
}

// DefaultBaud matches the default baud rate of the UART driver.
const DefaultBaud = 115200

// Open opens the device as a raw byte stream.
func Open(conf Config) (io.ReadWriteCloser, error) {
	if conf.Baud == 0 {
		conf.Baud = DefaultBaud
	}
	port, err := serial.OpenPort(&serial.Config{Name: conf.Device, Baud: conf.Baud})
	if err != nil {
		return nil, err
	}
	return port, nil
}
