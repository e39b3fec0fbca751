package uart

// Defaults for Config zero values.
const (
	DefaultBaudRate    uint32 = 115200
	DefaultWordLength  uint8  = 8
	DefaultInputBuffer        = 80
)

// Config configures a Port. The zero value selects 115200 baud,
// 8 data bits, one stop bit, no parity, FIFOs enabled.
type Config struct {
	// ClockHz is the peripheral clock feeding the baud generator.
	ClockHz uint32
	// BaudRate is the line rate. 0 means 115200.
	BaudRate uint32
	// WordLength is data bits per frame, 5 to 8. 0 means 8.
	WordLength uint8
	// TwoStopBits selects two stop bits instead of one.
	TwoStopBits bool
	// Parity enables the parity bit.
	Parity bool
	// NoFIFO disables the hardware FIFOs (character mode).
	NoFIFO bool
	// InputBuffer is the input queue capacity, sized to the longest
	// line the console accepts. 0 means DefaultInputBuffer.
	InputBuffer int
}

func (c *Config) baudRate() uint32 {
	if c.BaudRate == 0 {
		return DefaultBaudRate
	}
	return c.BaudRate
}

func (c *Config) wordLength() uint8 {
	if c.WordLength == 0 {
		return DefaultWordLength
	}
	return c.WordLength
}

func (c *Config) inputBuffer() int {
	if c.InputBuffer == 0 {
		return DefaultInputBuffer
	}
	return c.InputBuffer
}
