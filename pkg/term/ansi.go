package term

import "fmt"

// ASCII codes the console reacts on.
const (
	codeBackspace      byte = 0x08
	codeNewline        byte = 0x0a
	codeCarriageReturn byte = 0x0d
	codeEscape         byte = 0x1b
	codeSpace          byte = 0x20
	codeArrowRight     byte = 0x43
	codeArrowLeft      byte = 0x44
	codeLeftBracket    byte = 0x5b
	codeDelete         byte = 0x7f
)

// Range of printable characters accepted into the line.
const (
	codePrintableMin byte = 0x21
	codePrintableMax byte = 0x7e
)

// ANSI control sequences, sent after ESC '['.
var (
	ctrlClearToEOL  = []byte("0K")
	ctrlClearScreen = []byte("2J")
	ctrlCursorHome  = []byte("H")
	ctrlResetFormat = []byte("0m")
)

// Color selects the ANSI color applied to prompt and banner text.
type Color int

const (
	// ColorBlue renders text in blue. It is the default.
	ColorBlue Color = iota
	// ColorRed renders text in red.
	ColorRed
	// ColorGreen renders text in green.
	ColorGreen
)

// SGR codes selecting colors, sent after ESC '['.
var (
	sgrRed   = []byte("31m")
	sgrGreen = []byte("32m")
	sgrBlue  = []byte("34m")
)

func (c Color) code() []byte {
	switch c {
	case ColorRed:
		return sgrRed
	case ColorGreen:
		return sgrGreen
	}
	return sgrBlue
}

// String implements Stringer.
func (c Color) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	}
	return "blue"
}

// ParseColor maps a color name to a Color.
func ParseColor(name string) (Color, error) {
	switch name {
	case "blue":
		return ColorBlue, nil
	case "red":
		return ColorRed, nil
	case "green":
		return ColorGreen, nil
	}
	return ColorBlue, fmt.Errorf("unknown color %q", name)
}
