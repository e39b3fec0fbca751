package term

import "io"

// MaxLineLength is the maximum number of characters on one input
// line. Insertions beyond it are silently ignored.
const MaxLineLength = 80

// Port is the transmit side of the serial device the editor renders
// to.
type Port interface {
	io.Writer
	io.ByteWriter
}

// Editor implements line editing for an ANSI terminal attached to the
// far end of a serial port. It keeps the current line and cursor
// position, applies decoded operations and emits the echo and control
// bytes keeping the remote display in sync.
type Editor struct {
	out     Port
	decoder Decoder
	line    []byte
	cursor  int
	banner  []byte
	prompt  []byte
	color   Color
}

// NewEditor creates an Editor rendering to out.
func NewEditor(out Port, banner, prompt string, color Color) *Editor {
	return &Editor{
		out:    out,
		line:   make([]byte, 0, MaxLineLength),
		banner: []byte(banner),
		prompt: []byte(prompt),
		color:  color,
	}
}

// Start renders the startup screen: cleared display, then banner and
// prompt in color.
func (e *Editor) Start() {
	e.ClearScreen()
	e.Print(e.banner, true)
	e.Print(e.prompt, true)
}

// Feed processes a chunk of input bytes and returns the lines
// committed by them, oldest first. Returned lines do not alias the
// internal buffer.
func (e *Editor) Feed(data []byte) (lines [][]byte) {
	for _, b := range data {
		k := e.decoder.Decode(b)
		switch k.Op {
		case OpInsert:
			e.insertChar(k.Char)
		case OpSpace:
			e.space()
		case OpBackspace:
			e.backspace()
		case OpCursorLeft:
			e.cursorLeft()
		case OpCursorRight:
			e.cursorRight()
		case OpCommit:
			lines = append(lines, e.commit())
		}
	}
	return
}

// Line gets the content of the current line.
func (e *Editor) Line() []byte {
	return e.line
}

// Cursor gets the cursor position on the current line.
func (e *Editor) Cursor() int {
	return e.cursor
}

// Print writes s to the terminal. With colored set, s is wrapped in
// the configured color. Text formatting is reset afterwards either
// way.
func (e *Editor) Print(s []byte, colored bool) {
	if colored {
		e.escape()
		e.write(e.color.code())
	}
	e.write(s)
	e.control(ctrlResetFormat)
}

// ClearScreen wipes the remote display and drops the current line.
func (e *Editor) ClearScreen() {
	e.control(ctrlClearScreen)
	e.control(ctrlCursorHome)
	e.cursor = 0
	e.line = e.line[:0]
}

func (e *Editor) commit() []byte {
	line := make([]byte, len(e.line))
	copy(line, e.line)
	e.newline()
	e.line = e.line[:0]
	return line
}

// insertChar echoes the inserted character only. Characters inserted
// in the middle of the line leave the remote display untouched beyond
// the cursor.
func (e *Editor) insertChar(b byte) {
	if len(e.line) >= MaxLineLength {
		return
	}
	e.insert(e.cursor, b)
	e.putc(b)
	e.cursor++
}

func (e *Editor) space() {
	if len(e.line) >= MaxLineLength {
		return
	}
	e.insert(e.cursor, codeSpace)
	e.cursorRight()
	e.rewriteLine()
}

func (e *Editor) backspace() {
	if e.cursor == 0 {
		return
	}
	i := e.cursor - 1
	e.line = append(e.line[:i], e.line[i+1:]...)
	e.cursorLeft()
	e.rewriteLine()
}

func (e *Editor) cursorLeft() {
	if e.cursor > 0 {
		e.escape()
		e.putc(codeArrowLeft)
		e.cursor--
	}
}

func (e *Editor) cursorRight() {
	if e.cursor < len(e.line) {
		e.escape()
		e.putc(codeArrowRight)
		e.cursor++
	}
}

// newline moves to a fresh prompt on the next row. The line buffer is
// left to the caller.
func (e *Editor) newline() {
	e.putc(codeCarriageReturn)
	e.putc(codeNewline)
	e.printPrompt()
	e.cursor = 0
}

// clearLine erases the current row and reprints the prompt.
func (e *Editor) clearLine() {
	e.control(ctrlClearToEOL)
	// The carriage return after clear-to-end resets the remote
	// cursor to the start of the row.
	e.putc(codeCarriageReturn)
	e.cursor = 0
	e.printPrompt()
}

// rewriteLine redraws the whole line and moves the cursor back to
// where it was.
func (e *Editor) rewriteLine() {
	orig := e.cursor
	e.clearLine()
	for _, b := range e.line {
		e.cursor++
		e.putc(b)
	}
	for e.cursor > orig {
		e.cursorLeft()
	}
}

func (e *Editor) insert(i int, b byte) {
	e.line = append(e.line, 0)
	copy(e.line[i+1:], e.line[i:])
	e.line[i] = b
}

func (e *Editor) printPrompt() {
	e.Print(e.prompt, true)
}

func (e *Editor) escape() {
	e.putc(codeEscape)
	e.putc(codeLeftBracket)
}

func (e *Editor) control(seq []byte) {
	e.escape()
	e.write(seq)
}

// Port errors are ignored, rendering is best-effort and the line
// state advances regardless.
func (e *Editor) putc(b byte) {
	e.out.WriteByte(b)
}

func (e *Editor) write(p []byte) {
	e.out.Write(p)
}
