package term

// Decoder decodes raw bytes received from the serial port into line
// editing operations. Escape sequences span multiple bytes and the
// decoder keeps the in-between state, so input may arrive in
// arbitrary chunks.
type Decoder struct {
	state EscapeState
}

// EscapeState indicates the progress of escape sequence decoding.
type EscapeState int

const (
	// EscapeNone means no escape sequence is in progress.
	EscapeNone EscapeState = iota
	// EscapeStarted means an ESC byte was received.
	EscapeStarted
	// EscapeBracket means ESC '[' was received, the final byte of
	// the sequence is expected next.
	EscapeBracket
)

// Op identifies a line editing operation.
type Op int

const (
	// OpNone is decoded from filtered bytes, escape sequence progress
	// and unsupported sequences, which are all consumed silently.
	OpNone Op = iota
	// OpInsert inserts a printable character at the cursor.
	OpInsert
	// OpSpace inserts a space at the cursor.
	OpSpace
	// OpBackspace removes the character left to the cursor.
	OpBackspace
	// OpCursorLeft moves the cursor left.
	OpCursorLeft
	// OpCursorRight moves the cursor right.
	OpCursorRight
	// OpCommit completes the current line.
	OpCommit
)

// Key is the result of decoding one input byte.
type Key struct {
	Op   Op
	Char byte
}

// State gets the current escape sequence state.
func (d *Decoder) State() EscapeState {
	return d.state
}

// Reset abandons the escape sequence in progress.
func (d *Decoder) Reset() {
	d.state = EscapeNone
}

// Decode consumes one byte.
func (d *Decoder) Decode(b byte) (k Key) {
	switch d.state {
	case EscapeStarted:
		if b == codeLeftBracket {
			d.state = EscapeBracket
		} else {
			d.state = EscapeNone
		}
	case EscapeBracket:
		d.state = EscapeNone
		switch b {
		case codeArrowLeft:
			k.Op = OpCursorLeft
		case codeArrowRight:
			k.Op = OpCursorRight
		}
	default:
		switch {
		case b == codeEscape:
			d.state = EscapeStarted
		case b == codeCarriageReturn || b == codeNewline:
			k.Op = OpCommit
		case b == codeBackspace || b == codeDelete:
			k.Op = OpBackspace
		case b == codeSpace:
			k.Op = OpSpace
		case b >= codePrintableMin && b <= codePrintableMax:
			k.Op, k.Char = OpInsert, b
		}
	}
	return
}
