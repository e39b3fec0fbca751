// Package term implements the interactive console on top of a serial
// port.
package term

// The console models a minimal ANSI terminal session: the near end is
// the serial device, the far end is a terminal emulator operated by a
// human. Input bytes are decoded into editing operations (Decoder),
// applied to the current line (Editor), and echoed back together with
// the control sequences keeping the remote display in sync. Completed
// lines are handed to the controlling loop as messages (Console).
//
// Only a small subset of ANSI sequences is understood and emitted:
// cursor left/right, clear screen, clear to end of line, and the
// red/green/blue text colors. Everything else arriving inside an
// escape sequence is consumed silently.
//
// Producer: serial device (UART driver or a remote transport)
// Consumer: command processors registered on the loop
