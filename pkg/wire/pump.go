package wire

import (
	"bytes"
	"context"
	"io"

	fx "github.com/robotalks/console.go/pkg/framework"
)

// Pump copies bytes both ways between the serial line of a console
// device and a remote session.
type Pump struct {
	// Dev is the device serial line.
	Dev io.ReadWriter
	// Conn is the remote session.
	Conn io.ReadWriter
}

// NewPump creates a Pump.
func NewPump(dev, conn io.ReadWriter) *Pump {
	return &Pump{Dev: dev, Conn: conn}
}

// Run implements Runnable. It returns when either direction stops,
// usually because one side was closed.
func (p *Pump) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, p, func() error {
		errCh := make(chan error, 2)
		go pumpCopy(errCh, p.Dev, p.Conn)
		go pumpCopy(errCh, p.Conn, p.Dev)
		return <-errCh
	})
}

// Close implements Closer. Both ends supporting Close are closed to
// unblock pending reads.
func (p *Pump) Close() error {
	var errs fx.AggregatedError
	if closer, ok := p.Dev.(io.Closer); ok {
		errs.Add(closer.Close())
	}
	if closer, ok := p.Conn.(io.Closer); ok {
		errs.Add(closer.Close())
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (p *Pump) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(p)
}

func pumpCopy(errCh chan<- error, dst io.Writer, src io.Reader) {
	buf := make([]byte, 512)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				errCh <- werr
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

// DefaultDetachByte ends an attached session (Ctrl-]).
const DefaultDetachByte byte = 0x1d

// DetachReader wraps a reader and stops with EOF when the detach byte
// appears in the input. Bytes before the detach byte are delivered.
type DetachReader struct {
	R      io.Reader
	Detach byte
}

// NewDetachReader creates a DetachReader with the default detach byte.
func NewDetachReader(r io.Reader) *DetachReader {
	return &DetachReader{R: r, Detach: DefaultDetachByte}
}

// Read implements Reader.
func (r *DetachReader) Read(p []byte) (int, error) {
	n, err := r.R.Read(p)
	if n > 0 {
		if i := bytes.IndexByte(p[:n], r.Detach); i >= 0 {
			return i, io.EOF
		}
	}
	return n, err
}
