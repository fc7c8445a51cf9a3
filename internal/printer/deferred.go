package printer

import (
	"bytes"
	"io"
	"sync"
)

// Deferred is a Printer whose output is held back until Flush, so
// background notices never interleave with an open form. Safe for
// concurrent use.
type Deferred struct {
	*Printer

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewDeferred creates an empty deferred printer.
func NewDeferred() *Deferred {
	d := &Deferred{}
	d.Printer = New(lockedWriter{d})
	return d
}

// Len returns the number of buffered bytes.
func (d *Deferred) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Len()
}

// Flush writes all buffered output to w and clears the buffer.
func (d *Deferred) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.buf.Len() == 0 {
		return nil
	}

	_, err := d.buf.WriteTo(w)
	return err
}

type lockedWriter struct{ d *Deferred }

func (l lockedWriter) Write(p []byte) (int, error) {
	l.d.mu.Lock()
	defer l.d.mu.Unlock()
	return l.d.buf.Write(p)
}
