package utils

import (
	"bytes"
	"io"
)

// DeferredWriter collects one frame of terminal output and hands it to the
// real writer in a single Write on Flush. Not safe for concurrent use.
type DeferredWriter struct {
	buf bytes.Buffer
}

// Write stores data in the internal buffer.
func (d *DeferredWriter) Write(p []byte) (n int, err error) {
	return d.buf.Write(p)
}

// WriteString stores s in the internal buffer.
func (d *DeferredWriter) WriteString(s string) (n int, err error) {
	return d.buf.WriteString(s)
}

// Flush writes all buffered data to w and clears the buffer, even when w
// fails.
func (d *DeferredWriter) Flush(w io.Writer) error {
	if d.buf.Len() == 0 {
		return nil
	}

	_, err := w.Write(d.buf.Bytes())
	d.buf.Reset()
	return err
}
