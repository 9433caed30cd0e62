package ftp

import "io"

// ProgressFunc receives the number of bytes written so far and the size the
// server announced for the file.
type ProgressFunc func(transferred int64, total uint64)

// progressWriter wraps an io.Writer and reports progress via a callback.
type progressWriter struct {
	w        io.Writer
	total    uint64
	written  int64
	callback ProgressFunc
}

func newProgressWriter(w io.Writer, total uint64, fn ProgressFunc) *progressWriter {
	return &progressWriter{w: w, total: total, callback: fn}
}

// Write implements io.Writer.
func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written += int64(n)
	if pw.callback != nil && n > 0 {
		pw.callback(pw.written, pw.total)
	}
	return n, err
}
