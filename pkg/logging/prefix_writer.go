// SPDX-License-Identifier: Apache-2.0
package logging

import (
	"bytes"
	"io"
	"sync"
)

// PrefixWriter prepends a fixed prefix to every complete line written
// through it. Partial lines are held back until their newline arrives or
// Flush is called.
type PrefixWriter struct {
	mu      sync.Mutex
	prefix  []byte
	out     io.Writer
	pending []byte
}

// NewPrefixWriter creates a new PrefixWriter.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{prefix: []byte(prefix), out: w}
}

// Write implements io.Writer.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	data := append(pw.pending, p...)
	pw.pending = nil

	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		if err := pw.emit(data[:i+1]); err != nil {
			return 0, err
		}
		data = data[i+1:]
	}
	if len(data) > 0 {
		pw.pending = append([]byte(nil), data...)
	}
	return len(p), nil
}

// Flush writes any buffered partial line, prefixed, without adding a newline.
func (pw *PrefixWriter) Flush() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if len(pw.pending) == 0 {
		return nil
	}
	line := pw.pending
	pw.pending = nil
	return pw.emit(line)
}

func (pw *PrefixWriter) emit(line []byte) error {
	buf := make([]byte, 0, len(pw.prefix)+len(line))
	buf = append(buf, pw.prefix...)
	buf = append(buf, line...)
	_, err := pw.out.Write(buf)
	return err
}
