package output

import (
	"fmt"
	"io"
	"strings"
)

// TextWriter writes records for humans. Records implementing fmt.Stringer
// are written with String; anything else with %+v. Records are separated
// by a blank line.
type TextWriter struct {
	w       io.Writer
	written int
}

// NewTextWriter creates a text writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// Write writes a record.
func (w *TextWriter) Write(data any) error {
	var s string
	if str, ok := data.(fmt.Stringer); ok {
		s = str.String()
	} else {
		s = fmt.Sprintf("%+v", data)
	}
	if w.written > 0 {
		if _, err := io.WriteString(w.w, "\n"); err != nil {
			return err
		}
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	w.written++
	_, err := io.WriteString(w.w, s)
	return err
}

// Close is a no-op.
func (w *TextWriter) Close() error {
	return nil
}
