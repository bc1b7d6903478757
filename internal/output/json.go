package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSONWriter buffers records and writes them on Close: a single record as
// an object, several as an array.
type JSONWriter struct {
	w      *bufio.Writer
	pretty bool
	indent string
	items  []any
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		pretty: pretty,
		indent: indent,
	}
}

// Write buffers a record.
func (w *JSONWriter) Write(data any) error {
	w.items = append(w.items, data)
	return nil
}

// Close writes the buffered records. Nothing is written when none were
// buffered.
func (w *JSONWriter) Close() error {
	if len(w.items) == 0 {
		return nil
	}
	var v any = w.items
	if len(w.items) == 1 {
		v = w.items[0]
	}

	var out []byte
	var err error
	if w.pretty {
		out, err = json.MarshalIndent(v, "", w.indent)
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	w.items = nil

	if _, err := w.w.Write(append(out, '\n')); err != nil {
		return err
	}
	return w.w.Flush()
}

// JSONLWriter writes one JSON record per line as records arrive.
type JSONLWriter struct {
	enc *json.Encoder
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{enc: enc}
}

// Write writes a record as a line.
func (w *JSONLWriter) Write(data any) error {
	return w.enc.Encode(data)
}

// Close is a no-op; lines are written immediately.
func (w *JSONLWriter) Close() error {
	return nil
}
