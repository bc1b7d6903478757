package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes each record as its own YAML document.
type YAMLWriter struct {
	enc  *yaml.Encoder
	docs int
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &YAMLWriter{enc: enc}
}

// Write encodes a record as a document.
func (w *YAMLWriter) Write(data any) error {
	w.docs++
	return w.enc.Encode(data)
}

// Close terminates the document stream. An empty stream writes nothing.
func (w *YAMLWriter) Close() error {
	if w.docs == 0 {
		return nil
	}
	return w.enc.Close()
}
