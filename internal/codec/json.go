package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"fluidnet/internal/domain"
)

// JSONCodec handles the solve request wire format
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the MIME type of exports
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Parse reads one request-shaped diagram. Content after it is an error.
func (c *JSONCodec) Parse(r io.Reader) (domain.Diagram, error) {
	dec := json.NewDecoder(r)
	var d domain.Diagram
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("failed to parse JSON: unexpected content after diagram")
	}
	return normalize(d), nil
}

// Export writes the diagram as an indented request body
func (c *JSONCodec) Export(d domain.Diagram, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(normalize(d)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
