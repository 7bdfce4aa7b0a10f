// Package codec converts diagrams to and from text formats.
//
// The JSON codec produces exactly the solve request body. YAML and the
// tag-based XML rendering are diagnostic exports and are not sent to the
// solver.
package codec

import (
	"fmt"
	"io"
	"sort"

	"fluidnet/internal/domain"
)

// Importer parses a diagram from a format
type Importer interface {
	Parse(r io.Reader) (domain.Diagram, error)
	Format() string
}

// Exporter writes a diagram in a format
type Exporter interface {
	Export(d domain.Diagram, w io.Writer) error
	Format() string
	ContentType() string
}

// Codec is both an importer and an exporter
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec registered for format
func ForFormat(format string) (Codec, error) {
	switch format {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "xml":
		return NewXMLCodec(), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// Formats lists the supported format identifiers
func Formats() []string {
	return []string{"json", "yaml", "xml"}
}

func sortedIDs(d domain.Diagram) []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalize fills ids from map keys and replaces nil collections
func normalize(d domain.Diagram) domain.Diagram {
	out := make(domain.Diagram, len(d))
	for id, c := range d {
		c.ID = id
		if c.Parameters == nil {
			c.Parameters = map[string]string{}
		}
		if c.Connections == nil {
			c.Connections = []domain.Connection{}
		}
		out[id] = c
	}
	return out
}
