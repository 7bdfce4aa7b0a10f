package codec

import (
	"fmt"
	"io"

	"fluidnet/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the MIME type of exports
func (c *YAMLCodec) ContentType() string {
	return "application/x-yaml"
}

type yamlDiagram struct {
	Components []yamlComponent `yaml:"components"`
}

type yamlComponent struct {
	ID          string            `yaml:"id"`
	Type        string            `yaml:"type"`
	Parameters  map[string]string `yaml:"parameters,omitempty"`
	Connections []yamlConnection  `yaml:"connections,omitempty"`
}

type yamlConnection struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Parse imports a diagram from YAML
func (c *YAMLCodec) Parse(r io.Reader) (domain.Diagram, error) {
	var yd yamlDiagram
	if err := yaml.NewDecoder(r).Decode(&yd); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	d := make(domain.Diagram, len(yd.Components))
	for _, yc := range yd.Components {
		if yc.ID == "" {
			return nil, fmt.Errorf("component of type %q has no id", yc.Type)
		}
		if _, dup := d[yc.ID]; dup {
			return nil, fmt.Errorf("duplicate component id %q", yc.ID)
		}
		comp := domain.Component{
			ID:         yc.ID,
			Type:       yc.Type,
			Parameters: yc.Parameters,
		}
		for _, yconn := range yc.Connections {
			comp.Connections = append(comp.Connections, domain.Connection{From: yconn.From, To: yconn.To})
		}
		d[yc.ID] = comp
	}
	return normalize(d), nil
}

// Export writes the diagram as YAML, components ordered by id
func (c *YAMLCodec) Export(d domain.Diagram, w io.Writer) error {
	yd := yamlDiagram{Components: make([]yamlComponent, 0, len(d))}
	for _, id := range sortedIDs(d) {
		comp := d[id]
		yc := yamlComponent{
			ID:         id,
			Type:       comp.Type,
			Parameters: comp.Parameters,
		}
		for _, conn := range comp.Connections {
			yc.Connections = append(yc.Connections, yamlConnection{From: conn.From, To: conn.To})
		}
		yd.Components = append(yd.Components, yc)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yd); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}
