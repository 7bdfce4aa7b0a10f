package codec

import (
	"encoding/xml"
	"fmt"
	"io"

	"fluidnet/internal/domain"
)

// XMLCodec renders the tag-based diagnostic form:
//
//	<diagram>
//	  <component id="Pump1" type="Pump">
//	    <param name="FlowRate" value="0, 1"/>
//	    <connection from="Pump1.Outlet1" to="Reservoir2.Inlet1"/>
//	  </component>
//	</diagram>
type XMLCodec struct{}

// NewXMLCodec creates a new XML codec
func NewXMLCodec() *XMLCodec {
	return &XMLCodec{}
}

// Format returns the codec format identifier
func (c *XMLCodec) Format() string {
	return "xml"
}

// ContentType returns the MIME type of exports
func (c *XMLCodec) ContentType() string {
	return "application/xml"
}

type xmlDiagram struct {
	XMLName    xml.Name       `xml:"diagram"`
	Components []xmlComponent `xml:"component"`
}

type xmlComponent struct {
	ID          string          `xml:"id,attr"`
	Type        string          `xml:"type,attr"`
	Params      []xmlParam      `xml:"param"`
	Connections []xmlConnection `xml:"connection"`
}

type xmlParam struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type xmlConnection struct {
	From string `xml:"from,attr"`
	To   string `xml:"to,attr"`
}

// Parse reads the tag-based form back into a diagram
func (c *XMLCodec) Parse(r io.Reader) (domain.Diagram, error) {
	var xd xmlDiagram
	if err := xml.NewDecoder(r).Decode(&xd); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	d := make(domain.Diagram, len(xd.Components))
	for _, xc := range xd.Components {
		comp := domain.Component{
			ID:         xc.ID,
			Type:       xc.Type,
			Parameters: make(map[string]string, len(xc.Params)),
		}
		for _, p := range xc.Params {
			comp.Parameters[p.Name] = p.Value
		}
		for _, xconn := range xc.Connections {
			comp.Connections = append(comp.Connections, domain.Connection{From: xconn.From, To: xconn.To})
		}
		d[xc.ID] = comp
	}
	return normalize(d), nil
}

// Export writes the tag-based form, components ordered by id
func (c *XMLCodec) Export(d domain.Diagram, w io.Writer) error {
	xd := xmlDiagram{Components: make([]xmlComponent, 0, len(d))}
	for _, id := range sortedIDs(d) {
		comp := d[id]
		xc := xmlComponent{ID: id, Type: comp.Type}
		for _, k := range sortedKeys(comp.Parameters) {
			xc.Params = append(xc.Params, xmlParam{Name: k, Value: comp.Parameters[k]})
		}
		for _, conn := range comp.Connections {
			xc.Connections = append(xc.Connections, xmlConnection{From: conn.From, To: conn.To})
		}
		xd.Components = append(xd.Components, xc)
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(&xd); err != nil {
		return fmt.Errorf("failed to encode XML: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to encode XML: %w", err)
	}
	return nil
}
