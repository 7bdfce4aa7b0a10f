package codec

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"fluidnet/internal/catalog"
	"fluidnet/internal/diagram"
	"fluidnet/internal/domain"
)

func sampleDiagram(t *testing.T) domain.Diagram {
	t.Helper()
	m := diagram.New(catalog.Default())
	for _, typ := range []string{"Pump", "Splitter", "Pipe", "Pipe", "Mixer", "Reservoir"} {
		if _, _, err := m.AddComponent(typ); err != nil {
			t.Fatalf("AddComponent(%s): %v", typ, err)
		}
	}
	m.SetParameters("Pump1", map[string]string{"PumpSpeedPct": "75"})
	m.SetParameters("Pipe3", map[string]string{"PipeLength": ""})
	m.Resync([]domain.Connection{
		{From: "Pump1.Outlet1", To: "Splitter2.Inlet1"},
		{From: "Splitter2.Outlet1", To: "Pipe3.Inlet1"},
		{From: "Splitter2.Outlet2", To: "Pipe4.Inlet1"},
		{From: "Pipe3.Outlet1", To: "Mixer5.Inlet1"},
		{From: "Pipe4.Outlet1", To: "Mixer5.Inlet2"},
		{From: "Mixer5.Outlet1", To: "Reservoir6.Inlet1"},
		{From: "Reservoir6.Outlet1", To: "Pump1.Inlet1"},
	})
	return m.Snapshot()
}

func TestRoundTrip(t *testing.T) {
	for _, format := range Formats() {
		t.Run(format, func(t *testing.T) {
			c, err := ForFormat(format)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := sampleDiagram(t)

			var buf bytes.Buffer
			if err := c.Export(want, &buf); err != nil {
				t.Fatalf("export: %v", err)
			}
			got, err := c.Parse(&buf)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch\nwant: %+v\ngot:  %+v", want, got)
			}
		})
	}
}

func TestJSONExportMatchesRequestShape(t *testing.T) {
	d := domain.Diagram{
		"Reservoir1": {Type: "Reservoir", Parameters: map[string]string{"PressureConst": "0"}},
	}
	var buf bytes.Buffer
	if err := NewJSONCodec().Export(d, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{
  "Reservoir1": {
    "type": "Reservoir",
    "parameters": {
      "PressureConst": "0"
    },
    "connections": []
  }
}
`
	if buf.String() != want {
		t.Errorf("expected\n%s\ngot\n%s", want, buf.String())
	}
}

func TestXMLExport(t *testing.T) {
	d := domain.Diagram{
		"Pump1": {
			Type:        "Pump",
			Parameters:  map[string]string{"FlowRate": "0, 1"},
			Connections: []domain.Connection{{From: "Pump1.Outlet1", To: "Reservoir2.Inlet1"}},
		},
		"Splitter3": {Type: "Splitter"},
	}
	var buf bytes.Buffer
	if err := NewXMLCodec().Export(d, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, fragment := range []string{
		"<diagram>",
		`<component id="Pump1" type="Pump">`,
		`<param name="FlowRate" value="0, 1"></param>`,
		`<connection from="Pump1.Outlet1" to="Reservoir2.Inlet1"></connection>`,
		`<component id="Splitter3" type="Splitter"></component>`,
		"</diagram>",
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("expected output to contain %q\n%s", fragment, out)
		}
	}
	if strings.Index(out, "Pump1") > strings.Index(out, "Splitter3") {
		t.Error("expected components ordered by id")
	}
}

func TestYAMLParseRejectsDuplicates(t *testing.T) {
	in := "components:\n  - id: Pump1\n    type: Pump\n  - id: Pump1\n    type: Pump\n"
	if _, err := NewYAMLCodec().Parse(strings.NewReader(in)); err == nil {
		t.Error("expected duplicate id error")
	}
}

func TestForFormatUnknown(t *testing.T) {
	if _, err := ForFormat("csv"); err == nil {
		t.Error("expected error for csv")
	}
}

func TestJSONParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
		wantLen int
	}{
		{"empty object", `{}`, false, 0},
		{"null is an empty diagram", `null`, false, 0},
		{"one component", `{"Pipe1":{"type":"Pipe","parameters":{},"connections":[]}}`, false, 1},
		{"trailing content", `{} {}`, true, 0},
		{"not json", `<diagram/>`, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewJSONCodec().Parse(strings.NewReader(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if err == nil && len(d) != tt.wantLen {
				t.Errorf("expected %d components, got %d", tt.wantLen, len(d))
			}
		})
	}
}
