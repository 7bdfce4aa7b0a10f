package catalog

import (
	"errors"
	"reflect"
	"testing"

	"fluidnet/internal/domain"
)

func TestReferenceCatalog(t *testing.T) {
	tests := []struct {
		name     string
		inlets   int
		outlets  int
		defaults map[string]string
	}{
		{"Pump", 1, 1, map[string]string{"FlowRate": "0, 1", "PressureHead": "0, 0", "PumpSpeedPct": "100"}},
		{"Resistance", 1, 1, map[string]string{"FlowRate": "0, 1", "PressureDrop": "0, 0"}},
		{"Valve", 1, 1, map[string]string{"FlowRate": "0, 0", "PressureDrop": "0, 1", "ValveOpeningPct": "100"}},
		{"Pipe", 1, 1, map[string]string{"InnerDiameter": "1", "PipeLength": "0"}},
		{"Splitter", 1, 2, map[string]string{}},
		{"Mixer", 2, 1, map[string]string{}},
		{"Reservoir", 1, 1, map[string]string{"PressureConst": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Lookup(tt.name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if spec.Inlets != tt.inlets || spec.Outlets != tt.outlets {
				t.Errorf("expected %d/%d ports, got %d/%d", tt.inlets, tt.outlets, spec.Inlets, spec.Outlets)
			}
			if !reflect.DeepEqual(spec.Defaults(), tt.defaults) {
				t.Errorf("expected defaults %v, got %v", tt.defaults, spec.Defaults())
			}
		})
	}
}

func TestTypesOrder(t *testing.T) {
	want := []string{"Pump", "Resistance", "Valve", "Pipe", "Splitter", "Mixer", "Reservoir"}
	if got := Types(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestLookupUnknownType(t *testing.T) {
	_, err := Lookup("Turbine")
	var ute *domain.UnknownTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("expected UnknownTypeError, got %v", err)
	}
	if ute.Type != "Turbine" {
		t.Errorf("expected type Turbine, got %s", ute.Type)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	spec, _ := Lookup("Pump")
	spec.Parameters[0].Fallback = "mutated"

	again, _ := Lookup("Pump")
	if again.Parameters[0].Fallback != "0, 1" {
		t.Error("expected catalog to be immune to caller mutation")
	}
}

func TestEditable(t *testing.T) {
	for _, name := range []string{"Splitter", "Mixer"} {
		spec, _ := Lookup(name)
		if spec.Editable() {
			t.Errorf("expected %s not to be editable", name)
		}
	}
	spec, _ := Lookup("Reservoir")
	if !spec.Editable() {
		t.Error("expected Reservoir to be editable")
	}
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"duplicate type", "[[types]]\nname = \"A\"\n[[types]]\nname = \"A\"\n"},
		{"duplicate parameter", "[[types]]\nname = \"A\"\n[[types.parameters]]\nid = \"x\"\n[[types.parameters]]\nid = \"x\"\n"},
		{"negative ports", "[[types]]\nname = \"A\"\ninlets = -1\n"},
		{"missing name", "[[types]]\ninlets = 1\n"},
		{"bad toml", "[[types"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.toml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
