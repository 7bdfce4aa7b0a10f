package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PortKind is the direction of a port
type PortKind string

const (
	PortInlet  PortKind = "Inlet"  // connection target
	PortOutlet PortKind = "Outlet" // connection source
)

// Port is a parsed port identifier
type Port struct {
	ComponentID string
	Kind        PortKind
	Index       int // 1-based
}

// ID renders the port identifier
func (p Port) ID() string {
	return PortID(p.ComponentID, p.Kind, p.Index)
}

// PortID builds "{componentID}.{Kind}{n}"
func PortID(componentID string, kind PortKind, n int) string {
	return fmt.Sprintf("%s.%s%d", componentID, kind, n)
}

// OverlayID returns the identifier of the overlay element scoped to a port
func OverlayID(portID string) string {
	return portID + ".Data"
}

// OwnerOf returns the component id that owns portID, or "" if portID has no
// component prefix
func OwnerOf(portID string) string {
	idx := strings.LastIndex(portID, ".")
	if idx <= 0 {
		return ""
	}
	return portID[:idx]
}

// ParsePortID parses a port identifier. Only the canonical form is accepted,
// so "Pump1.Outlet01" is rejected rather than read as "Pump1.Outlet1".
func ParsePortID(s string) (Port, error) {
	owner := OwnerOf(s)
	if owner == "" {
		return Port{}, fmt.Errorf("invalid port id %q", s)
	}
	suffix := s[len(owner)+1:]

	var kind PortKind
	switch {
	case strings.HasPrefix(suffix, string(PortInlet)):
		kind = PortInlet
	case strings.HasPrefix(suffix, string(PortOutlet)):
		kind = PortOutlet
	default:
		return Port{}, fmt.Errorf("invalid port id %q: unknown port kind", s)
	}

	n, err := strconv.Atoi(strings.TrimPrefix(suffix, string(kind)))
	if err != nil || n < 1 {
		return Port{}, fmt.Errorf("invalid port id %q: bad index", s)
	}
	p := Port{ComponentID: owner, Kind: kind, Index: n}
	if p.ID() != s {
		return Port{}, fmt.Errorf("invalid port id %q: not canonical", s)
	}
	return p, nil
}

// Ports lists the port identifiers of a component, split by direction
type Ports struct {
	Inlets  []string `json:"inlets"`
	Outlets []string `json:"outlets"`
}

// PortsFor returns the port identifiers exposed by a component of spec
func PortsFor(componentID string, spec ComponentTypeSpec) Ports {
	ports := Ports{
		Inlets:  make([]string, 0, spec.Inlets),
		Outlets: make([]string, 0, spec.Outlets),
	}
	for i := 1; i <= spec.Inlets; i++ {
		ports.Inlets = append(ports.Inlets, PortID(componentID, PortInlet, i))
	}
	for i := 1; i <= spec.Outlets; i++ {
		ports.Outlets = append(ports.Outlets, PortID(componentID, PortOutlet, i))
	}
	return ports
}

// All returns inlets followed by outlets
func (p Ports) All() []string {
	all := make([]string, 0, len(p.Inlets)+len(p.Outlets))
	all = append(all, p.Inlets...)
	return append(all, p.Outlets...)
}
