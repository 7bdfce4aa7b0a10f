// Package diagram implements the live diagram model: the set of placed
// component instances, their identity and parameter defaulting, and the
// connection tracker that rebuilds per-component connection lists from the
// canvas topology.
//
// A Model is not safe for concurrent use. Callers serialize access the way a
// single UI event loop would; see service.Session.
package diagram

import (
	"fmt"
	"sort"

	"fluidnet/internal/domain"
)

// Registry resolves component type names to their specs
type Registry interface {
	Lookup(typeName string) (domain.ComponentTypeSpec, error)
}

// Model is the canonical in-memory diagram
type Model struct {
	registry   Registry
	counter    int
	order      []string
	components map[string]*domain.Component
}

// New creates an empty model backed by registry
func New(registry Registry) *Model {
	return &Model{
		registry:   registry,
		components: make(map[string]*domain.Component),
	}
}

// AddComponent places a new component of typeName. The id is the type name
// followed by a counter shared across all types; ids are never reused.
func (m *Model) AddComponent(typeName string) (domain.Component, domain.Ports, error) {
	spec, err := m.registry.Lookup(typeName)
	if err != nil {
		return domain.Component{}, domain.Ports{}, err
	}

	m.counter++
	id := fmt.Sprintf("%s%d", typeName, m.counter)

	comp := &domain.Component{
		ID:          id,
		Type:        typeName,
		Parameters:  spec.Defaults(),
		Connections: []domain.Connection{},
	}
	m.components[id] = comp
	m.order = append(m.order, id)

	return comp.Clone(), domain.PortsFor(id, spec), nil
}

// DeleteComponent removes a component. Connections referencing it elsewhere
// are dropped by the next Resync.
func (m *Model) DeleteComponent(id string) error {
	if _, ok := m.components[id]; !ok {
		return &domain.NotFoundError{ID: id}
	}
	delete(m.components, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetParameters writes values for keys the component's type declares.
// Unknown keys are ignored and blank values are stored as given.
func (m *Model) SetParameters(id string, values map[string]string) error {
	comp, ok := m.components[id]
	if !ok {
		return &domain.NotFoundError{ID: id}
	}
	spec, err := m.registry.Lookup(comp.Type)
	if err != nil {
		return err
	}
	for _, p := range spec.Parameters {
		if v, ok := values[p.ID]; ok {
			comp.Parameters[p.ID] = v
		}
	}
	return nil
}

// Get returns a copy of the component with id
func (m *Model) Get(id string) (domain.Component, error) {
	comp, ok := m.components[id]
	if !ok {
		return domain.Component{}, &domain.NotFoundError{ID: id}
	}
	return comp.Clone(), nil
}

// Has reports whether a component with id exists
func (m *Model) Has(id string) bool {
	_, ok := m.components[id]
	return ok
}

// Spec returns the type spec of the component with id
func (m *Model) Spec(id string) (domain.ComponentTypeSpec, error) {
	comp, ok := m.components[id]
	if !ok {
		return domain.ComponentTypeSpec{}, &domain.NotFoundError{ID: id}
	}
	return m.registry.Lookup(comp.Type)
}

// HasPort reports whether portID names a port of a live component
func (m *Model) HasPort(portID string) bool {
	p, err := domain.ParsePortID(portID)
	if err != nil {
		return false
	}
	return m.hasPort(p)
}

func (m *Model) hasPort(p domain.Port) bool {
	spec, err := m.Spec(p.ComponentID)
	if err != nil {
		return false
	}
	switch p.Kind {
	case domain.PortInlet:
		return p.Index <= spec.Inlets
	case domain.PortOutlet:
		return p.Index <= spec.Outlets
	}
	return false
}

// IDs returns component ids in creation order
func (m *Model) IDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of live components
func (m *Model) Len() int {
	return len(m.components)
}

// Snapshot returns a deep copy of every component keyed by id
func (m *Model) Snapshot() domain.Diagram {
	d := make(domain.Diagram, len(m.components))
	for id, comp := range m.components {
		d[id] = comp.Clone()
	}
	return d
}

func sortConnections(conns []domain.Connection) {
	sort.Slice(conns, func(i, j int) bool {
		return conns[i].Less(conns[j])
	})
}
