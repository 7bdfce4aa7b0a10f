package domain

// ParameterSpec describes one editable parameter of a component type
type ParameterSpec struct {
	Label    string `json:"label" toml:"label"`
	ID       string `json:"id" toml:"id"`
	Fallback string `json:"fallback" toml:"fallback"`
}

// ComponentTypeSpec is the static description of a component type
type ComponentTypeSpec struct {
	Name       string          `json:"name" toml:"name"`
	Parameters []ParameterSpec `json:"parameters" toml:"parameters"`
	Inlets     int             `json:"inlets" toml:"inlets"`
	Outlets    int             `json:"outlets" toml:"outlets"`
}

// Editable reports whether the type exposes any parameter for editing
func (s ComponentTypeSpec) Editable() bool {
	return len(s.Parameters) > 0
}

// HasParameter reports whether id is declared by the type
func (s ComponentTypeSpec) HasParameter(id string) bool {
	for _, p := range s.Parameters {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Defaults returns a fresh parameter map initialized from fallback values
func (s ComponentTypeSpec) Defaults() map[string]string {
	params := make(map[string]string, len(s.Parameters))
	for _, p := range s.Parameters {
		params[p.ID] = p.Fallback
	}
	return params
}

// Component is a placed instance of a component type
type Component struct {
	ID          string            `json:"-"`
	Type        string            `json:"type"`
	Parameters  map[string]string `json:"parameters"`
	Connections []Connection      `json:"connections"`
}

// Clone returns a deep copy of the component
func (c Component) Clone() Component {
	out := Component{
		ID:          c.ID,
		Type:        c.Type,
		Parameters:  make(map[string]string, len(c.Parameters)),
		Connections: make([]Connection, len(c.Connections)),
	}
	for k, v := range c.Parameters {
		out.Parameters[k] = v
	}
	copy(out.Connections, c.Connections)
	return out
}

// Diagram is the request-shaped mapping of component id to component
type Diagram map[string]Component

// Len returns the number of components in the diagram
func (d Diagram) Len() int {
	return len(d)
}

// ConnectionCount returns the total number of connections across components
func (d Diagram) ConnectionCount() int {
	n := 0
	for _, c := range d {
		n += len(c.Connections)
	}
	return n
}
