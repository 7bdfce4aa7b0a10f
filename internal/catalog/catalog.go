// Package catalog holds the static registry of component types.
//
// The reference catalog is embedded as TOML and decoded once at package
// initialization. A malformed catalog panics at startup so that no diagram
// operation can run against a partial registry.
package catalog

import (
	_ "embed"
	"fmt"

	"fluidnet/internal/domain"

	"github.com/BurntSushi/toml"
)

//go:embed catalog.toml
var referenceTOML []byte

type catalogFile struct {
	Types []domain.ComponentTypeSpec `toml:"types"`
}

// Catalog is an immutable lookup table of component types
type Catalog struct {
	order []string
	specs map[string]domain.ComponentTypeSpec
}

var reference = mustParse(referenceTOML)

// Default returns the reference catalog
func Default() *Catalog {
	return reference
}

// Lookup returns the reference catalog's spec for typeName
func Lookup(typeName string) (domain.ComponentTypeSpec, error) {
	return reference.Lookup(typeName)
}

// Types returns the reference catalog's type names in catalog order
func Types() []string {
	return reference.Types()
}

// Parse decodes a TOML catalog and validates it
func Parse(data []byte) (*Catalog, error) {
	var cf catalogFile
	if err := toml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(cf.Types)
}

// New builds a catalog from specs, rejecting duplicate type names, duplicate
// parameter ids within a type and negative port counts
func New(specs []domain.ComponentTypeSpec) (*Catalog, error) {
	c := &Catalog{
		order: make([]string, 0, len(specs)),
		specs: make(map[string]domain.ComponentTypeSpec, len(specs)),
	}
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("catalog entry without a name")
		}
		if _, dup := c.specs[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate component type %q", spec.Name)
		}
		if spec.Inlets < 0 || spec.Outlets < 0 {
			return nil, fmt.Errorf("component type %q: negative port count", spec.Name)
		}
		seen := make(map[string]bool, len(spec.Parameters))
		for _, p := range spec.Parameters {
			if p.ID == "" {
				return nil, fmt.Errorf("component type %q: parameter without id", spec.Name)
			}
			if seen[p.ID] {
				return nil, fmt.Errorf("component type %q: duplicate parameter %q", spec.Name, p.ID)
			}
			seen[p.ID] = true
		}
		if spec.Parameters == nil {
			spec.Parameters = []domain.ParameterSpec{}
		}
		c.order = append(c.order, spec.Name)
		c.specs[spec.Name] = spec
	}
	return c, nil
}

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}

// Lookup returns the spec for typeName or an *domain.UnknownTypeError
func (c *Catalog) Lookup(typeName string) (domain.ComponentTypeSpec, error) {
	spec, ok := c.specs[typeName]
	if !ok {
		return domain.ComponentTypeSpec{}, &domain.UnknownTypeError{Type: typeName}
	}
	return cloneSpec(spec), nil
}

// Types returns type names in catalog order
func (c *Catalog) Types() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Specs returns every spec in catalog order
func (c *Catalog) Specs() []domain.ComponentTypeSpec {
	out := make([]domain.ComponentTypeSpec, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, cloneSpec(c.specs[name]))
	}
	return out
}

func cloneSpec(s domain.ComponentTypeSpec) domain.ComponentTypeSpec {
	params := make([]domain.ParameterSpec, len(s.Parameters))
	copy(params, s.Parameters)
	s.Parameters = params
	return s
}
