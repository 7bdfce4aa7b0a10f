// Package editor implements the parameter edit session for one component.
//
// The editor is either Closed or Open on a single component id. Opening a
// different component discards the current form without saving; invoking
// Edit again on the open component closes it. Only Save writes to the model.
package editor

import (
	"errors"
	"sort"

	"fluidnet/internal/domain"
)

// ErrNotEditable is returned when a type declares no parameters
var ErrNotEditable = errors.New("component type has no editable parameters")

// ErrNotOpen is returned when saving a component whose form is not open
var ErrNotOpen = errors.New("no edit session open for component")

// Model is the subset of the diagram model the editor needs
type Model interface {
	Get(id string) (domain.Component, error)
	Spec(id string) (domain.ComponentTypeSpec, error)
	SetParameters(id string, values map[string]string) error
}

// Field is one editable input of the open form
type Field struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// State describes the editor for presentation
type State struct {
	Open        bool    `json:"open"`
	ComponentID string  `json:"component_id,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
}

// Editor is the parameter edit state machine
type Editor struct {
	model   Model
	onSaved func(id string)

	openID string
	fields []Field
}

// New creates a closed editor. onSaved, if not nil, runs after every
// successful save; it is used to clear stale result overlays.
func New(model Model, onSaved func(id string)) *Editor {
	return &Editor{model: model, onSaved: onSaved}
}

// Edit opens the form for id, or closes it if it is already open on id
func (e *Editor) Edit(id string) (State, error) {
	if e.openID != "" && e.openID == id {
		e.close()
		return e.State(), nil
	}

	comp, err := e.model.Get(id)
	if err != nil {
		return e.State(), err
	}
	spec, err := e.model.Spec(id)
	if err != nil {
		return e.State(), err
	}
	if !spec.Editable() {
		return e.State(), ErrNotEditable
	}

	// any other open form is discarded, not saved
	e.close()
	e.openID = id
	e.fields = make([]Field, 0, len(spec.Parameters))
	for _, p := range spec.Parameters {
		e.fields = append(e.fields, Field{
			ID:    p.ID,
			Label: p.Label,
			Value: comp.Parameters[p.ID],
		})
	}
	return e.State(), nil
}

// SetField updates a field of the open form. Unknown keys are ignored.
func (e *Editor) SetField(key, value string) bool {
	for i := range e.fields {
		if e.fields[i].ID == key {
			e.fields[i].Value = value
			return true
		}
	}
	return false
}

// SetFields applies SetField for every entry, in key order
func (e *Editor) SetFields(values map[string]string) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.SetField(k, values[k])
	}
}

// Save commits the open form for id to the model and closes the editor
func (e *Editor) Save(id string) error {
	if e.openID != id {
		return ErrNotOpen
	}

	values := make(map[string]string, len(e.fields))
	for _, f := range e.fields {
		values[f.ID] = f.Value
	}
	if err := e.model.SetParameters(id, values); err != nil {
		e.close()
		return err
	}
	e.close()

	if e.onSaved != nil {
		e.onSaved(id)
	}
	return nil
}

// Cancel closes the editor without touching the model
func (e *Editor) Cancel() {
	e.close()
}

// Discard closes the editor only if it is open on id. It reports whether a
// session was dropped.
func (e *Editor) Discard(id string) bool {
	if e.openID != id || id == "" {
		return false
	}
	e.close()
	return true
}

// OpenID returns the component the form is open on, or ""
func (e *Editor) OpenID() string {
	return e.openID
}

// State returns a copy of the editor state
func (e *Editor) State() State {
	if e.openID == "" {
		return State{}
	}
	fields := make([]Field, len(e.fields))
	copy(fields, e.fields)
	return State{Open: true, ComponentID: e.openID, Fields: fields}
}

func (e *Editor) close() {
	e.openID = ""
	e.fields = nil
}
