package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"fluidnet/internal/canvas"
	"fluidnet/internal/catalog"
	"fluidnet/internal/codec"
	"fluidnet/internal/diagram"
	"fluidnet/internal/domain"
	"fluidnet/internal/editor"
	"fluidnet/internal/notify"
	"fluidnet/internal/overlay"
	"fluidnet/internal/repository"
	"fluidnet/internal/solver"
)

// Solver sends an encoded solve request. *solver.Client implements it.
type Solver interface {
	SolveRaw(ctx context.Context, body []byte) (*domain.SolveResponse, error)
}

// Registry lists and resolves component types. *catalog.Catalog implements it.
type Registry interface {
	diagram.Registry
	Types() []string
}

// Options configures a Session
type Options struct {
	Registry       Registry                // nil selects the reference catalog
	Solver         Solver                  // nil reports every solve as unreachable
	Journal        repository.SolveJournal // optional
	Bus            *EventBus               // optional
	NotifyDuration time.Duration           // zero selects notify.DefaultDuration
}

// SolveReport describes one finished solve attempt
type SolveReport struct {
	ID         string         `json:"id"`
	Outcome    solver.Outcome `json:"outcome"`
	Diagram    domain.Diagram `json:"diagram"`
	Overlays   int            `json:"overlays"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Session owns one diagram and the components attached to it
type Session struct {
	mu sync.Mutex

	registry Registry
	model    *diagram.Model
	canvas   *canvas.Graph
	editor   *editor.Editor
	overlays *overlay.Renderer
	notifier *notify.Presenter

	solver  Solver
	journal repository.SolveJournal
	bus     *EventBus

	last *SolveReport
	now  func() time.Time
}

// NewSession creates an empty diagram session
func NewSession(opts Options) *Session {
	reg := opts.Registry
	if reg == nil {
		reg = catalog.Default()
	}

	s := &Session{
		registry: reg,
		model:    diagram.New(reg),
		canvas:   canvas.New(),
		solver:   opts.Solver,
		journal:  opts.Journal,
		bus:      opts.Bus,
		now:      time.Now,
	}

	sink := &busSink{bus: opts.Bus}
	s.overlays = overlay.New(livePorts{s.model, s.canvas}, sink)
	s.notifier = notify.New(sink, opts.NotifyDuration)
	s.editor = editor.New(s.model, func(id string) {
		// results computed before the edit no longer apply
		s.clearOverlays()
	})
	s.canvas.OnChange(func(c canvas.Change) {
		t := EventConnectionAdded
		if c.Kind == canvas.EdgeRemoved {
			t = EventConnectionRemoved
		}
		s.publish(t, c.Edge)
	})

	return s
}

// Close cancels pending notification timers
func (s *Session) Close() {
	s.notifier.Close()
}

// Catalog returns the component types available to this session
func (s *Session) Catalog() []domain.ComponentTypeSpec {
	specs := []domain.ComponentTypeSpec{}
	for _, name := range s.registry.Types() {
		spec, err := s.registry.Lookup(name)
		if err != nil {
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

// AddComponent places a new component of typeName on the diagram and the
// canvas
func (s *Session) AddComponent(typeName string) (domain.Component, domain.Ports, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comp, ports, err := s.model.AddComponent(typeName)
	if err != nil {
		return domain.Component{}, domain.Ports{}, err
	}
	if err := s.canvas.AddNode(comp.ID, ports); err != nil {
		// ids are never reused, so this means the canvas is out of step
		s.model.DeleteComponent(comp.ID)
		return domain.Component{}, domain.Ports{}, fmt.Errorf("place %s: %w", comp.ID, err)
	}

	s.publish(EventComponentAdded, map[string]interface{}{
		"id":    comp.ID,
		"type":  comp.Type,
		"ports": ports,
	})
	return comp, ports, nil
}

// DeleteComponent removes a component together with its canvas node, any
// edit session open on it, and every result overlay
func (s *Session) DeleteComponent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.model.Has(id) {
		return &domain.NotFoundError{ID: id}
	}
	if s.editor.Discard(id) {
		s.publish(EventEditorChanged, s.editor.State())
	}
	if err := s.model.DeleteComponent(id); err != nil {
		return err
	}
	dropped := 0
	for _, e := range s.canvas.Edges() {
		if e.Involves(id) {
			dropped++
		}
	}
	if err := s.canvas.RemoveNode(id); err != nil {
		log.Printf("Canvas had no node for deleted component %s: %v", id, err)
	}
	s.clearOverlays()

	s.publish(EventComponentDeleted, map[string]interface{}{"id": id, "connections": dropped})
	return nil
}

// Component returns a copy of one component
func (s *Session) Component(id string) (domain.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Get(id)
}

// Ports returns the inlet and outlet ids of a component
func (s *Session) Ports(id string) (domain.Ports, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec, err := s.model.Spec(id)
	if err != nil {
		return domain.Ports{}, err
	}
	return domain.PortsFor(id, spec), nil
}

// PeerOf returns the port connected to portID on the canvas, if any
func (s *Session) PeerOf(portID string) (string, bool) {
	return s.canvas.PeerOf(portID)
}

// Edit toggles the parameter editor on id
func (s *Session) Edit(id string) (editor.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.editor.Edit(id)
	if err != nil {
		return state, err
	}
	s.publish(EventEditorChanged, state)
	return state, nil
}

// SetFields edits fields of the open form. Unknown keys are ignored.
func (s *Session) SetFields(values map[string]string) (editor.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editor.OpenID() == "" {
		return s.editor.State(), editor.ErrNotOpen
	}
	s.editor.SetFields(values)
	state := s.editor.State()
	s.publish(EventEditorChanged, state)
	return state, nil
}

// Save commits the form open on id, after applying overrides to its fields
func (s *Session) Save(id string, overrides map[string]string) (domain.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editor.OpenID() != id {
		return domain.Component{}, editor.ErrNotOpen
	}
	s.editor.SetFields(overrides)
	if err := s.editor.Save(id); err != nil {
		return domain.Component{}, err
	}

	comp, err := s.model.Get(id)
	if err != nil {
		return domain.Component{}, err
	}
	s.publish(EventParametersSaved, map[string]interface{}{
		"id":         id,
		"parameters": comp.Parameters,
	})
	s.publish(EventEditorChanged, s.editor.State())
	return comp, nil
}

// Cancel closes the editor without saving
func (s *Session) Cancel() editor.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasOpen := s.editor.OpenID() != ""
	s.editor.Cancel()
	state := s.editor.State()
	if wasOpen {
		s.publish(EventEditorChanged, state)
	}
	return state
}

// EditorState returns the current editor state
func (s *Session) EditorState() editor.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.State()
}

// Connect draws an edge from an outlet to an inlet on the canvas
func (s *Session) Connect(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Connect(from, to)
}

// Disconnect removes an edge from the canvas
func (s *Session) Disconnect(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Disconnect(from, to)
}

// Edges returns the live canvas edges
func (s *Session) Edges() []domain.Connection {
	return s.canvas.Edges()
}

// Snapshot resyncs connections from the canvas and returns the diagram in
// solve request shape
func (s *Session) Snapshot() domain.Diagram {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model.Resync(s.canvas.Edges())
	return s.model.Snapshot()
}

// IDs returns component ids in creation order
func (s *Session) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.IDs()
}

// Overlays returns the result overlays currently shown
func (s *Session) Overlays() []domain.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlays.List()
}

// Notification returns the visible notification, if any
func (s *Session) Notification() (domain.Notification, bool) {
	return s.notifier.Current()
}

// LastSolve returns the report of the most recently resolved solve
func (s *Session) LastSolve() (SolveReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return SolveReport{}, false
	}
	return *s.last, true
}

// Export writes the current diagram in format
func (s *Session) Export(format string, w io.Writer) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	return c.Export(s.Snapshot(), w)
}

// Solve submits the current diagram to the solver, shows exactly one
// notification for the outcome and then renders or clears overlays.
// Failures are reported through the outcome, never as an error.
func (s *Session) Solve(ctx context.Context) SolveReport {
	id := uuid.New().String()

	s.mu.Lock()
	started := s.now()
	s.clearOverlays()
	s.model.Resync(s.canvas.Edges())
	snapshot := s.model.Snapshot()
	s.mu.Unlock()

	body, err := solver.EncodeRequest(snapshot)
	digest := ""
	if err == nil {
		digest = solver.RequestDigest(body)
	}

	s.publish(EventSolveStarted, map[string]interface{}{
		"id":          id,
		"components":  snapshot.Len(),
		"connections": snapshot.ConnectionCount(),
	})

	var resp *domain.SolveResponse
	switch {
	case err != nil:
	case s.solver == nil:
		err = fmt.Errorf("no solver configured")
	default:
		resp, err = s.solver.SolveRaw(ctx, body)
	}
	if err != nil {
		log.Printf("Solve %s failed: %v", id, err)
	}
	outcome := solver.Classify(resp, err)

	s.mu.Lock()
	s.notifier.Show(outcome.Message, outcome.Severity)
	attached := 0
	if outcome.ShowsResults() {
		attached = s.overlays.Apply(outcome.Result)
	} else {
		s.clearOverlays()
	}
	report := SolveReport{
		ID:         id,
		Outcome:    outcome,
		Diagram:    snapshot,
		Overlays:   attached,
		StartedAt:  started,
		FinishedAt: s.now(),
	}
	s.last = &report
	s.mu.Unlock()

	s.record(ctx, report, digest, err != nil)
	s.publish(EventSolveFinished, report)
	return report
}

// record journals a finished attempt. A cancelled caller still gets its
// attempt recorded.
func (s *Session) record(ctx context.Context, report SolveReport, digest string, unreachable bool) {
	if s.journal == nil {
		return
	}
	rec := &domain.SolveRecord{
		ID:            report.ID,
		StartedAt:     report.StartedAt,
		FinishedAt:    report.FinishedAt,
		Status:        report.Outcome.Status,
		Severity:      report.Outcome.Severity,
		Message:       report.Outcome.Message,
		Unreachable:   unreachable,
		Components:    report.Diagram.Len(),
		Connections:   report.Diagram.ConnectionCount(),
		Overlays:      report.Overlays,
		RequestDigest: digest,
		Result:        report.Outcome.Result,
	}
	if err := s.journal.RecordSolve(context.WithoutCancel(ctx), rec); err != nil {
		log.Printf("Failed to journal solve %s: %v", report.ID, err)
	}
}

// must hold s.mu
func (s *Session) clearOverlays() {
	if n := s.overlays.ClearAll(); n > 0 {
		s.publish(EventOverlaysCleared, map[string]int{"count": n})
	}
}

func (s *Session) publish(t EventType, payload interface{}) {
	s.bus.Publish(Event{Type: t, Payload: payload})
}

// livePorts accepts a port only when both the model and the canvas hold it
type livePorts struct {
	model  *diagram.Model
	canvas *canvas.Graph
}

func (p livePorts) HasPort(portID string) bool {
	return p.model.HasPort(portID) && p.canvas.HasPort(portID)
}

// busSink forwards overlay and notification changes to the event bus
type busSink struct {
	bus *EventBus
}

func (b *busSink) Attach(o domain.Overlay) {
	b.bus.Publish(Event{Type: EventOverlayAttached, Payload: o})
}

// Detach is reported in bulk by Session.clearOverlays
func (b *busSink) Detach(domain.Overlay) {}

func (b *busSink) Shown(n domain.Notification) {
	b.bus.Publish(Event{Type: EventNotificationShown, Payload: n})
}

func (b *busSink) Dismissed(n domain.Notification) {
	b.bus.Publish(Event{Type: EventNotificationDismissed, Payload: n})
}
