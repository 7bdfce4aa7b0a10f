// Package overlay tracks result annotations attached to diagram ports.
package overlay

import (
	"sort"

	"fluidnet/internal/domain"
)

// PortChecker reports whether a port currently exists in the diagram
type PortChecker interface {
	HasPort(portID string) bool
}

// Sink displays overlays. Attach is called for new and replaced overlays,
// Detach for each overlay removed by ClearAll.
type Sink interface {
	Attach(o domain.Overlay)
	Detach(o domain.Overlay)
}

// Renderer attaches solver values to ports and tracks them for removal
type Renderer struct {
	ports   PortChecker
	sink    Sink
	tracked map[string]domain.Overlay // port id -> overlay
}

// New creates a renderer. sink may be nil.
func New(ports PortChecker, sink Sink) *Renderer {
	return &Renderer{
		ports:   ports,
		sink:    sink,
		tracked: make(map[string]domain.Overlay),
	}
}

// Apply attaches one overlay per reported port that exists, replacing the
// content of any overlay already on that port. Unknown ports are skipped.
// It returns the number of overlays attached.
func (r *Renderer) Apply(result map[string]string) int {
	portIDs := make([]string, 0, len(result))
	for p := range result {
		portIDs = append(portIDs, p)
	}
	sort.Strings(portIDs)

	n := 0
	for _, p := range portIDs {
		if !r.ports.HasPort(p) {
			continue
		}
		o := domain.Overlay{ID: domain.OverlayID(p), PortID: p, Value: result[p]}
		r.tracked[p] = o
		if r.sink != nil {
			r.sink.Attach(o)
		}
		n++
	}
	return n
}

// ClearAll removes every tracked overlay. Safe to call with nothing tracked.
func (r *Renderer) ClearAll() int {
	n := len(r.tracked)
	if n == 0 {
		return 0
	}
	for _, o := range r.sorted() {
		if r.sink != nil {
			r.sink.Detach(o)
		}
	}
	r.tracked = make(map[string]domain.Overlay)
	return n
}

// List returns tracked overlays ordered by port id
func (r *Renderer) List() []domain.Overlay {
	return r.sorted()
}

// Len returns the number of tracked overlays
func (r *Renderer) Len() int {
	return len(r.tracked)
}

func (r *Renderer) sorted() []domain.Overlay {
	out := make([]domain.Overlay, 0, len(r.tracked))
	for _, o := range r.tracked {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PortID < out[j].PortID })
	return out
}
