// Package canvas is the in-process stand-in for the interactive canvas engine.
//
// It holds draggable nodes with named anchor points (ports) and the live
// directed edges between them. Outlets may only be sources and inlets only
// targets, and every port carries at most one edge. Removing a node drops
// all of its inbound and outbound edges. Listeners are told about every
// edge that appears or disappears.
package canvas

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"fluidnet/internal/domain"
)

var (
	ErrDuplicateNode = errors.New("node already exists")
	ErrUnknownNode   = errors.New("unknown node")
	ErrUnknownPort   = errors.New("unknown port")
	ErrDirection     = errors.New("connections must run from an outlet to an inlet")
	ErrPortBusy      = errors.New("port already connected")
	ErrNoSuchEdge    = errors.New("no such connection")
)

// ChangeKind tells whether an edge appeared or disappeared
type ChangeKind string

const (
	EdgeAdded   ChangeKind = "added"
	EdgeRemoved ChangeKind = "removed"
)

// Change is a connection-changed notification
type Change struct {
	Kind ChangeKind        `json:"kind"`
	Edge domain.Connection `json:"edge"`
}

// Listener receives connection-changed notifications
type Listener func(Change)

// Graph is an in-memory canvas
type Graph struct {
	mu        sync.Mutex
	ports     map[string]domain.PortKind // port id -> kind
	nodes     map[string][]string        // node id -> port ids
	edges     map[domain.Connection]struct{}
	busy      map[string]domain.Connection // port id -> edge using it
	listeners []Listener
}

// New creates an empty canvas
func New() *Graph {
	return &Graph{
		ports: make(map[string]domain.PortKind),
		nodes: make(map[string][]string),
		edges: make(map[domain.Connection]struct{}),
		busy:  make(map[string]domain.Connection),
	}
}

// OnChange registers a listener for connection changes
func (g *Graph) OnChange(l Listener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, l)
}

// AddNode places a node exposing inlets as targets and outlets as sources
func (g *Graph) AddNode(id string, ports domain.Ports) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	for _, p := range ports.Inlets {
		g.ports[p] = domain.PortInlet
	}
	for _, p := range ports.Outlets {
		g.ports[p] = domain.PortOutlet
	}
	g.nodes[id] = ports.All()
	return nil
}

// RemoveNode drops a node together with every edge touching it
func (g *Graph) RemoveNode(id string) error {
	g.mu.Lock()
	ports, ok := g.nodes[id]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}

	var removed []Change
	for _, p := range ports {
		if e, ok := g.busy[p]; ok {
			g.dropEdge(e)
			removed = append(removed, Change{Kind: EdgeRemoved, Edge: e})
		}
		delete(g.ports, p)
	}
	delete(g.nodes, id)
	listeners := g.listeners
	g.mu.Unlock()

	for _, c := range removed {
		notify(listeners, c)
	}
	return nil
}

// Connect adds an edge from an outlet to an inlet
func (g *Graph) Connect(from, to string) error {
	g.mu.Lock()
	fromKind, ok := g.ports[from]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownPort, from)
	}
	toKind, ok := g.ports[to]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownPort, to)
	}
	if fromKind != domain.PortOutlet || toKind != domain.PortInlet {
		g.mu.Unlock()
		return ErrDirection
	}
	if _, ok := g.busy[from]; ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPortBusy, from)
	}
	if _, ok := g.busy[to]; ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPortBusy, to)
	}

	e := domain.Connection{From: from, To: to}
	g.edges[e] = struct{}{}
	g.busy[from] = e
	g.busy[to] = e
	listeners := g.listeners
	g.mu.Unlock()

	notify(listeners, Change{Kind: EdgeAdded, Edge: e})
	return nil
}

// Disconnect removes the edge from -> to
func (g *Graph) Disconnect(from, to string) error {
	g.mu.Lock()
	e := domain.Connection{From: from, To: to}
	if _, ok := g.edges[e]; !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNoSuchEdge, e)
	}
	g.dropEdge(e)
	listeners := g.listeners
	g.mu.Unlock()

	notify(listeners, Change{Kind: EdgeRemoved, Edge: e})
	return nil
}

// Edges returns every live edge sorted by source then target
func (g *Graph) Edges() []domain.Connection {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]domain.Connection, 0, len(g.edges))
	for e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// HasPort reports whether a port is currently on the canvas
func (g *Graph) HasPort(portID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.ports[portID]
	return ok
}

// PeerOf returns the port connected to portID, if any
func (g *Graph) PeerOf(portID string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.busy[portID]
	if !ok {
		return "", false
	}
	if e.From == portID {
		return e.To, true
	}
	return e.From, true
}

// must hold g.mu
func (g *Graph) dropEdge(e domain.Connection) {
	delete(g.edges, e)
	delete(g.busy, e.From)
	delete(g.busy, e.To)
}

func notify(listeners []Listener, c Change) {
	for _, l := range listeners {
		l(c)
	}
}
