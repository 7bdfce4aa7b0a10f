package diagram

import (
	"log"

	"fluidnet/internal/domain"
)

// Resync rebuilds every component's connection list from the canvas's full
// live edge list. It is a full rebuild: prior lists are discarded, each edge
// is appended to the owner of its source port, and edges that do not run
// from a live outlet to a live inlet are dropped. Lists are sorted so the
// result depends only on the edge set.
func (m *Model) Resync(edges []domain.Connection) {
	for _, comp := range m.components {
		comp.Connections = []domain.Connection{}
	}

	seen := make(map[domain.Connection]bool, len(edges))
	dropped := 0
	for _, e := range edges {
		if seen[e] {
			continue
		}
		seen[e] = true

		from, err := domain.ParsePortID(e.From)
		if err != nil || from.Kind != domain.PortOutlet || !m.hasPort(from) {
			dropped++
			continue
		}
		to, err := domain.ParsePortID(e.To)
		if err != nil || to.Kind != domain.PortInlet || !m.hasPort(to) {
			dropped++
			continue
		}

		owner := m.components[from.ComponentID]
		owner.Connections = append(owner.Connections, e)
	}

	for _, comp := range m.components {
		sortConnections(comp.Connections)
	}

	if dropped > 0 {
		log.Printf("Resync dropped %d stale or misdirected edges", dropped)
	}
}
