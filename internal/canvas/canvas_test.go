package canvas

import (
	"errors"
	"reflect"
	"testing"

	"fluidnet/internal/domain"
)

func pumpPorts(id string) domain.Ports {
	return domain.Ports{
		Inlets:  []string{id + ".Inlet1"},
		Outlets: []string{id + ".Outlet1"},
	}
}

func TestConnect(t *testing.T) {
	t.Run("connects outlet to inlet", func(t *testing.T) {
		g := New()
		g.AddNode("Pump1", pumpPorts("Pump1"))
		g.AddNode("Pipe2", pumpPorts("Pipe2"))

		if err := g.Connect("Pump1.Outlet1", "Pipe2.Inlet1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []domain.Connection{{From: "Pump1.Outlet1", To: "Pipe2.Inlet1"}}
		if !reflect.DeepEqual(g.Edges(), want) {
			t.Errorf("expected %v, got %v", want, g.Edges())
		}
		if peer, ok := g.PeerOf("Pipe2.Inlet1"); !ok || peer != "Pump1.Outlet1" {
			t.Errorf("expected peer Pump1.Outlet1, got %s", peer)
		}
	})

	t.Run("rejects wrong direction", func(t *testing.T) {
		g := New()
		g.AddNode("Pump1", pumpPorts("Pump1"))
		g.AddNode("Pipe2", pumpPorts("Pipe2"))

		if err := g.Connect("Pipe2.Inlet1", "Pump1.Outlet1"); !errors.Is(err, ErrDirection) {
			t.Errorf("expected ErrDirection, got %v", err)
		}
		if err := g.Connect("Pump1.Outlet1", "Pipe2.Outlet1"); !errors.Is(err, ErrDirection) {
			t.Errorf("expected ErrDirection, got %v", err)
		}
	})

	t.Run("rejects unknown ports", func(t *testing.T) {
		g := New()
		g.AddNode("Pump1", pumpPorts("Pump1"))
		if err := g.Connect("Pump1.Outlet1", "Ghost.Inlet1"); !errors.Is(err, ErrUnknownPort) {
			t.Errorf("expected ErrUnknownPort, got %v", err)
		}
	})

	t.Run("each port carries one edge", func(t *testing.T) {
		g := New()
		g.AddNode("Pump1", pumpPorts("Pump1"))
		g.AddNode("Pipe2", pumpPorts("Pipe2"))
		g.AddNode("Pipe3", pumpPorts("Pipe3"))

		if err := g.Connect("Pump1.Outlet1", "Pipe2.Inlet1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := g.Connect("Pump1.Outlet1", "Pipe3.Inlet1"); !errors.Is(err, ErrPortBusy) {
			t.Errorf("expected ErrPortBusy, got %v", err)
		}
	})
}

func TestRemoveNodeDropsEdges(t *testing.T) {
	g := New()
	g.AddNode("Pump1", pumpPorts("Pump1"))
	g.AddNode("Pipe2", pumpPorts("Pipe2"))
	g.AddNode("Reservoir3", pumpPorts("Reservoir3"))
	g.Connect("Pump1.Outlet1", "Pipe2.Inlet1")
	g.Connect("Pipe2.Outlet1", "Reservoir3.Inlet1")
	g.Connect("Reservoir3.Outlet1", "Pump1.Inlet1")

	var removed []domain.Connection
	g.OnChange(func(c Change) {
		if c.Kind == EdgeRemoved {
			removed = append(removed, c.Edge)
		}
	})

	if err := g.RemoveNode("Pipe2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.Connection{{From: "Reservoir3.Outlet1", To: "Pump1.Inlet1"}}
	if !reflect.DeepEqual(g.Edges(), want) {
		t.Errorf("expected %v, got %v", want, g.Edges())
	}
	if len(removed) != 2 {
		t.Errorf("expected 2 removal notifications, got %d", len(removed))
	}
	if g.HasPort("Pipe2.Inlet1") {
		t.Error("expected ports of removed node to disappear")
	}
	if err := g.RemoveNode("Pipe2"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}
}

func TestDisconnect(t *testing.T) {
	g := New()
	g.AddNode("Pump1", pumpPorts("Pump1"))
	g.AddNode("Pipe2", pumpPorts("Pipe2"))
	g.Connect("Pump1.Outlet1", "Pipe2.Inlet1")

	var changes []Change
	g.OnChange(func(c Change) { changes = append(changes, c) })

	if err := g.Disconnect("Pump1.Outlet1", "Pipe2.Inlet1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Edges()) != 0 {
		t.Errorf("expected no edges, got %v", g.Edges())
	}
	if len(changes) != 1 || changes[0].Kind != EdgeRemoved {
		t.Errorf("expected one removal, got %v", changes)
	}
	if err := g.Disconnect("Pump1.Outlet1", "Pipe2.Inlet1"); !errors.Is(err, ErrNoSuchEdge) {
		t.Errorf("expected ErrNoSuchEdge, got %v", err)
	}
	if err := g.Connect("Pump1.Outlet1", "Pipe2.Inlet1"); err != nil {
		t.Errorf("expected ports to be free again, got %v", err)
	}
}

func TestAddNodeDuplicate(t *testing.T) {
	g := New()
	g.AddNode("Pump1", pumpPorts("Pump1"))
	if err := g.AddNode("Pump1", pumpPorts("Pump1")); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("expected ErrDuplicateNode, got %v", err)
	}
}
