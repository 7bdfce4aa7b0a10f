package tui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"fluidnet/internal/domain"
	"fluidnet/internal/service"
	"fluidnet/internal/solver"
)

func newTestModel(t *testing.T, solverResponse string) Model {
	t.Helper()

	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, solverResponse)
	}))
	t.Cleanup(fake.Close)

	client, err := solver.New(fake.URL + "/solve")
	if err != nil {
		t.Fatalf("failed to create solver client: %v", err)
	}
	bus := service.NewEventBus()
	session := service.NewSession(service.Options{Solver: client, Bus: bus})
	t.Cleanup(session.Close)

	return New(context.Background(), session, bus)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys in order and returns the final model and last command
func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

// addType opens the add list, moves down n entries and picks
func addType(t *testing.T, m Model, n int) Model {
	t.Helper()
	keys := []tea.KeyMsg{runes("a")}
	for i := 0; i < n; i++ {
		keys = append(keys, runes("j"))
	}
	keys = append(keys, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, keys...)
	return m
}

func TestAddAndDelete(t *testing.T) {
	m := newTestModel(t, `{"status":"success"}`)

	m = addType(t, m, 0)
	m = addType(t, m, 6)

	ids := m.session.IDs()
	if len(ids) != 2 || ids[0] != "Pump1" || ids[1] != "Reservoir2" {
		t.Fatalf("unexpected ids %v", ids)
	}
	if m.mode != modeBrowse {
		t.Errorf("expected browse mode after adding, got %v", m.mode)
	}
	if m.cursor != 1 {
		t.Errorf("expected cursor on the new component, got %d", m.cursor)
	}
	if !strings.Contains(m.View(), "Reservoir2") {
		t.Error("expected view to list Reservoir2")
	}

	m, _ = press(t, m, runes("d"))
	if ids := m.session.IDs(); len(ids) != 1 || ids[0] != "Pump1" {
		t.Errorf("expected only Pump1 left, got %v", ids)
	}
	if m.cursor != 0 {
		t.Errorf("expected cursor to move back, got %d", m.cursor)
	}

	t.Run("escape leaves the add list", func(t *testing.T) {
		m, _ := press(t, m, runes("a"), tea.KeyMsg{Type: tea.KeyEsc})
		if m.mode != modeBrowse {
			t.Errorf("expected browse mode, got %v", m.mode)
		}
		if len(m.session.IDs()) != 1 {
			t.Error("expected nothing added")
		}
	})
}

func TestEditSaveAndCancel(t *testing.T) {
	m := newTestModel(t, `{"status":"success"}`)
	m = addType(t, m, 0)

	m, _ = press(t, m, runes("e"))
	if m.mode != modeEdit || len(m.inputs) != 3 {
		t.Fatalf("expected pump form with 3 fields, got mode %v with %d", m.mode, len(m.inputs))
	}
	if m.inputs[2].Value() != "100" {
		t.Errorf("expected PumpSpeedPct 100, got %q", m.inputs[2].Value())
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != 2 {
		t.Errorf("expected focus on third field, got %d", m.focus)
	}
	m.inputs[2].SetValue("75")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	comp, err := m.session.Component("Pump1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comp.Parameters["PumpSpeedPct"] != "75" {
		t.Errorf("expected saved value, got %v", comp.Parameters)
	}
	if m.mode != modeBrowse || m.session.EditorState().Open {
		t.Error("expected editor closed after save")
	}

	t.Run("escape discards edits", func(t *testing.T) {
		m, _ := press(t, m, runes("e"))
		m.inputs[0].SetValue("9, 9")
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

		comp, _ := m.session.Component("Pump1")
		if comp.Parameters["FlowRate"] != "0, 1" {
			t.Errorf("expected FlowRate unchanged, got %q", comp.Parameters["FlowRate"])
		}
		if m.session.EditorState().Open {
			t.Error("expected editor closed")
		}
	})

	t.Run("splitter is not editable", func(t *testing.T) {
		m := addType(t, m, 4)
		m, _ = press(t, m, runes("e"))
		if m.mode != modeBrowse || !m.statusErr {
			t.Errorf("expected an error status in browse mode, got mode %v status %q", m.mode, m.status)
		}
	})
}

func TestConnectAndDisconnect(t *testing.T) {
	m := newTestModel(t, `{"status":"success"}`)
	m = addType(t, m, 0)
	m = addType(t, m, 6)

	m, _ = press(t, m, runes("k"), runes("c"))
	if m.mode != modeConnectFrom || len(m.choices) != 1 || m.choices[0] != "Pump1.Outlet1" {
		t.Fatalf("unexpected outlet choices %v", m.choices)
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeConnectTo || len(m.choices) != 1 || m.choices[0] != "Reservoir2.Inlet1" {
		t.Fatalf("unexpected inlet choices %v", m.choices)
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	edges := m.session.Edges()
	if len(edges) != 1 || edges[0] != (domain.Connection{From: "Pump1.Outlet1", To: "Reservoir2.Inlet1"}) {
		t.Fatalf("unexpected edges %v", edges)
	}

	t.Run("busy outlet is not offered", func(t *testing.T) {
		m, _ := press(t, m, runes("c"))
		if m.mode != modeBrowse || !m.statusErr {
			t.Errorf("expected error status, got mode %v status %q", m.mode, m.status)
		}
	})

	m, _ = press(t, m, runes("x"), tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.session.Edges()) != 0 {
		t.Errorf("expected no edges, got %v", m.session.Edges())
	}
}

func TestSolve(t *testing.T) {
	m := newTestModel(t, `{"status":"success","result":{"Pump1.Outlet1":"Q=2"}}`)
	m = addType(t, m, 0)

	m, cmd := press(t, m, runes("s"))
	if !m.solving || cmd == nil {
		t.Fatal("expected a solve command")
	}

	t.Run("second press while solving is ignored", func(t *testing.T) {
		_, again := press(t, m, runes("s"))
		if again != nil {
			t.Error("expected no command")
		}
	})

	next, _ := m.Update(cmd())
	m = next.(Model)
	if m.solving {
		t.Error("expected solving to finish")
	}
	n, ok := m.session.Notification()
	if !ok || n.Message != "Done!" {
		t.Errorf("unexpected notification %+v", n)
	}
	if !strings.Contains(m.View(), "Done!") {
		t.Error("expected view to show the notification")
	}
}

func TestCopyExport(t *testing.T) {
	m := newTestModel(t, `{"status":"success"}`)
	m = addType(t, m, 3)

	var copied string
	m.copy = func(s string) error {
		copied = s
		return nil
	}

	m, cmd := press(t, m, runes("y"))
	next, _ := m.Update(cmd())
	m = next.(Model)

	if !strings.Contains(copied, `type="Pipe"`) {
		t.Errorf("expected xml export, got %q", copied)
	}
	if m.statusErr {
		t.Errorf("unexpected error status %q", m.status)
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, `{"status":"success"}`)

	tests := []struct {
		name string
		key  tea.KeyMsg
	}{
		{"q quits", runes("q")},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := press(t, m, tt.key)
			if cmd == nil {
				t.Fatal("expected a command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected quit message")
			}
		})
	}
}

func TestEventsKeepListening(t *testing.T) {
	m := newTestModel(t, `{"status":"success"}`)
	cmd := m.Init()
	if cmd == nil {
		t.Fatal("expected Init to wait for events")
	}

	m = addType(t, m, 0)
	msg := cmd()
	if _, ok := msg.(eventMsg); !ok {
		t.Fatalf("expected event message, got %T", msg)
	}
	if _, next := m.Update(msg); next == nil {
		t.Error("expected to wait for the next event")
	}
}
