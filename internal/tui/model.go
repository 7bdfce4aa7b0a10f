// Package tui is the terminal front end: a keyboard-driven diagram editor
// over one service.Session.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"fluidnet/internal/domain"
	"fluidnet/internal/service"
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
	modeConnectFrom
	modeConnectTo
	modeDisconnect
)

type solveDoneMsg struct {
	report service.SolveReport
}

type eventMsg struct {
	event service.Event
}

type copiedMsg struct {
	err error
}

// Model is the bubbletea model of the editor
type Model struct {
	ctx     context.Context
	session *service.Session
	events  chan service.Event

	mode    mode
	cursor  int // selected component
	choice  int // selected entry in pick lists
	choices []string

	editID string
	inputs []textinput.Model
	labels []string
	keys   []string
	focus  int

	connectFrom string
	solving     bool
	status      string
	statusErr   bool
	width       int

	copy func(string) error
}

// New creates the editor. Events from bus refresh the view when they
// happen outside a key press, such as a notification being dismissed.
func New(ctx context.Context, session *service.Session, bus *service.EventBus) Model {
	m := Model{
		ctx:     ctx,
		session: session,
		copy:    writeClipboard,
	}
	if bus != nil {
		m.events = make(chan service.Event, 64)
		bus.Subscribe(m.events)
	}
	return m
}

// Init starts listening for session events
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Update handles key presses and background results
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case solveDoneMsg:
		m.solving = false
		m.setStatus("", false)
		return m, nil

	case eventMsg:
		return m, waitForEvent(m.events)

	case copiedMsg:
		if msg.err != nil {
			m.setStatus("Copy failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("Diagram XML copied to clipboard", false)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd, modeConnectFrom, modeConnectTo, modeDisconnect:
			return m.updatePick(msg)
		case modeEdit:
			return m.updateEdit(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	if m.mode == modeEdit {
		return m.updateInputs(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ids := m.session.IDs()

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(ids)-1 {
			m.cursor++
		}

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "a":
		m.openPick(modeAdd, typeNames(m.session.Catalog()))

	case "d", "delete":
		id, ok := m.selected(ids)
		if !ok {
			return m, nil
		}
		if err := m.session.DeleteComponent(id); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		if m.cursor > 0 && m.cursor >= len(ids)-1 {
			m.cursor--
		}
		m.setStatus("Deleted "+id, false)

	case "e", "enter":
		id, ok := m.selected(ids)
		if !ok {
			return m, nil
		}
		return m.openEditor(id)

	case "c":
		id, ok := m.selected(ids)
		if !ok {
			return m, nil
		}
		ports, err := m.session.Ports(id)
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		free := m.freePorts(ports.Outlets)
		if len(free) == 0 {
			m.setStatus(id+" has no free outlet", true)
			return m, nil
		}
		m.openPick(modeConnectFrom, free)

	case "x":
		edges := m.session.Edges()
		if len(edges) == 0 {
			m.setStatus("No connections to remove", true)
			return m, nil
		}
		labels := make([]string, len(edges))
		for i, e := range edges {
			labels[i] = e.String()
		}
		m.openPick(modeDisconnect, labels)

	case "s":
		if m.solving {
			return m, nil
		}
		m.solving = true
		m.setStatus("Solving...", false)
		return m, solve(m.ctx, m.session)

	case "y":
		return m, copyExport(m.session, m.copy)
	}
	return m, nil
}

func (m Model) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeBrowse
		m.connectFrom = ""
		return m, nil
	case "j", "down":
		if m.choice < len(m.choices)-1 {
			m.choice++
		}
		return m, nil
	case "k", "up":
		if m.choice > 0 {
			m.choice--
		}
		return m, nil
	case "enter":
	default:
		return m, nil
	}

	if len(m.choices) == 0 {
		m.mode = modeBrowse
		return m, nil
	}
	picked := m.choices[m.choice]

	switch m.mode {
	case modeAdd:
		comp, _, err := m.session.AddComponent(picked)
		m.mode = modeBrowse
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.cursor = len(m.session.IDs()) - 1
		m.setStatus("Added "+comp.ID, false)

	case modeConnectFrom:
		m.connectFrom = picked
		targets := m.freeInlets()
		if len(targets) == 0 {
			m.mode = modeBrowse
			m.setStatus("No free inlet to connect to", true)
			return m, nil
		}
		m.openPick(modeConnectTo, targets)

	case modeConnectTo:
		from := m.connectFrom
		m.connectFrom = ""
		m.mode = modeBrowse
		if err := m.session.Connect(from, picked); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus("Connected "+domain.Connection{From: from, To: picked}.String(), false)

	case modeDisconnect:
		m.mode = modeBrowse
		edges := m.session.Edges()
		if m.choice >= len(edges) {
			return m, nil
		}
		e := edges[m.choice]
		if err := m.session.Disconnect(e.From, e.To); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus("Disconnected "+e.String(), false)
	}
	return m, nil
}

func (m Model) openEditor(id string) (tea.Model, tea.Cmd) {
	state, err := m.session.Edit(id)
	if err != nil {
		m.setStatus(fmt.Sprintf("%s: %v", id, err), true)
		return m, nil
	}
	if !state.Open {
		return m, nil
	}

	m.mode = modeEdit
	m.editID = id
	m.focus = 0
	m.inputs = make([]textinput.Model, len(state.Fields))
	m.labels = make([]string, len(state.Fields))
	m.keys = make([]string, len(state.Fields))
	for i, f := range state.Fields {
		ti := textinput.New()
		ti.SetValue(f.Value)
		ti.CharLimit = 64
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
		m.labels[i] = f.Label
		m.keys[i] = f.ID
	}
	m.setStatus("", false)
	return m, textinput.Blink
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.session.Cancel()
		m.closeEditor()
		m.setStatus("Edit discarded", false)
		return m, nil

	case "enter":
		values := make(map[string]string, len(m.inputs))
		for i, in := range m.inputs {
			values[m.keys[i]] = in.Value()
		}
		id := m.editID
		m.closeEditor()
		if _, err := m.session.Save(id, values); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus("Saved "+id, false)
		return m, nil

	case "tab", "down":
		m.moveFocus(1)
		return m, nil

	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil
	}
	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) moveFocus(delta int) {
	if len(m.inputs) == 0 {
		return
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m *Model) closeEditor() {
	m.mode = modeBrowse
	m.editID = ""
	m.inputs = nil
	m.labels = nil
	m.keys = nil
}

func (m *Model) openPick(md mode, choices []string) {
	m.mode = md
	m.choices = choices
	m.choice = 0
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model) selected(ids []string) (string, bool) {
	if m.cursor < 0 || m.cursor >= len(ids) {
		return "", false
	}
	return ids[m.cursor], true
}

func (m Model) freePorts(ports []string) []string {
	free := []string{}
	for _, p := range ports {
		if _, busy := m.session.PeerOf(p); !busy {
			free = append(free, p)
		}
	}
	return free
}

// freeInlets lists unconnected inlets of every component except the source
func (m Model) freeInlets() []string {
	owner := domain.OwnerOf(m.connectFrom)
	out := []string{}
	for _, id := range m.session.IDs() {
		if id == owner {
			continue
		}
		ports, err := m.session.Ports(id)
		if err != nil {
			continue
		}
		out = append(out, m.freePorts(ports.Inlets)...)
	}
	return out
}

func typeNames(specs []domain.ComponentTypeSpec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}
