package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fluidnet/internal/domain"
)

var (
	panelBorder     = lipgloss.Color("#2D6A80")
	accentPrimary   = lipgloss.Color("#50E3C2")
	accentSecondary = lipgloss.Color("#F6AE2D")
	mutedText       = lipgloss.Color("#8CA1AE")
	warningText     = lipgloss.Color("#FF6B6B")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentPrimary)
	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentSecondary)
	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(panelBorder)
	selectedStyle = lipgloss.NewStyle().Foreground(accentPrimary).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedText)
	errorStyle    = lipgloss.NewStyle().Foreground(warningText).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(mutedText).Italic(true)

	severityStyles = map[domain.Severity]lipgloss.Style{
		domain.SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#7BD88F")).Bold(true),
		domain.SeverityWarning: lipgloss.NewStyle().Foreground(accentSecondary).Bold(true),
		domain.SeverityError:   lipgloss.NewStyle().Foreground(warningText).Bold(true),
	}
)

// View renders the editor
func (m Model) View() string {
	parts := []string{headerStyle.Render("fluidnet")}

	left := m.componentsPanel()
	var right string
	switch m.mode {
	case modeEdit:
		right = m.editPanel()
	case modeAdd:
		right = m.pickPanel("Add component")
	case modeConnectFrom:
		right = m.pickPanel("Connect from outlet")
	case modeConnectTo:
		right = m.pickPanel("Connect " + m.connectFrom + " to inlet")
	case modeDisconnect:
		right = m.pickPanel("Remove connection")
	default:
		right = m.connectionsPanel()
	}
	parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, left, right))

	if n, ok := m.session.Notification(); ok {
		style, found := severityStyles[n.Severity]
		if !found {
			style = mutedStyle
		}
		parts = append(parts, style.Render(n.Message))
	}
	if m.status != "" {
		if m.statusErr {
			parts = append(parts, errorStyle.Render(m.status))
		} else {
			parts = append(parts, mutedStyle.Render(m.status))
		}
	}
	parts = append(parts, helpStyle.Render(m.help()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) componentsPanel() string {
	ids := m.session.IDs()
	var b strings.Builder
	if len(ids) == 0 {
		b.WriteString(mutedStyle.Render("empty diagram, press a to add"))
	}
	for i, id := range ids {
		comp, err := m.session.Component(id)
		if err != nil {
			continue
		}
		line := fmt.Sprintf("%-14s %s", id, mutedStyle.Render(comp.Type))
		if i == m.cursor {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return panel("Components", strings.TrimRight(b.String(), "\n"))
}

func (m Model) connectionsPanel() string {
	values := make(map[string]string)
	for _, o := range m.session.Overlays() {
		values[o.PortID] = o.Value
	}

	var b strings.Builder
	edges := m.session.Edges()
	if len(edges) == 0 {
		b.WriteString(mutedStyle.Render("no connections"))
	}
	for _, e := range edges {
		b.WriteString(e.String())
		if v, ok := values[e.From]; ok {
			b.WriteString("  " + selectedStyle.Render(v))
		}
		b.WriteString("\n")
	}
	return panel("Connections", strings.TrimRight(b.String(), "\n"))
}

func (m Model) editPanel() string {
	var b strings.Builder
	for i, in := range m.inputs {
		label := m.labels[i]
		if i == m.focus {
			label = selectedStyle.Render(label)
		}
		b.WriteString(label + "\n" + in.View() + "\n")
	}
	return panel("Edit "+m.editID, strings.TrimRight(b.String(), "\n"))
}

func (m Model) pickPanel(title string) string {
	var b strings.Builder
	for i, c := range m.choices {
		if i == m.choice {
			b.WriteString(selectedStyle.Render("> "+c) + "\n")
		} else {
			b.WriteString("  " + c + "\n")
		}
	}
	return panel(title, strings.TrimRight(b.String(), "\n"))
}

func (m Model) help() string {
	switch m.mode {
	case modeEdit:
		return "tab next field | enter save | esc cancel"
	case modeBrowse:
		return "j/k move | a add | d delete | e edit | c connect | x disconnect | s solve | y copy xml | q quit"
	default:
		return "j/k move | enter choose | esc back"
	}
}

func panel(title, body string) string {
	return panelStyle.Render(panelTitleStyle.Render(title) + "\n" + body)
}
