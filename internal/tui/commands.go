package tui

import (
	"bytes"
	"context"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"fluidnet/internal/service"
)

func solve(ctx context.Context, s *service.Session) tea.Cmd {
	return func() tea.Msg {
		return solveDoneMsg{report: s.Solve(ctx)}
	}
}

func waitForEvent(ch <-chan service.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg{event: e}
	}
}

func copyExport(s *service.Session, write func(string) error) tea.Cmd {
	return func() tea.Msg {
		var buf bytes.Buffer
		if err := s.Export("xml", &buf); err != nil {
			return copiedMsg{err: err}
		}
		return copiedMsg{err: write(buf.String())}
	}
}

func writeClipboard(text string) error {
	return clipboard.WriteAll(text)
}
