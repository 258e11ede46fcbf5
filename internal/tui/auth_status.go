package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"netmonlabs/netmon/internal/services/auth"
	"netmonlabs/netmon/internal/tui/components"
	"netmonlabs/netmon/internal/tui/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SessionStatus is what `auth status` reports about the stored token.
type SessionStatus struct {
	Backend       string
	Authenticated bool
	Session       auth.Session
	Inspectable   bool
	Err           error
}

// LoadSessionStatus reads the token from store and inspects it.
func LoadSessionStatus(store auth.Store, backend string) SessionStatus {
	st := SessionStatus{Backend: backend}
	token, err := store.Load()
	switch {
	case err == nil:
		st.Authenticated = true
		st.Session, st.Inspectable = auth.Inspect(token)
	case errors.Is(err, auth.ErrTokenNotFound):
	default:
		st.Err = err
	}
	return st
}

// Rows returns label/value pairs describing the status at now.
func (s SessionStatus) Rows(now time.Time) [][2]string {
	rows := [][2]string{{"Backend", s.Backend}}
	switch {
	case s.Err != nil:
		return append(rows, [2]string{"Session", fmt.Sprintf("error: %v", s.Err)})
	case !s.Authenticated:
		return append(rows, [2]string{"Session", "not authenticated"})
	}

	state := "authenticated"
	if s.Session.Expired(now) {
		state = "expired"
	}
	rows = append(rows, [2]string{"Session", state})
	if !s.Inspectable {
		return rows
	}
	if s.Session.Subject != "" {
		rows = append(rows, [2]string{"User", s.Session.Subject})
	}
	if s.Session.Role != "" {
		rows = append(rows, [2]string{"Role", s.Session.Role})
	}
	if !s.Session.ExpiresAt.IsZero() {
		rows = append(rows, [2]string{"Expires", s.Session.ExpiresAt.Local().Format(time.DateTime)})
	}
	return rows
}

// --- Auth status model ---

type authStatusModel struct {
	status SessionStatus
	now    time.Time

	width  int
	height int
}

// RunAuthStatus starts the full-window auth status TUI.
func RunAuthStatus(status SessionStatus) error {
	m := authStatusModel{
		status: status,
		now:    time.Now(),
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m authStatusModel) Init() tea.Cmd {
	return nil
}

func (m authStatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m authStatusModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "auth status", m.status.Backend)
	footerBindings := []components.KeyBinding{
		{Key: "q", Desc: "quit"},
	}
	footer := components.Footer(m.width, footerBindings)

	headerH := lipgloss.Height(header)
	footerH := lipgloss.Height(footer)
	contentH := max(m.height-headerH-footerH, 1)

	content := m.renderContent(contentH)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (m authStatusModel) renderContent(height int) string {
	title := styles.Title.Render("Session")

	labelWidth := 12
	lines := make([]string, 0, 5)
	for _, row := range m.status.Rows(m.now) {
		name := styles.Label.Width(labelWidth).Render(row[0])
		var value string
		switch {
		case row[0] != "Session":
			value = styles.Value.Render(row[1])
		case row[1] == "authenticated":
			value = styles.SuccessText.Render(row[1])
		case row[1] == "expired":
			value = styles.WarningText.Render(row[1])
		default:
			value = styles.MutedText.Render(row[1])
		}
		lines = append(lines, name+value)
	}

	card := styles.Card.Width(48).Render(strings.Join(lines, "\n"))
	combined := lipgloss.JoinVertical(lipgloss.Center, title, "", card)

	return lipgloss.Place(
		m.width, height,
		lipgloss.Center, lipgloss.Center,
		combined,
	)
}
