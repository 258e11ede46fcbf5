package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"netmonlabs/netmon/internal/domain"
	"netmonlabs/netmon/internal/tui/components"
	"netmonlabs/netmon/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoginFunc performs the login and stores the session token.
type LoginFunc func(ctx context.Context, username, password string) error

// --- Messages ---

type loginDoneMsg struct{}

type loginErrorMsg struct {
	err error
}

// --- Auth login model ---

const (
	fieldUsername = iota
	fieldPassword
)

type authLoginModel struct {
	ctx     context.Context
	login   LoginFunc
	backend string

	inputs []textinput.Model
	focus  int

	width  int
	height int

	spinner  spinner.Model
	pending  bool
	err      error
	saved    bool
	quitting bool
}

// AuthLoginResult holds the outcome of the login TUI.
type AuthLoginResult struct {
	Username string
	Saved    bool
}

// RunAuthLogin starts the interactive login TUI. It returns nil when the
// user cancels.
func RunAuthLogin(ctx context.Context, backend, username string, login LoginFunc) (*AuthLoginResult, error) {
	m := newAuthLoginModel(ctx, backend, username, login)

	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run auth login: %w", err)
	}

	final := result.(authLoginModel)
	if final.quitting && !final.saved {
		return nil, nil
	}
	return &AuthLoginResult{Username: final.username(), Saved: final.saved}, nil
}

func newAuthLoginModel(ctx context.Context, backend, username string, login LoginFunc) authLoginModel {
	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 64
	user.Width = 40
	user.SetValue(username)

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '*'
	pass.Width = 40

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	m := authLoginModel{
		ctx:     ctx,
		login:   login,
		backend: backend,
		inputs:  []textinput.Model{user, pass},
		spinner: s,
	}
	if username != "" {
		m.focus = fieldPassword
	}
	m.inputs[m.focus].Focus()
	return m
}

func (m authLoginModel) username() string {
	return strings.TrimSpace(m.inputs[fieldUsername].Value())
}

func (m authLoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m authLoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loginDoneMsg:
		m.pending = false
		m.saved = true
		return m, tea.Quit

	case loginErrorMsg:
		m.pending = false
		m.err = msg.err
		m.inputs[fieldPassword].SetValue("")
		return m.setFocus(fieldPassword), nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m authLoginModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	}
	if m.pending {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		return m.setFocus((m.focus + 1) % len(m.inputs)), nil
	case "shift+tab", "up":
		return m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs)), nil
	case "enter":
		if m.focus == fieldUsername {
			return m.setFocus(fieldPassword), nil
		}
		username := m.username()
		password := m.inputs[fieldPassword].Value()
		if username == "" {
			m.err = errors.New("username cannot be empty")
			return m.setFocus(fieldUsername), nil
		}
		if password == "" {
			m.err = errors.New("password cannot be empty")
			return m, nil
		}
		m.err = nil
		m.pending = true
		return m, tea.Batch(m.spinner.Tick, m.submit(username, password))
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.err = nil
	return m, cmd
}

func (m authLoginModel) setFocus(i int) authLoginModel {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
	return m
}

func (m authLoginModel) submit(username, password string) tea.Cmd {
	return func() tea.Msg {
		if err := m.login(m.ctx, username, password); err != nil {
			return loginErrorMsg{err: err}
		}
		return loginDoneMsg{}
	}
}

func (m authLoginModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "auth login", m.backend)
	footerBindings := []components.KeyBinding{
		{Key: "tab", Desc: "next field"},
		{Key: "enter", Desc: "sign in"},
		{Key: "esc", Desc: "cancel"},
	}
	footer := components.Footer(m.width, footerBindings)

	headerH := lipgloss.Height(header)
	footerH := lipgloss.Height(footer)
	contentH := max(m.height-headerH-footerH, 1)

	content := m.renderContent(contentH)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (m authLoginModel) renderContent(height int) string {
	title := styles.Title.Render("Sign in")
	hint := styles.MutedText.Render("Enter your operator credentials")

	fields := make([]string, len(m.inputs))
	labels := []string{"Username", "Password"}
	for i, in := range m.inputs {
		box := styles.InputBlurred
		if i == m.focus {
			box = styles.InputFocused
		}
		fields[i] = lipgloss.JoinVertical(lipgloss.Left, styles.Label.Render(labels[i]), box.Render(in.View()))
	}

	var statusLine string
	switch {
	case m.pending:
		statusLine = m.spinner.View() + styles.MutedText.Render(" Signing in…")
	case m.err != nil:
		statusLine = styles.ErrorText.Render(domain.UserMessage(m.err))
	}

	card := lipgloss.JoinVertical(lipgloss.Left,
		title,
		hint,
		"",
		fields[fieldUsername],
		fields[fieldPassword],
		"",
		statusLine,
	)

	return lipgloss.Place(
		m.width, height,
		lipgloss.Center, lipgloss.Center,
		card,
	)
}
