package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"netmonlabs/netmon/internal/api"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

type loginCall struct {
	username string
	password string
}

func newTestLogin(t *testing.T, username string, result error) (authLoginModel, *[]loginCall) {
	t.Helper()
	var calls []loginCall
	login := func(_ context.Context, u, p string) error {
		calls = append(calls, loginCall{u, p})
		return result
	}
	m := newAuthLoginModel(context.Background(), "localhost:8080", username, login)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(authLoginModel), &calls
}

func typeText(m authLoginModel, s string) authLoginModel {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(authLoginModel)
}

func sendKey(m authLoginModel, k tea.KeyType) (authLoginModel, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(authLoginModel), cmd
}

// runCmd executes cmd and any batched commands, returning the first message
// matching a login result.
func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			switch m := c().(type) {
			case loginDoneMsg, loginErrorMsg:
				return m
			}
		}
		return nil
	}
	return msg
}

func TestAuthLogin_SubmitsCredentials(t *testing.T) {
	m, calls := newTestLogin(t, "", nil)

	m = typeText(m, "ops")
	m, _ = sendKey(m, tea.KeyEnter) // moves to password
	if m.focus != fieldPassword {
		t.Fatalf("focus = %d, want password", m.focus)
	}
	m = typeText(m, "s3cret")
	m, cmd := sendKey(m, tea.KeyEnter)
	if !m.pending {
		t.Error("expected pending state while signing in")
	}

	msg := runCmd(cmd)
	if _, ok := msg.(loginDoneMsg); !ok {
		t.Fatalf("msg = %#v, want loginDoneMsg", msg)
	}
	if len(*calls) != 1 || (*calls)[0] != (loginCall{"ops", "s3cret"}) {
		t.Errorf("calls = %+v", *calls)
	}

	next, cmd := m.Update(msg)
	m = next.(authLoginModel)
	if !m.saved {
		t.Error("expected saved")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected quit after login")
	}
}

func TestAuthLogin_PrefilledUsernameFocusesPassword(t *testing.T) {
	m, _ := newTestLogin(t, "ops", nil)
	if m.focus != fieldPassword {
		t.Errorf("focus = %d, want password", m.focus)
	}
	if m.username() != "ops" {
		t.Errorf("username = %q", m.username())
	}
}

func TestAuthLogin_EmptyFieldsRejectedLocally(t *testing.T) {
	m, calls := newTestLogin(t, "", nil)

	m, _ = sendKey(m, tea.KeyTab)
	m, cmd := sendKey(m, tea.KeyEnter)
	if cmd != nil || m.err == nil || !strings.Contains(m.err.Error(), "username") {
		t.Errorf("expected username error, got %v", m.err)
	}
	if m.focus != fieldUsername {
		t.Error("expected focus back on username")
	}

	m = typeText(m, "ops")
	m, _ = sendKey(m, tea.KeyTab)
	m, _ = sendKey(m, tea.KeyEnter)
	if m.err == nil || !strings.Contains(m.err.Error(), "password") {
		t.Errorf("expected password error, got %v", m.err)
	}
	if len(*calls) != 0 {
		t.Errorf("expected no login calls, got %d", len(*calls))
	}
}

func TestAuthLogin_ServerErrorShowsBody(t *testing.T) {
	serverErr := &api.RequestError{Method: "POST", Path: "/login", StatusCode: 401, Body: "Invalid credentials"}
	m, _ := newTestLogin(t, "ops", serverErr)

	m = typeText(m, "wrong")
	m, cmd := sendKey(m, tea.KeyEnter)
	next, _ := m.Update(runCmd(cmd))
	m = next.(authLoginModel)

	if m.saved || m.pending {
		t.Errorf("saved=%v pending=%v after failure", m.saved, m.pending)
	}
	if !errors.Is(m.err, serverErr) {
		t.Errorf("err = %v", m.err)
	}
	if m.inputs[fieldPassword].Value() != "" {
		t.Error("password should be cleared after a failed login")
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "Invalid credentials") {
		t.Errorf("view missing server message:\n%s", view)
	}
}

func TestAuthLogin_EscCancels(t *testing.T) {
	m, _ := newTestLogin(t, "", nil)
	m, cmd := sendKey(m, tea.KeyEsc)
	if !m.quitting || m.saved {
		t.Errorf("quitting=%v saved=%v", m.quitting, m.saved)
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected quit")
	}
}
