// Package login provides the sign-in screen shown while no session exists.
package login

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/app"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/components"
)

type mode int

const (
	modeLogin mode = iota
	modeRegister
	modeForgot
)

func (md mode) title() string {
	switch md {
	case modeRegister:
		return "Create an account"
	case modeForgot:
		return "Reset your password"
	default:
		return "Sign in to Vertex"
	}
}

type field int

const (
	fieldName field = iota
	fieldEmail
	fieldPassword
	fieldConfirm
)

var fieldLabels = map[field]string{
	fieldName:     "Name",
	fieldEmail:    "Email",
	fieldPassword: "Password",
	fieldConfirm:  "Confirm password",
}

// fields lists the inputs of each form, in focus order.
var fields = map[mode][]field{
	modeLogin:    {fieldEmail, fieldPassword},
	modeRegister: {fieldName, fieldEmail, fieldPassword, fieldConfirm},
	modeForgot:   {fieldEmail},
}

type keyMap struct {
	Submit   key.Binding
	Next     key.Binding
	Prev     key.Binding
	Register key.Binding
	Forgot   key.Binding
	Back     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Register: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "register"),
		),
		Forgot: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "forgot password"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back to sign in"),
		),
	}
}

// Model is the login screen.
type Model struct {
	state      *app.State
	keys       keyMap
	inputs     map[field]*textinput.Model
	mode       mode
	focus      int
	submitting bool
	spinner    components.LoadingSpinner
	err        string
	notice     string
	width      int
	height     int
}

// New creates the login screen.
func New(state *app.State) *Model {
	m := &Model{
		state:   state,
		keys:    defaultKeyMap(),
		inputs:  make(map[field]*textinput.Model, len(fieldLabels)),
		spinner: components.NewSpinner("Signing in..."),
	}

	for f := range fieldLabels {
		in := textinput.New()
		in.CharLimit = 100
		in.Width = 36
		switch f {
		case fieldName:
			in.Placeholder = "Ada Lovelace"
		case fieldEmail:
			in.Placeholder = "you@example.com"
		case fieldPassword, fieldConfirm:
			in.Placeholder = "at least 6 characters"
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		m.inputs[f] = &in
	}

	m.setMode(modeLogin)
	return m
}

// Init starts the cursor blink.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// CapturingInput is always true: every key belongs to the form.
func (m *Model) CapturingInput() bool {
	return true
}

// Update handles messages for the login screen.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.AuthResultMsg:
		m.finishSubmit()
		if msg.Error != nil {
			m.err = app.ErrorText(msg.Error)
			return m, nil
		}
		m.reset()
		return m, nil

	case app.ForgotPasswordResultMsg:
		m.finishSubmit()
		if msg.Error != nil {
			m.err = app.ErrorText(msg.Error)
			return m, nil
		}
		m.setMode(modeLogin)
		m.notice = msg.Message
		return m, textinput.Blink

	case app.SessionChangedMsg:
		if !msg.Authenticated {
			m.reset()
			m.notice = msg.Reason
		}
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	if cmd != nil {
		return m, cmd
	}
	return m, m.updateFocused(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Register):
		if m.mode == modeRegister {
			m.setMode(modeLogin)
		} else {
			m.setMode(modeRegister)
		}
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Forgot):
		m.setMode(modeForgot)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Back):
		if m.mode != modeLogin {
			m.setMode(modeLogin)
			return m, textinput.Blink
		}
		m.err = ""
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Submit):
		if m.focus < len(fields[m.mode])-1 {
			m.moveFocus(1)
			return m, textinput.Blink
		}
		return m, m.submit()
	}

	return m, m.updateFocused(msg)
}

// submit sends the current form to the app. Validation happens in the
// service layer and comes back as an AuthResultMsg error.
func (m *Model) submit() tea.Cmd {
	m.err = ""
	m.notice = ""
	m.submitting = true

	var out tea.Msg
	label := "Signing in..."
	switch m.mode {
	case modeRegister:
		label = "Creating account..."
		out = app.RegisterMsg{Registration: models.Registration{
			Name:     strings.TrimSpace(m.value(fieldName)),
			Email:    strings.TrimSpace(m.value(fieldEmail)),
			Password: m.value(fieldPassword),
			Confirm:  m.value(fieldConfirm),
			UserType: "consumer",
		}}
	case modeForgot:
		label = "Sending reset link..."
		out = app.ForgotPasswordMsg{Reset: models.PasswordReset{
			Email: strings.TrimSpace(m.value(fieldEmail)),
		}}
	default:
		out = app.LoginMsg{Credentials: models.Credentials{
			Email:    strings.TrimSpace(m.value(fieldEmail)),
			Password: m.value(fieldPassword),
		}}
	}

	return tea.Batch(m.spinner.Start(label), func() tea.Msg { return out })
}

func (m *Model) finishSubmit() {
	m.submitting = false
	m.spinner.Stop()
}

// reset clears secrets and returns to the sign-in form. The email is kept.
func (m *Model) reset() {
	for _, f := range []field{fieldName, fieldPassword, fieldConfirm} {
		m.inputs[f].SetValue("")
	}
	m.err = ""
	m.notice = ""
	m.setMode(modeLogin)
}

func (m *Model) setMode(md mode) {
	m.mode = md
	m.err = ""
	m.notice = ""
	m.focus = 0
	m.applyFocus()
}

func (m *Model) moveFocus(delta int) {
	n := len(fields[m.mode])
	m.focus = (m.focus + delta + n) % n
	m.applyFocus()
}

func (m *Model) applyFocus() {
	for _, in := range m.inputs {
		in.Blur()
	}
	m.inputs[m.focusedField()].Focus()
}

func (m *Model) focusedField() field {
	return fields[m.mode][m.focus]
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	in := m.inputs[m.focusedField()]
	updated, cmd := in.Update(msg)
	*in = updated
	return cmd
}

func (m *Model) value(f field) string {
	return m.inputs[f].Value()
}

// SetSize sets the available size for the login screen.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.mode == modeLogin {
		return []key.Binding{m.keys.Submit, m.keys.Register, m.keys.Forgot}
	}
	return []key.Binding{m.keys.Submit, m.keys.Back}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Submit, m.keys.Next, m.keys.Prev},
		{m.keys.Register, m.keys.Forgot, m.keys.Back},
	}
}
