package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskflow/internal/auth"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/ui/keys"
	"github.com/tgienger/taskflow/internal/ui/styles"
)

// Authenticator is the part of auth.Session the sign-in screens need
type Authenticator interface {
	Login(ctx context.Context, email, password string) (models.User, error)
	Signup(ctx context.Context, email, password, name string) (models.User, error)
}

type authMode int

const (
	modeLanding authMode = iota
	modeLogin
	modeSignup
)

// LoggedIn signals that the session now holds a user
type LoggedIn struct {
	User models.User
}

type authResultMsg struct {
	seq  int
	user models.User
	err  error
}

// AuthView is the landing screen with the login and signup forms
type AuthView struct {
	auth   Authenticator
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int

	mode     authMode
	name     textinput.Model
	email    textinput.Model
	password textinput.Model
	focusIdx int

	spinner spinner.Model
	pending bool
	seq     int
	cancel  context.CancelFunc
	err     string

	// Help popup (shown with ? on the landing screen)
	showHelpPopup bool
}

func NewAuthView(a Authenticator) *AuthView {
	s := styles.NewStyles()

	name := textinput.New()
	name.Placeholder = "Your name"
	name.CharLimit = 100

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Current.Primary)

	return &AuthView{
		auth:     a,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		name:     name,
		email:    email,
		password: password,
		spinner:  sp,
	}
}

func (v *AuthView) Init() tea.Cmd {
	return nil
}

// inputs lists the form fields in tab order for the current mode
func (v *AuthView) inputs() []*textinput.Model {
	if v.mode == modeSignup {
		return []*textinput.Model{&v.name, &v.email, &v.password}
	}
	return []*textinput.Model{&v.email, &v.password}
}

// submitIdx is the focus index of the submit button
func (v *AuthView) submitIdx() int {
	return len(v.inputs())
}

func (v *AuthView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case spinner.TickMsg:
		if !v.pending {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case authResultMsg:
		if msg.seq != v.seq {
			return v, nil
		}
		v.pending = false
		v.cancel = nil
		if msg.err != nil {
			if !errors.Is(msg.err, context.Canceled) {
				v.err = authErrorText(msg.err)
			}
			return v, nil
		}
		user := msg.user
		return v, func() tea.Msg { return LoggedIn{User: user} }

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.pending {
			return v.updatePending(msg)
		}
		if v.mode == modeLanding {
			return v.updateLanding(msg)
		}
		return v.updateForm(msg)
	}

	return v, nil
}

func (v *AuthView) updatePending(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		v.cancelPending()
		return v, tea.Quit
	case key.Matches(msg, v.keys.Back):
		v.cancelPending()
		return v, nil
	}
	return v, nil
}

func (v *AuthView) cancelPending() {
	if v.cancel != nil {
		v.cancel()
	}
	v.cancel = nil
	v.pending = false
	v.seq++
}

func (v *AuthView) updateLanding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Login), key.Matches(msg, v.keys.Enter):
		return v, v.openForm(modeLogin)
	case key.Matches(msg, v.keys.Signup):
		return v, v.openForm(modeSignup)
	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
	}
	return v, nil
}

func (v *AuthView) openForm(mode authMode) tea.Cmd {
	v.mode = mode
	v.err = ""
	v.focusIdx = 0
	v.name.Reset()
	v.email.Reset()
	v.password.Reset()
	v.updateFocus()
	return textinput.Blink
}

func (v *AuthView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := v.submitIdx() + 1

	switch {
	case msg.String() == "ctrl+c":
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		v.mode = modeLanding
		v.err = ""
		return v, nil

	case msg.String() == "ctrl+t":
		// switch between login and signup, keeping what was typed
		if v.mode == modeLogin {
			v.mode = modeSignup
		} else {
			v.mode = modeLogin
		}
		v.err = ""
		v.focusIdx = 0
		v.updateFocus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Save):
		return v, v.submit()

	case key.Matches(msg, v.keys.Tab), msg.String() == "down":
		v.focusIdx = (v.focusIdx + 1) % n
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.ShiftTab), msg.String() == "up":
		v.focusIdx = (v.focusIdx + n - 1) % n
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < v.submitIdx()-1 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.submit()
	}

	if v.focusIdx < v.submitIdx() {
		var cmd tea.Cmd
		in := v.inputs()[v.focusIdx]
		*in, cmd = in.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *AuthView) updateFocus() {
	v.name.Blur()
	v.email.Blur()
	v.password.Blur()
	if ins := v.inputs(); v.focusIdx < len(ins) {
		ins[v.focusIdx].Focus()
	}
}

func (v *AuthView) submit() tea.Cmd {
	v.err = ""
	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.pending = true
	v.seq++
	seq := v.seq

	a := v.auth
	mode := v.mode
	email, password, name := v.email.Value(), v.password.Value(), v.name.Value()

	call := func() tea.Msg {
		defer cancel()
		var (
			u   models.User
			err error
		)
		if mode == modeSignup {
			u, err = a.Signup(ctx, email, password, name)
		} else {
			u, err = a.Login(ctx, email, password)
		}
		return authResultMsg{seq: seq, user: u, err: err}
	}
	return tea.Batch(v.spinner.Tick, call)
}

func authErrorText(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		msg, ok := strings.CutPrefix(err.Error(), auth.ErrInvalidInput.Error()+": ")
		if !ok || msg == "" {
			return "Please fill in every field"
		}
		return strings.ToUpper(msg[:1]) + msg[1:]
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, auth.ErrEmailTaken):
		return "An account with this email already exists"
	}
	return "Authentication failed: " + err.Error()
}

// View renders the view
func (v *AuthView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.mode == modeLanding {
		return v.renderLanding()
	}
	return v.renderForm()
}

func (v *AuthView) renderLanding() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.ButtonPrimary.Render(" TF "),
		"",
		s.Title.Render("TaskFlow"),
		s.TitleMuted.Render("Organize your tasks, track your progress."),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonFocused.Render(" Log in (l) "),
			"  ",
			s.Button.Render(" Sign up (s) "),
		),
		"",
		s.TitleMuted.Render("? help • q quit"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *AuthView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	formTitle, submitLabel, switchHint := "Log in", " Log in ", "ctrl+t: create an account"
	if v.mode == modeSignup {
		formTitle, submitLabel, switchHint = "Sign up", " Create account ", "ctrl+t: already registered?"
	}

	labels := []string{"Email:", "Password:"}
	if v.mode == modeSignup {
		labels = []string{"Name:", "Email:", "Password:"}
	}

	rows := []string{s.Title.Render(formTitle), ""}
	for i, in := range v.inputs() {
		style := s.Input
		if i == v.focusIdx {
			style = s.InputFocused
		}
		rows = append(rows, labels[i], style.Width(inputWidth).Render(in.View()), "")
	}

	btnStyle := s.Button
	if v.focusIdx == v.submitIdx() {
		btnStyle = s.ButtonFocused
	}
	if v.pending {
		rows = append(rows, v.spinner.View()+" "+s.TitleMuted.Render("Signing in..."))
	} else {
		rows = append(rows, btnStyle.Render(submitLabel))
	}
	if v.err != "" {
		rows = append(rows, "", s.FieldError.Render(v.err))
	}
	rows = append(rows, "",
		s.TitleMuted.Render(fmt.Sprintf("Tab: next • ↵: submit • %s • Esc: back", switchHint)),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *AuthView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("l") + "      log in",
		s.HelpKey.Render("s") + "      sign up",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
