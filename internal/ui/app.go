package ui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/taskflow/internal/auth"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewAuth View = iota
	ViewTasks
)

// Session is what the app needs from auth.Session
type Session interface {
	views.Authenticator
	Current() *models.User
	Logout() error
}

var _ Session = (*auth.Session)(nil)

type App struct {
	session     Session
	store       views.TaskStore
	opts        views.TaskViewOptions
	log         *slog.Logger
	currentView View
	authView    *views.AuthView
	taskList    *views.TaskListView
	width       int
	height      int
}

// NewApp creates the application. A remembered user goes straight to the
// dashboard, anyone else lands on the sign-in screen.
func NewApp(session Session, store views.TaskStore, opts views.TaskViewOptions, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	a := &App{
		session:  session,
		store:    store,
		opts:     opts,
		log:      log,
		authView: views.NewAuthView(session),
	}
	if u := session.Current(); u != nil {
		a.currentView = ViewTasks
		a.taskList = views.NewTaskListView(store, *u, opts)
	}
	return a
}

// CurrentView reports which screen is showing
func (a *App) CurrentView() View {
	return a.currentView
}

func (a *App) Init() tea.Cmd {
	if a.currentView == ViewTasks {
		return a.taskList.Init()
	}
	return a.authView.Init()
}

func (a *App) openTasks(user models.User) tea.Cmd {
	a.currentView = ViewTasks
	a.taskList = views.NewTaskListView(a.store, user, a.opts)

	// Initialize task list with window size
	return tea.Batch(
		a.taskList.Init(),
		a.resize,
	)
}

func (a *App) resize() tea.Msg {
	return tea.WindowSizeMsg{Width: a.width, Height: a.height}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always update the auth view size since it persists
		a.authView.Update(msg)

	case views.LoggedIn:
		a.log.Info("opening dashboard", "user_id", msg.User.ID)
		return a, a.openTasks(msg.User)

	case views.LogoutRequested:
		if err := a.session.Logout(); err != nil {
			a.log.Error("logout failed", "error", err)
			return a, nil
		}
		a.currentView = ViewAuth
		a.taskList = nil
		a.authView = views.NewAuthView(a.session)
		return a, tea.Batch(a.authView.Init(), a.resize)
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewAuth:
		_, cmd = a.authView.Update(msg)
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewTasks:
		if a.taskList != nil {
			return a.taskList.View()
		}
	}
	return a.authView.View()
}
