package views

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/tasks"
	"github.com/tgienger/taskflow/internal/ui/keys"
	"github.com/tgienger/taskflow/internal/ui/styles"
	"github.com/tgienger/taskflow/internal/view"
)

// DateLayout is how due dates are typed and shown
const DateLayout = "2006-01-02"

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// FocusArea represents which part of the UI has focus
type FocusArea int

const (
	FocusSearchInput FocusArea = iota
	FocusCategoryDropdown
	FocusTaskList
)

const numFocusAreas = 3

// Edit form fields in tab order
const (
	fieldTitle = iota
	fieldDesc
	fieldPriority
	fieldCategory
	fieldDue
	fieldSave
	numFields
)

// TaskStore is the part of tasks.Store the dashboard mutates
type TaskStore interface {
	All() []models.Task
	Create(tasks.NewTask) (models.Task, error)
	Update(id string, p tasks.Patch) error
	ToggleComplete(id string) error
	Delete(id string) error
	DefaultCategory() string
}

// TaskViewOptions configures the dashboard
type TaskViewOptions struct {
	// Categories offered by the task form
	Categories []string

	// Now is the clock used for overdue checks
	Now func() time.Time
}

// LogoutRequested asks the app to end the session
type LogoutRequested struct{}

// TaskListView is the dashboard: metrics, filters and the task list
type TaskListView struct {
	store      TaskStore
	user       models.User
	categories []string
	now        func() time.Time
	styles     *styles.Styles
	keys       keys.KeyMap

	width  int
	height int

	// Latest snapshot and what the filter lets through
	all     []models.Task
	visible []models.Task
	filter  view.Filter

	// UI state
	focus       FocusArea
	cursor      int
	scrollY     int
	searchInput textinput.Model

	// Category dropdown state
	categoryDropdownOpen bool
	categoryCursor       int

	// Task creation/editing
	editing        bool
	editingNew     bool
	editID         string
	editTitle      textinput.Model
	editDesc       textarea.Model
	editDue        textinput.Model
	editPriority   models.Priority
	editCategories []string
	editCategory   int
	editFocusIdx   int
	titleErr       string
	dueErr         string
	formErr        string

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	// Last failed operation, shown in the status bar
	status string

	// Help popup
	showHelpPopup bool
}

// NewTaskListView creates the dashboard for user
func NewTaskListView(store TaskStore, user models.User, opts TaskViewOptions) *TaskListView {
	s := styles.NewStyles()

	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100

	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 1000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	editDue := textinput.New()
	editDue.Placeholder = "YYYY-MM-DD"
	editDue.CharLimit = 10

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	categories := opts.Categories
	if len(categories) == 0 {
		categories = []string{store.DefaultCategory()}
	}

	return &TaskListView{
		store:       store,
		user:        user,
		categories:  categories,
		now:         now,
		styles:      s,
		keys:        keys.DefaultKeyMap(),
		filter:      view.Filter{Status: view.StatusAll},
		focus:       FocusTaskList,
		searchInput: search,
		editTitle:   editTitle,
		editDesc:    editDesc,
		editDue:     editDue,
	}
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return v.loadTasks
}

type tasksLoadedMsg struct {
	tasks []models.Task
}

func (v *TaskListView) loadTasks() tea.Msg {
	return tasksLoadedMsg{tasks: v.store.All()}
}

// refresh recomputes the visible list from the snapshot and filter
func (v *TaskListView) refresh() {
	v.visible = view.Visible(v.all, v.filter)
	if v.cursor >= len(v.visible) {
		v.cursor = max(0, len(v.visible)-1)
	}
	if v.scrollY > v.cursor {
		v.scrollY = v.cursor
	}
}

func (v *TaskListView) selected() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.visible) {
		return models.Task{}, false
	}
	return v.visible[v.cursor], true
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.editDesc.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case tasksLoadedMsg:
		v.all = msg.tasks
		v.refresh()
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		if v.categoryDropdownOpen {
			return v.updateCategoryDropdown(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Don't process hotkeys while typing a search
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, nil
		case key.Matches(msg, v.keys.Tab):
			v.cycleFocus(1)
			return v, nil
		case key.Matches(msg, v.keys.ShiftTab):
			v.cycleFocus(-1)
			return v, nil
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			v.filter.Search = v.searchInput.Value()
			v.refresh()
			return v, cmd
		}
	}

	v.status = ""

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		if v.filter.Search != "" {
			v.searchInput.Reset()
			v.filter.Search = ""
			v.refresh()
		}
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, nil

	case key.Matches(msg, v.keys.ShiftTab):
		v.cycleFocus(-1)
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.focus == FocusTaskList && v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.focus == FocusTaskList && v.cursor < len(v.visible)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.NextStatus):
		v.filter = v.filter.NextStatus()
		v.cursor, v.scrollY = 0, 0
		v.refresh()
		return v, nil

	case key.Matches(msg, v.keys.PrevStatus):
		v.filter = v.filter.PrevStatus()
		v.cursor, v.scrollY = 0, 0
		v.refresh()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.focus {
		case FocusCategoryDropdown:
			v.openCategoryDropdown()
			return v, nil
		case FocusTaskList:
			if t, ok := v.selected(); ok {
				v.startEditTask(t)
				return v, textinput.Blink
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		if t, ok := v.selected(); ok && v.focus == FocusTaskList {
			if err := v.store.ToggleComplete(t.ID); err != nil {
				v.status = err.Error()
			}
			return v, v.loadTasks
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if t, ok := v.selected(); ok && v.focus == FocusTaskList {
			v.startEditTask(t)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.selected(); ok && v.focus == FocusTaskList {
			v.confirmingDelete = true
			v.deleteTargetID = t.ID
			v.deleteTargetName = t.Title
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.focus = FocusSearchInput
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Filter):
		v.focus = FocusCategoryDropdown
		v.openCategoryDropdown()
		return v, nil

	case key.Matches(msg, v.keys.ClearCats):
		v.filter = v.filter.ClearCategories()
		v.refresh()
		return v, nil

	case key.Matches(msg, v.keys.Logout):
		return v, func() tea.Msg { return LogoutRequested{} }

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) openCategoryDropdown() {
	v.categoryDropdownOpen = true
	v.categoryCursor = 0
}

func (v *TaskListView) updateCategoryDropdown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	categories := view.Categories(v.all)

	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Filter):
		v.categoryDropdownOpen = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.categoryCursor > 0 {
			v.categoryCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.categoryCursor < len(categories)-1 {
			v.categoryCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Toggle):
		if v.categoryCursor < len(categories) {
			v.filter = v.filter.ToggleCategory(categories[v.categoryCursor])
			v.cursor, v.scrollY = 0, 0
			v.refresh()
		}
		return v, nil

	case key.Matches(msg, v.keys.ClearCats):
		v.filter = v.filter.ClearCategories()
		v.refresh()
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if err := v.store.Delete(v.deleteTargetID); err != nil {
			v.status = err.Error()
		}
		return v, v.loadTasks
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % numFields
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.ShiftTab):
		v.editFocusIdx = (v.editFocusIdx + numFields - 1) % numFields
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.editFocusIdx {
		case fieldSave:
			return v, v.saveTask()
		case fieldDesc:
			// newlines in the description
		default:
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		}

	case key.Matches(msg, v.keys.Left), key.Matches(msg, v.keys.Right):
		dir := 1
		if key.Matches(msg, v.keys.Left) {
			dir = -1
		}
		switch v.editFocusIdx {
		case fieldPriority:
			v.editPriority = cyclePriority(v.editPriority, dir)
			return v, nil
		case fieldCategory:
			n := len(v.editCategories)
			v.editCategory = (v.editCategory + dir + n) % n
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case fieldTitle:
		v.editTitle, cmd = v.editTitle.Update(msg)
		if strings.TrimSpace(v.editTitle.Value()) != "" {
			v.titleErr = ""
		}
	case fieldDesc:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case fieldDue:
		v.editDue, cmd = v.editDue.Update(msg)
		v.dueErr = ""
	}
	return v, cmd
}

func cyclePriority(p models.Priority, dir int) models.Priority {
	all := models.ValidPriorities()
	i := max(slices.Index(all, p), 0)
	return all[(i+dir+len(all))%len(all)]
}

func (v *TaskListView) cycleFocus(dir int) {
	v.searchInput.Blur()
	v.focus = FocusArea((int(v.focus) + dir + numFocusAreas) % numFocusAreas)
	if v.focus == FocusSearchInput {
		v.searchInput.Focus()
	}
}

func (v *TaskListView) visibleItems() int {
	// Each task item is 2 lines + 1 margin
	available := max(v.height-22, 3)
	return max(available/3, 1)
}

func (v *TaskListView) ensureVisible() {
	n := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+n {
		v.scrollY = v.cursor - n + 1
	}
}

func (v *TaskListView) resetForm() {
	v.editing = true
	v.editFocusIdx = fieldTitle
	v.titleErr, v.dueErr, v.formErr = "", "", ""
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editDue.Reset()
	v.editCategories = slices.Clone(v.categories)
}

func (v *TaskListView) startNewTask() {
	v.resetForm()
	v.editingNew = true
	v.editID = ""
	v.editPriority = models.PriorityMedium
	v.editCategory = max(slices.Index(v.editCategories, v.store.DefaultCategory()), 0)
	v.updateEditFocus()
}

func (v *TaskListView) startEditTask(task models.Task) {
	v.resetForm()
	v.editingNew = false
	v.editID = task.ID
	v.editTitle.SetValue(task.Title)
	v.editDesc.SetValue(task.Description)
	if task.DueDate != nil {
		v.editDue.SetValue(task.DueDate.In(time.Local).Format(DateLayout))
	}
	v.editPriority = task.Priority
	if !task.Priority.IsValid() {
		v.editPriority = models.PriorityMedium
	}
	idx := slices.Index(v.editCategories, task.Category)
	if idx < 0 {
		v.editCategories = append([]string{task.Category}, v.editCategories...)
		idx = 0
	}
	v.editCategory = idx
	v.updateEditFocus()
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editDue.Blur()

	switch v.editFocusIdx {
	case fieldTitle:
		v.editTitle.Focus()
	case fieldDesc:
		v.editDesc.Focus()
	case fieldDue:
		v.editDue.Focus()
	}
}

// ParseDueDate reads a YYYY-MM-DD date as local midnight. Empty means no date.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return nil, errors.New("due date must be YYYY-MM-DD")
	}
	return &d, nil
}

func (v *TaskListView) saveTask() tea.Cmd {
	v.formErr = ""
	title := strings.TrimSpace(v.editTitle.Value())
	if title == "" {
		v.titleErr = "Title is required"
	}
	due, err := ParseDueDate(v.editDue.Value())
	if err != nil {
		v.dueErr = err.Error()
	}
	if v.titleErr != "" {
		v.editFocusIdx = fieldTitle
		v.updateEditFocus()
		return nil
	}
	if v.dueErr != "" {
		v.editFocusIdx = fieldDue
		v.updateEditFocus()
		return nil
	}

	desc := v.editDesc.Value()
	priority := v.editPriority
	category := v.editCategories[v.editCategory]

	if v.editingNew {
		_, err = v.store.Create(tasks.NewTask{
			Title:       title,
			Description: desc,
			Priority:    priority,
			Category:    category,
			DueDate:     due,
		})
	} else {
		err = v.store.Update(v.editID, tasks.Patch{
			Title:        &title,
			Description:  &desc,
			Priority:     &priority,
			Category:     &category,
			DueDate:      due,
			ClearDueDate: due == nil,
		})
	}
	if err != nil {
		if errors.Is(err, tasks.ErrValidation) {
			v.formErr = strings.TrimPrefix(err.Error(), tasks.ErrValidation.Error()+": ")
		} else {
			v.formErr = "Could not save: " + err.Error()
		}
		return nil
	}

	v.editing = false
	return v.loadTasks
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.editing {
		return v.renderEditForm()
	}

	var b strings.Builder

	b.WriteString(v.renderHeader())
	b.WriteString("\n")
	b.WriteString(v.renderDashboard())
	b.WriteString("\n")
	if chips := v.renderCategoryChips(); chips != "" {
		b.WriteString(chips)
		b.WriteString("\n")
	}
	b.WriteString(v.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())

	if v.status != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.FieldError.Render(v.status))
	}
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	isNarrow := contentWidth < 60

	searchStyle := s.Input
	if v.focus == FocusSearchInput {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(contentWidth-8, 10, 30)
	searchBox := searchStyle.Width(searchWidth).Render(v.searchInput.View())

	catStyle := s.Button
	if v.focus == FocusCategoryDropdown {
		catStyle = s.ButtonFocused
	}
	catLabel := "All"
	if n := len(v.filter.Categories); n > 0 {
		catLabel = fmt.Sprintf("%d selected", n)
	}
	if !isNarrow {
		catLabel = "Categories: " + catLabel
	}
	catBtn := catStyle.Render(catLabel + " ▼")

	title := lipgloss.JoinHorizontal(lipgloss.Top,
		s.Title.Render("TaskFlow"),
		s.TitleMuted.Render("  "+v.user.Name),
	)

	var controls string
	if isNarrow {
		controls = lipgloss.JoinVertical(lipgloss.Left, searchBox, catBtn)
	} else {
		controls = lipgloss.JoinHorizontal(lipgloss.Center, searchBox, "  ", catBtn)
	}

	dropdown := ""
	if v.categoryDropdownOpen {
		dropdown = "\n" + v.renderCategoryDropdown()
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, controls+dropdown)
}

func (v *TaskListView) renderCategoryDropdown() string {
	s := v.styles
	categories := view.Categories(v.all)
	if len(categories) == 0 {
		return s.Popup.Render(s.TitleMuted.Render("No categories yet"))
	}

	var items []string
	for i, c := range categories {
		itemStyle := s.ListItem
		if i == v.categoryCursor {
			itemStyle = s.ListSelected
		}
		checkbox := "[ ]"
		if v.filter.HasCategory(c) {
			checkbox = "[x]"
		}
		dot := lipgloss.NewStyle().Foreground(styles.CategoryColor(c)).Render("●")
		items = append(items, itemStyle.Render(checkbox+" "+dot+" "+c))
	}
	items = append(items, "", s.TitleMuted.Render("space: toggle • c: clear • esc: close"))

	return s.Popup.Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *TaskListView) renderDashboard() string {
	s := v.styles
	m := view.Dashboard(v.all, v.now())
	contentWidth := styles.ContentWidth(v.width)

	card := func(label string, value int, color lipgloss.Color) string {
		return s.Card.Render(lipgloss.JoinVertical(lipgloss.Left,
			s.TitleMuted.Render(label),
			s.CardValue.Foreground(color).Render(fmt.Sprintf("%d", value)),
		))
	}
	t := styles.Current
	cards := []string{
		card("Total", m.Total, t.Primary),
		card("Completed", m.Completed, t.Success),
		card("Pending", m.Pending, t.Warning),
		card("Overdue", m.Overdue, t.Error),
	}
	var row string
	if contentWidth < 60 {
		row = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1]),
			lipgloss.JoinHorizontal(lipgloss.Top, cards[2], cards[3]),
		)
	} else {
		row = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	barWidth := clamp(contentWidth-20, 10, 40)
	filled := barWidth * m.CompletionRate / 100
	bar := s.BarFill.Render(strings.Repeat("█", filled)) +
		s.BarEmpty.Render(strings.Repeat("░", barWidth-filled))

	progress := lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("Completion rate  %s %d%%", bar, m.CompletionRate),
		s.TitleMuted.Render(fmt.Sprintf("%d of %d tasks completed", m.Completed, m.Total)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, row, progress)
}

func (v *TaskListView) renderCategoryChips() string {
	if len(v.filter.Categories) == 0 {
		return ""
	}
	s := v.styles
	var chips []string
	for _, c := range v.filter.Categories {
		chips = append(chips, s.ChipSelected.Render(c))
	}
	chips = append(chips, s.TitleMuted.Render("c: clear"))
	return lipgloss.JoinHorizontal(lipgloss.Center, chips...)
}

func (v *TaskListView) renderTabs() string {
	s := v.styles
	counts := view.Counts(v.all)
	var tabs []string
	for _, st := range view.Statuses() {
		style := s.Tab
		if st == v.filter.Status {
			style = s.TabActive
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("%s (%d)", st.Label(), counts.For(st))))
	}

	heading := s.Title.Render("My tasks")
	if summary := view.Summarize(v.visible, v.filter).String(); summary != "" {
		heading = lipgloss.JoinVertical(lipgloss.Left, heading, s.TitleMuted.Render(summary))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		heading,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
	)
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if len(v.visible) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			s.TitleMuted.Render("No tasks found"),
			s.TitleMuted.Render("Start by creating your first task! Press 'n'."),
		)
	}

	var items []string
	endIdx := min(v.scrollY+v.visibleItems(), len(v.visible))
	now := v.now()

	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(v.visible[i], now, i == v.cursor && v.focus == FocusTaskList))
	}
	if endIdx < len(v.visible) {
		items = append(items, s.TitleMuted.Render(fmt.Sprintf("  … %d more", len(v.visible)-endIdx)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(task models.Task, now time.Time, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	checkbox := "[ ]"
	title := s.TaskTitle.Render(task.Title)
	if task.Completed {
		checkbox = "[x]"
		title = s.TaskDone.Render(task.Title)
	}
	titleLine := checkbox + " " + title + "  " + s.Priority(task.Priority).Render(task.Priority.Label())

	meta := []string{lipgloss.NewStyle().Foreground(styles.CategoryColor(task.Category)).Render(task.Category)}
	if task.DueDate != nil {
		due := "due " + task.DueDate.In(time.Local).Format(DateLayout)
		if task.IsOverdue(now) {
			meta = append(meta, s.Overdue.Render(due+" (overdue)"))
		} else {
			meta = append(meta, s.TitleMuted.Render(due))
		}
	}
	if task.Description != "" {
		desc := strings.ReplaceAll(task.Description, "\n", " ")
		if r := []rune(desc); len(r) > 40 {
			desc = string(r[:39]) + "…"
		}
		meta = append(meta, s.TitleMuted.Render(desc))
	}
	metaLine := "    " + strings.Join(meta, s.TitleMuted.Render(" • "))

	lineStyle := s.ListItem
	if selected {
		lineStyle = s.ListSelected
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lineStyle.Width(width).Render(titleLine),
		lineStyle.Width(width).Render(metaLine),
	) + "\n"
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Task"
	if !v.editingNew {
		formTitle = "Edit Task"
	}

	fieldStyle := func(idx int) lipgloss.Style {
		if v.editFocusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}
	btnStyle := s.Button
	if v.editFocusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	var priorities []string
	for _, p := range models.ValidPriorities() {
		label := p.Label()
		if p == v.editPriority {
			priorities = append(priorities, s.ChipSelected.Render(label))
		} else {
			priorities = append(priorities, s.Chip.Render(label))
		}
	}

	category := v.editCategories[v.editCategory]
	categoryLine := fmt.Sprintf("‹ %s ›", lipgloss.NewStyle().Foreground(styles.CategoryColor(category)).Render(category))

	rows := []string{
		s.Title.Render(formTitle),
		"",
		"Title:",
		fieldStyle(fieldTitle).Width(inputWidth).Render(v.editTitle.View()),
	}
	if v.titleErr != "" {
		rows = append(rows, s.FieldError.Render(v.titleErr))
	}
	rows = append(rows,
		"",
		"Description:",
		fieldStyle(fieldDesc).Render(v.editDesc.View()),
		"",
		"Priority:",
		fieldStyle(fieldPriority).Width(inputWidth).Render(lipgloss.JoinHorizontal(lipgloss.Center, priorities...)),
		"",
		"Category:",
		fieldStyle(fieldCategory).Width(inputWidth).Render(categoryLine),
		"",
		"Due date:",
		fieldStyle(fieldDue).Width(16).Render(v.editDue.View()),
	)
	if v.dueErr != "" {
		rows = append(rows, s.FieldError.Render(v.dueErr))
	}
	rows = append(rows, "", btnStyle.Render(" Save "))
	if v.formErr != "" {
		rows = append(rows, s.FieldError.Render(v.formErr))
	}
	rows = append(rows, "",
		s.TitleMuted.Render("Tab: next • ←→: choose • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}

	return v.styles.Help.Render(
		fmt.Sprintf("%s done • %s edit • %s new • %s del • %s search • %s categories • %s tabs • %s help • %s quit",
			v.styles.HelpKey.Render("space"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("f"),
			v.styles.HelpKey.Render("[ ]"),
			v.styles.HelpKey.Render("?"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("space") + "  toggle completed",
		s.HelpKey.Render("↵/e") + "    edit task",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("/") + "      search",
		s.HelpKey.Render("f") + "      filter by category",
		s.HelpKey.Render("c") + "      clear categories",
		s.HelpKey.Render("[ ]") + "    switch tab",
		s.HelpKey.Render("tab") + "    move focus",
		s.HelpKey.Render("L") + "      log out",
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

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q will be removed.", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
