package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/tasks"
	"github.com/tgienger/taskflow/internal/ui/styles"
	"github.com/tgienger/taskflow/internal/ui/views"
	"github.com/tgienger/taskflow/internal/view"
	"gopkg.in/yaml.v3"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		status     string
		search     string
		categories []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List tasks matching the status, search text and categories given.

Examples:
  taskflow list --status active
  taskflow list --search report --category Travail --category Santé`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := view.ParseStatus(status)
			if err != nil {
				return err
			}

			e, err := openEnv(opts.configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			f := view.Filter{Status: st, Search: search, Categories: categories}
			visible := view.Visible(e.store.All(), f)
			out := cmd.OutOrStdout()

			if summary := view.Summarize(visible, f).String(); summary != "" {
				fmt.Fprintln(out, summary)
			}
			if len(visible) == 0 {
				fmt.Fprintln(out, "No tasks found")
				return nil
			}
			fmt.Fprintln(out, renderTable(visible, time.Now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", string(view.StatusAll), "all, active or completed")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive text in title or description")
	cmd.Flags().StringArrayVar(&categories, "category", nil, "only tasks in these categories (repeatable)")
	return cmd
}

func renderTable(ts []models.Task, now time.Time) string {
	overdue := lipgloss.NewStyle().Foreground(styles.Current.Error).Padding(0, 1)
	header := lipgloss.NewStyle().Foreground(styles.Current.Primary).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(ts))
	for _, t := range ts {
		done := "[ ]"
		if t.Completed {
			done = "[x]"
		}
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.In(time.Local).Format(views.DateLayout)
		}
		rows = append(rows, []string{shortID(t.ID), done, t.Title, t.Priority.Label(), t.Category, due})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DONE", "TITLE", "PRIORITY", "CATEGORY", "DUE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col == 5 && ts[row].IsOverdue(now) {
				return overdue
			}
			return cell
		}).
		Render()
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts.configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			m := view.Dashboard(e.store.All(), time.Now())
			out := cmd.OutOrStdout()
			if format != "text" {
				return encode(out, format, m)
			}
			fmt.Fprintf(out, "%-17s%d\n", "Total:", m.Total)
			fmt.Fprintf(out, "%-17s%d\n", "Completed:", m.Completed)
			fmt.Fprintf(out, "%-17s%d\n", "Pending:", m.Pending)
			fmt.Fprintf(out, "%-17s%d\n", "Overdue:", m.Overdue)
			fmt.Fprintf(out, "%-17s%d%%\n", "Completion rate:", m.CompletionRate)
			fmt.Fprintf(out, "%d of %d tasks completed\n", m.Completed, m.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "text, json or yaml")
	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var (
		description string
		priority    string
		category    string
		due         string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Long: `Create a task. The category defaults to the configured default category.

Examples:
  taskflow add "Project plan" --priority high --category Travail
  taskflow add "Doctor" --due 2026-05-09`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, err := views.ParseDueDate(due)
			if err != nil {
				return err
			}

			e, err := openEnv(opts.configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := e.store.Create(tasks.NewTask{
				Title:       args[0],
				Description: description,
				Priority:    models.Priority(strings.ToLower(priority)),
				Category:    category,
				DueDate:     dueDate,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s: %s\n", shortID(t.ID), t.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(models.PriorityMedium), "low, medium or high")
	cmd.Flags().StringVarP(&category, "category", "c", "", "task category")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	return cmd
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var (
		title       string
		description string
		priority    string
		category    string
		due         string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Long: `Change the fields given as flags. The id may be any unique prefix.
An empty --due removes the due date.

Examples:
  taskflow edit 3f2a --title "Dentist" --due ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var patch tasks.Patch
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("priority") {
				p := models.Priority(strings.ToLower(priority))
				patch.Priority = &p
			}
			if flags.Changed("category") {
				patch.Category = &category
			}
			if flags.Changed("due") {
				d, err := views.ParseDueDate(due)
				if err != nil {
					return err
				}
				patch.DueDate = d
				patch.ClearDueDate = d == nil
			}
			if patch.IsEmpty() {
				return errors.New("nothing to change: pass at least one field flag")
			}

			e, err := openEnv(opts.configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := e.store.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := e.store.Update(t.ID, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", shortID(t.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD), empty to clear")
	return cmd
}

func newDoneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between completed and active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts.configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := e.store.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := e.store.ToggleComplete(t.ID); err != nil {
				return err
			}

			state := "Completed"
			if t.Completed {
				state = "Reopened"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s task %s: %s\n", state, shortID(t.ID), t.Title)
			return nil
		},
	}
}

func newRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts.configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := e.store.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := e.store.Delete(t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s: %s\n", shortID(t.ID), t.Title)
			return nil
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every task as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unknown format %q: use json or yaml", format)
			}

			e, err := openEnv(opts.configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			all := e.store.All()
			if all == nil {
				all = []models.Task{}
			}
			return encode(cmd.OutOrStdout(), format, all)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or yaml")
	return cmd
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}
