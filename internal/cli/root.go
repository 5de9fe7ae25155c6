package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tgienger/taskflow/internal/ui"
	"github.com/tgienger/taskflow/internal/ui/views"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

type rootOptions struct {
	configFile string
}

// NewRootCmd builds the taskflow command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "taskflow",
		Short: "TaskFlow - personal task manager for the terminal",
		Long: `TaskFlow keeps a personal list of tasks with priorities, categories
and due dates.

Run without a subcommand to open the dashboard. The subcommands work on the
same task list from scripts and the shell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/taskflow/config.yaml)")

	root.AddCommand(
		newVersionCmd(),
		newListCmd(opts),
		newStatsCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newDoneCmd(opts),
		newRmCmd(opts),
		newExportCmd(opts),
		newWhoamiCmd(opts),
		newLogoutCmd(opts),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taskflow %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
		},
	}
}

func runDashboard(opts *rootOptions) error {
	e, err := openEnv(opts.configFile)
	if err != nil {
		return err
	}
	defer e.Close()

	app := ui.NewApp(e.session, e.store, views.TaskViewOptions{Categories: e.cfg.Tasks.Categories}, e.log)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
