// Package commands provides the CLI command definitions for homewatch.
package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/njnj03/homewatch/pkg/client"
)

// Styles for CLI output
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C3AED")).
			Bold(true)

	criticalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// App holds the shared CLI state.
type App struct {
	ServerURL string
	Version   string
	Commit    string
	Date      string
}

// New creates the root CLI command with all subcommands.
func New(version, commit, date string) *cli.Command {
	app := &App{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	return &cli.Command{
		Name:    "homewatch",
		Usage:   "home monitoring alert server and terminal dashboard",
		Version: version,
		Description: `homewatch runs the alert API server and provides terminal views on it.

   Use 'homewatch server' to run the backend, 'homewatch alerts' for one-shot
   queries and transitions, or 'homewatch watch' for a live alert view.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "homewatch server URL",
				Value:   "http://localhost:8125",
				Sources: cli.EnvVars("HOMEWATCH_SERVER_URL"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable colored output",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetLevel(log.DebugLevel)
			}
			if cmd.Bool("no-color") {
				log.SetStyles(log.DefaultStyles())
				lipgloss.SetHasDarkBackground(false)
			}
			app.ServerURL = cmd.String("server")
			return ctx, nil
		},
		Commands: []*cli.Command{
			app.serverCommand(),
			app.alertsCommand(),
			app.watchCommand(),
			app.modelsCommand(),
			app.versionCommand(),
		},
	}
}

// apiClient builds the API client from the resolved server URL.
func (a *App) apiClient() (*client.Client, error) {
	c, err := client.New(client.Options{BaseURL: a.ServerURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return c, nil
}

// versionCommand shows version information.
func (a *App) versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "show version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Printf("%s version %s\n", titleStyle.Render("homewatch"), a.Version)
			fmt.Printf("  commit: %s\n", mutedStyle.Render(a.Commit))
			fmt.Printf("  built:  %s\n", mutedStyle.Render(a.Date))
			return nil
		},
	}
}
