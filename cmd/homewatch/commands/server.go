package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/njnj03/homewatch/internal/app"
)

// serverCommand runs the backend API server.
func (a *App) serverCommand() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "run the homewatch API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("HOMEWATCH_CONFIG"),
			},
		},
		Action: a.runServer,
	}
}

func (a *App) runServer(ctx context.Context, cmd *cli.Command) error {
	srv, err := app.New(app.Options{
		ConfigPath: cmd.String("config"),
		Version:    a.Version,
	})
	if err != nil {
		return err
	}

	if err := srv.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
