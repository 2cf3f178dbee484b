package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/njnj03/homewatch/internal/eventbus"
	"github.com/njnj03/homewatch/internal/lifecycle"
	"github.com/njnj03/homewatch/pkg/client"
	"github.com/njnj03/homewatch/pkg/logger"
)

// watchCommand renders a live alert view fed by polling plus the server's
// push stream.
func (a *App) watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "continuously display alerts as they arrive and change",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "text filter over house name, severity and status",
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "status filter (all, active, acknowledged, resolved, dismissed)",
				Value: lifecycle.StatusFilterAll,
			},
			&cli.IntFlag{
				Name:  "range",
				Usage: "only show alerts younger than this many hours (0 disables)",
			},
			&cli.DurationFlag{
				Name:  "poll-interval",
				Usage: "authoritative refresh interval",
				Value: lifecycle.DefaultPollInterval,
			},
		},
		Action: a.runWatch,
	}
}

func (a *App) runWatch(ctx context.Context, cmd *cli.Command) error {
	apiClient, err := a.apiClient()
	if err != nil {
		return err
	}

	log := logger.New(cmd.Bool("debug"))
	bus := eventbus.New()

	filter := lifecycle.FilterParams{
		Query:      cmd.String("query"),
		Status:     cmd.String("status"),
		RangeHours: int(cmd.Int("range")),
	}

	render := make(chan struct{}, 1)
	controller := lifecycle.New(lifecycle.Options{
		Provider:     apiClient,
		Bus:          bus,
		Logger:       log,
		PollInterval: cmd.Duration("poll-interval"),
		OnChange: func() {
			select {
			case render <- struct{}{}:
			default:
			}
		},
	})

	streamCtx, stopStream := context.WithCancel(ctx)
	defer stopStream()
	go func() {
		if err := apiClient.StreamEvents(streamCtx, client.StreamOptions{Bus: bus, Log: log}); err != nil && streamCtx.Err() == nil {
			log.Warn("event stream stopped", slog.Any("error", err))
		}
	}()

	controller.Start(ctx)
	defer controller.Stop()

	a.renderWatchFrame(controller, filter)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-render:
			a.renderWatchFrame(controller, filter)
		}
	}
}

func (a *App) renderWatchFrame(controller *lifecycle.Controller, filter lifecycle.FilterParams) {
	now := time.Now()
	alerts := lifecycle.Filter(controller.Snapshot(), controller.HouseNames(), filter, now)

	// Clear screen and home the cursor.
	fmt.Print("\033[2J\033[H")
	fmt.Printf("%s %s\n\n",
		titleStyle.Render("homewatch"),
		mutedStyle.Render("updated "+now.Format("15:04:05")),
	)

	if err := controller.Err(); err != nil {
		fmt.Printf("%s %v\n\n", criticalStyle.Render("refresh failed:"), err)
	}

	if len(alerts) == 0 {
		fmt.Println(mutedStyle.Render("no matching alerts"))
		return
	}
	fmt.Print(renderAlertTable(alerts, controller.HouseNames(), now))
}
