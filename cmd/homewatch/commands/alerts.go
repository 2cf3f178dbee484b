package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/njnj03/homewatch/pkg/models"
	"github.com/njnj03/homewatch/pkg/timefmt"
)

// alertsCommand groups one-shot alert operations.
func (a *App) alertsCommand() *cli.Command {
	return &cli.Command{
		Name:  "alerts",
		Usage: "list alerts and apply lifecycle transitions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list alerts, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "filter by status (active, acknowledged, resolved, dismissed)",
					},
					&cli.StringFlag{
						Name:  "severity",
						Usage: "filter by severity (high, medium, low)",
					},
					&cli.StringFlag{
						Name:  "house",
						Usage: "filter by house identifier",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "maximum number of results",
						Value:   models.DefaultAlertListLimit,
					},
				},
				Action: a.runListAlerts,
			},
			a.transitionCommand("acknowledge", "acknowledge an active alert"),
			a.transitionCommand("resolve", "resolve an active or acknowledged alert"),
			a.transitionCommand("dismiss", "dismiss an active or acknowledged alert"),
		},
	}
}

func (a *App) runListAlerts(ctx context.Context, cmd *cli.Command) error {
	apiClient, err := a.apiClient()
	if err != nil {
		return err
	}

	list, err := apiClient.ListAlerts(ctx, models.ListAlertsParams{
		Status:   models.AlertStatus(cmd.String("status")),
		Severity: models.AlertSeverity(cmd.String("severity")),
		HouseID:  models.HouseID(cmd.String("house")),
		Limit:    int(cmd.Int("limit")),
	})
	if err != nil {
		return fmt.Errorf("failed to list alerts: %w", err)
	}

	houses, err := apiClient.ListHouses(ctx)
	if err != nil {
		return fmt.Errorf("failed to list houses: %w", err)
	}
	names := make(map[models.HouseID]string, len(houses))
	for _, h := range houses {
		names[h.ID] = h.Name
	}

	if len(list.Alerts) == 0 {
		fmt.Println(mutedStyle.Render("no alerts"))
		return nil
	}

	fmt.Print(renderAlertTable(list.Alerts, names, time.Now()))
	fmt.Printf("\n%s\n", mutedStyle.Render(fmt.Sprintf("%d of %d alerts", len(list.Alerts), list.Total)))
	return nil
}

// transitionCommand builds an alert transition subcommand for the given
// operation.
func (a *App) transitionCommand(op, usage string) *cli.Command {
	return &cli.Command{
		Name:      op,
		Usage:     usage,
		ArgsUsage: "<alert-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "notes",
				Aliases: []string{"n"},
				Usage:   "operator note to attach",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one alert ID")
			}
			id := models.AlertID(cmd.Args().First())
			notes := cmd.String("notes")

			apiClient, err := a.apiClient()
			if err != nil {
				return err
			}

			var alert *models.Alert
			switch op {
			case "acknowledge":
				alert, err = apiClient.AcknowledgeAlert(ctx, id, notes)
			case "resolve":
				alert, err = apiClient.ResolveAlert(ctx, id, notes)
			case "dismiss":
				alert, err = apiClient.DismissAlert(ctx, id, notes)
			}
			if err != nil {
				return fmt.Errorf("failed to %s alert: %w", op, err)
			}

			fmt.Printf("%s %s is now %s (created %s)\n",
				okStyle.Render("ok:"), alert.ID, alert.Status, timefmt.Format(alert.CreatedAt))
			return nil
		},
	}
}
