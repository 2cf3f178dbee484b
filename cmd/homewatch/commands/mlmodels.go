package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/njnj03/homewatch/pkg/models"
)

// modelsCommand groups model-registry operations.
func (a *App) modelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "models",
		Usage: "inspect and manage the detection model registry",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list registered models",
				Action: a.runListModels,
			},
			{
				Name:      "activate",
				Usage:     "make a model the single active one",
				ArgsUsage: "<model-id>",
				Action:    a.runActivateModel,
			},
			{
				Name:      "delete",
				Usage:     "remove a model record",
				ArgsUsage: "<model-id>",
				Action:    a.runDeleteModel,
			},
		},
	}
}

func (a *App) runListModels(ctx context.Context, cmd *cli.Command) error {
	apiClient, err := a.apiClient()
	if err != nil {
		return err
	}

	list, err := apiClient.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	if len(list.Models) == 0 {
		fmt.Println(mutedStyle.Render("no models registered"))
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf(
		"%-6s %-30s %-10s %-10s %-8s %s",
		"ID", "NAME", "VERSION", "ACCURACY", "ACTIVE", "ARTIFACT",
	)))
	for _, m := range list.Models {
		accuracy := "-"
		if m.Accuracy != nil {
			accuracy = fmt.Sprintf("%.1f%%", *m.Accuracy*100)
		}
		active := mutedStyle.Render("no")
		if m.IsActive {
			active = okStyle.Render("yes")
		}
		artifact := okStyle.Render("present")
		if !m.FileExists {
			artifact = criticalStyle.Render("missing")
		}
		fmt.Fprintf(&b, "%-6d %-30s %-10s %-10s %-8s %s\n",
			m.ID, truncate(m.Name, 30), m.Version, accuracy, active, artifact)
	}
	fmt.Print(b.String())
	return nil
}

func (a *App) runActivateModel(ctx context.Context, cmd *cli.Command) error {
	id, err := modelIDArg(cmd)
	if err != nil {
		return err
	}
	apiClient, err := a.apiClient()
	if err != nil {
		return err
	}
	if err := apiClient.ActivateModel(ctx, id); err != nil {
		return fmt.Errorf("failed to activate model: %w", err)
	}
	fmt.Printf("%s model %d activated\n", okStyle.Render("ok:"), id)
	return nil
}

func (a *App) runDeleteModel(ctx context.Context, cmd *cli.Command) error {
	id, err := modelIDArg(cmd)
	if err != nil {
		return err
	}
	apiClient, err := a.apiClient()
	if err != nil {
		return err
	}
	if err := apiClient.DeleteModel(ctx, id); err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}
	fmt.Printf("%s model %d deleted\n", okStyle.Render("ok:"), id)
	return nil
}

func modelIDArg(cmd *cli.Command) (models.ModelID, error) {
	if cmd.Args().Len() != 1 {
		return 0, fmt.Errorf("expected exactly one model ID")
	}
	id, err := strconv.ParseInt(cmd.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid model ID %q", cmd.Args().First())
	}
	return models.ModelID(id), nil
}
