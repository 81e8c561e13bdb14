package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptweave/promptweave-cli/pkg/api"
	"github.com/promptweave/promptweave-cli/pkg/config"
)

// NewModelsCommand creates the models command
func NewModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models the configured endpoint serves",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			client, err := clientFromConfig(cfg)
			if err != nil {
				return err
			}

			models, err := client.FetchModels(context.Background())
			if err != nil {
				return err
			}

			if len(models) == 0 {
				fmt.Println("The endpoint reported no models.")
				return nil
			}
			for _, m := range models {
				fmt.Println(m)
			}
			return nil
		},
	}
}

func clientFromConfig(cfg *config.Config) (*api.Client, error) {
	t, err := api.ParseType(cfg.APIType)
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg.Endpoint, t, cfg.APIKey), nil
}
