package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptweave/promptweave-cli/pkg/config"
	"github.com/promptweave/promptweave-cli/pkg/presets"
)

// NewPresetsCommand creates the presets command group
func NewPresetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the system prompt presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			names, err := presets.List()
			if err != nil {
				return err
			}

			for _, name := range names {
				marker := " "
				if name == cfg.ActivePreset {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, name)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Print a preset's template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := presets.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Println(content)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "activate <name>",
		Short: "Make a preset the active system prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			name := args[0]
			if !strings.HasSuffix(name, ".txt") {
				name += ".txt"
			}
			if _, err := presets.Load(name); err != nil {
				return err
			}

			cfg.ActivePreset = name
			if err := config.Save(cfg); err != nil {
				return err
			}
			fmt.Printf("Active system prompt: %s\n", name)
			return nil
		},
	})

	return cmd
}
