package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptweave/promptweave-cli/pkg/api"
	"github.com/promptweave/promptweave-cli/pkg/config"
	"github.com/promptweave/promptweave-cli/pkg/files"
	"github.com/promptweave/promptweave-cli/pkg/presets"
	"github.com/promptweave/promptweave-cli/pkg/utils"
)

var (
	generateModel    string
	generateExamples string
	generateGoal     string
	generatePreset   string
	generateSave     string
)

// NewGenerateCommand creates the generate command for one-shot use
// without the TUI.
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one prompt and print it",
		Long: `Generate a single prompt in the style of an example file and print it
to stdout. With --save, the result is also appended to a file, separated
from earlier entries.

Examples:
  promptweave generate --model llama3:8b --examples inspo.txt --goal "a space western"
  promptweave generate -m llama3:8b -e inspo.txt -g "a space western" --save drafts.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			client, err := clientFromConfig(cfg)
			if err != nil {
				return err
			}

			exampleText, err := files.ReadText(generateExamples)
			if err != nil {
				return fmt.Errorf("failed to read example file: %w", err)
			}
			if strings.TrimSpace(exampleText) == "" {
				return fmt.Errorf("example file %s is empty", generateExamples)
			}

			presetName := generatePreset
			if presetName == "" {
				presetName = cfg.ActivePreset
			}
			template, err := presets.Load(presetName)
			if err != nil {
				return err
			}

			text, err := client.Generate(context.Background(), api.GenerateRequest{
				Model:          generateModel,
				SystemTemplate: template,
				ExampleText:    exampleText,
				UserGoal:       generateGoal,
			})
			if err != nil {
				return err
			}

			text = utils.CleanResponse(text)
			if text == "" {
				return fmt.Errorf("the model returned an empty response")
			}
			fmt.Println(text)

			if generateSave != "" {
				if err := files.AppendGenerated(generateSave, text); err != nil {
					return fmt.Errorf("failed to save the result: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&generateModel, "model", "m", "", "model to generate with (required)")
	cmd.Flags().StringVarP(&generateExamples, "examples", "e", "", "file with example prompts (required)")
	cmd.Flags().StringVarP(&generateGoal, "goal", "g", "", "what the new prompt should be about (required)")
	cmd.Flags().StringVarP(&generatePreset, "preset", "p", "", "system prompt preset (default: the active preset)")
	cmd.Flags().StringVar(&generateSave, "save", "", "append the result to this file")
	cmd.MarkFlagRequired("model")
	cmd.MarkFlagRequired("examples")
	cmd.MarkFlagRequired("goal")

	return cmd
}
