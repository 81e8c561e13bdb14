package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/promptweave/promptweave-cli/cmd/commands"
	"github.com/promptweave/promptweave-cli/pkg/config"
	"github.com/promptweave/promptweave-cli/pkg/files"
	"github.com/promptweave/promptweave-cli/pkg/presets"
	"github.com/promptweave/promptweave-cli/pkg/tui"
)

// Version is set during build with -ldflags
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "promptweave",
	Short: "Terminal-based assistant for drafting text prompts",
	Long:  `Promptweave drafts new text prompts in the style of your examples, using a local Ollama server or any OpenAI-compatible endpoint. Prompts, presets and settings are stored as plain text files.`,
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat(files.AppDir); os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error: No %s directory found in the current directory.\n", files.AppDir)
			fmt.Fprintf(os.Stderr, "Please run 'promptweave init' first to initialize a new project.\n")
			os.Exit(1)
		}

		if err := presets.EnsureDefault(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to prepare system prompts: %v\n", err)
			os.Exit(1)
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		app := tui.NewApp(cfg)
		p := tea.NewProgram(app, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to start the terminal user interface: %v\n", err)
			os.Exit(1)
		}
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new Promptweave project",
	Long:  `Creates the .promptweave folder structure in the current directory`,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to determine current directory: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Initializing Promptweave project in %s...\n", cwd)

		if err := files.InitProjectStructure(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to initialize project structure: %v\n", err)
			os.Exit(1)
		}
		if err := presets.EnsureDefault(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to create the default system prompt: %v\n", err)
			os.Exit(1)
		}
		if _, err := config.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to write the default configuration: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("✓ Created .promptweave folder structure")
		fmt.Println("✓ Created the default system prompt and configuration")
		fmt.Println("\nRun 'promptweave' to start the interactive TUI.")
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Promptweave",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Promptweave version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(commands.NewModelsCommand())
	rootCmd.AddCommand(commands.NewGenerateCommand())
	rootCmd.AddCommand(commands.NewPresetsCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Command execution failed: %v\n", err)
		os.Exit(1)
	}
}
