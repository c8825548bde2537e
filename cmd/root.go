package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"snappost/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "snappost",
	Short: "Snappost - turn photographed book pages into social posts",
	Long: `Snappost extracts clean excerpt text from a photographed book page and
drafts short social posts from it in five tones: punchy, contrarian,
personal, analytical and open question.

Posts are generated locally from templates (mock mode) or by a remote
model (OpenAI or Gemini) when an API key is configured.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Debug().
			Str("version", version).
			Msg("Snappost CLI executed")

		fmt.Println("Welcome to Snappost!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
