package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"snappost/internal/logger"
	"snappost/internal/variants"
	"snappost/pkg/models"
	"snappost/pkg/services"
)

var generateCmd = &cobra.Command{
	Use:   "generate [excerpt]",
	Short: "Draft social post variants from an excerpt",
	Long: `Generate five post variants from an excerpt, one per tone: punchy,
contrarian, personal, analytical and open question. Each variant is at
most 900 characters.

The excerpt is taken from the argument, from --file, or from stdin.

In mock mode (the default) posts are built from local templates after a
short delay. In remote mode an OpenAI or Gemini model drafts them.

Environment variables:
  GENERATION_MODE     - mock (default) or remote
  GENERATION_PROVIDER - openai (default) or gemini
  OPENAI_API_KEY      - OpenAI API key for remote mode
  GEMINI_API_KEY      - Gemini API key for remote mode with GENERATION_PROVIDER=gemini
  DRAFTS_SHEET_URL    - Google Sheet that generated variants are appended to (optional)`,
	Example: `  # Mock variants for an inline excerpt
  snappost generate "We are what we repeatedly do."

  # Remote variants with book context, as JSON
  GENERATION_MODE=remote snappost generate --file excerpt.txt --book "Ethics" --author "Aristotle" --json

  # Pipe an excerpt from capture
  snappost capture page.jpg | snappost generate`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

// GenerateOutput is the JSON output of the generate command.
type GenerateOutput struct {
	Mode     string           `json:"mode"`
	Book     string           `json:"book,omitempty"`
	Author   string           `json:"author,omitempty"`
	Variants []models.Variant `json:"variants"`
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("file", "f", "", "Read the excerpt from a file")
	generateCmd.Flags().String("book", "", "Book title used as context")
	generateCmd.Flags().String("author", "", "Author used as context")
	generateCmd.Flags().Bool("mock", false, "Force mock mode regardless of GENERATION_MODE")
	generateCmd.Flags().Bool("json", false, "Output as JSON")
	generateCmd.Flags().Duration("timeout", time.Minute, "Overall command timeout")
	generateCmd.Flags().String("sheet", "", "Append the variants to this Google Sheet (default: DRAFTS_SHEET_URL)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("generate")

	filePath, _ := cmd.Flags().GetString("file")
	book, _ := cmd.Flags().GetString("book")
	author, _ := cmd.Flags().GetString("author")
	forceMock, _ := cmd.Flags().GetBool("mock")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	sheetURL, _ := cmd.Flags().GetString("sheet")

	excerpt, err := readExcerpt(args, filePath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(forceMock)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeout, log)
	defer cancel()

	generator, err := variants.New(ctx, cfg.GetGenerationConfig())
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	svc := services.NewPostServiceWithDeps(nil, generator)

	posts, err := generatePosts(ctx, svc, excerpt, book, author, log)
	if err != nil {
		return err
	}

	if err := saveDrafts(ctx, cfg, sheetURL, nil, book, author, generator.Mode().String(), posts, log); err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(os.Stdout, GenerateOutput{
			Mode:     generator.Mode().String(),
			Book:     book,
			Author:   author,
			Variants: posts,
		})
	}
	return writeVariants(os.Stdout, posts)
}

func generatePosts(ctx context.Context, svc services.PostService, excerpt, book, author string, log zerolog.Logger) ([]models.Variant, error) {
	startTime := time.Now()
	posts, err := svc.GeneratePosts(ctx, excerpt, book, author)
	if err != nil {
		log.Error().Err(err).Msg("Generation failed")
		return nil, fmt.Errorf("%s: %w", variants.UserMessage(err), err)
	}

	log.Info().
		Int("variants", len(posts)).
		Dur("duration", time.Since(startTime)).
		Msg("Generation completed")
	return posts, nil
}

// readExcerpt returns the excerpt from the argument, the file flag or stdin, in that order.
func readExcerpt(args []string, filePath string, stdin io.Reader) (string, error) {
	if len(args) > 0 && filePath != "" {
		return "", fmt.Errorf("pass the excerpt as an argument or with --file, not both")
	}
	if len(args) > 0 {
		return args[0], nil
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read excerpt file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read excerpt from stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
