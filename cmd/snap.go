package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"snappost/internal/logger"
	"snappost/pkg/models"
	"snappost/pkg/services"
)

var snapCmd = &cobra.Command{
	Use:   "snap [image-file]",
	Short: "Capture a page and draft posts from it in one step",
	Long: `Run the capture pipeline on a photographed page and generate post
variants from the resulting excerpt. Configuration is the same as for the
capture and generate commands.`,
	Example: `  snappost snap page.jpg --book "Walden" --author "Henry David Thoreau"

  snappost snap page.jpg --mock --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSnap,
}

// SnapOutput is the JSON output of the snap command.
type SnapOutput struct {
	Excerpt  *models.Excerpt  `json:"excerpt"`
	Mode     string           `json:"mode"`
	Variants []models.Variant `json:"variants"`
}

func init() {
	rootCmd.AddCommand(snapCmd)

	snapCmd.Flags().String("book", "", "Book title used as context")
	snapCmd.Flags().String("author", "", "Author used as context")
	snapCmd.Flags().Bool("mock", false, "Force mock mode regardless of GENERATION_MODE")
	snapCmd.Flags().Bool("json", false, "Output as JSON")
	snapCmd.Flags().Duration("timeout", 3*time.Minute, "Overall command timeout")
	snapCmd.Flags().String("sheet", "", "Append the variants to this Google Sheet (default: DRAFTS_SHEET_URL)")
}

func runSnap(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("snap")

	book, _ := cmd.Flags().GetString("book")
	author, _ := cmd.Flags().GetString("author")
	forceMock, _ := cmd.Flags().GetBool("mock")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	sheetURL, _ := cmd.Flags().GetString("sheet")

	imagePath := args[0]
	if _, err := validateImageFile(imagePath, log); err != nil {
		return err
	}

	cfg, err := loadConfig(forceMock)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeout, log)
	defer cancel()

	svc, err := services.NewPostService(ctx, cfg)
	if err != nil {
		return handleSetupError(err, log)
	}
	defer svc.Close()

	source := book
	if source == "" {
		source = filepath.Base(imagePath)
	}
	excerpt, err := captureFile(ctx, svc, imagePath, source)
	if err != nil {
		return handleCaptureError(err, log)
	}

	posts, err := generatePosts(ctx, svc, excerpt.Text, book, author, log)
	if err != nil {
		return err
	}

	mode := svc.Generator().Mode().String()
	if err := saveDrafts(ctx, cfg, sheetURL, excerpt, book, author, mode, posts, log); err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(os.Stdout, SnapOutput{
			Excerpt:  excerpt,
			Mode:     mode,
			Variants: posts,
		})
	}

	if _, err := os.Stdout.WriteString("=== Excerpt ===\n" + excerpt.Text + "\n\n"); err != nil {
		return err
	}
	return writeVariants(os.Stdout, posts)
}
