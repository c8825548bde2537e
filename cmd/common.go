package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"snappost/internal/config"
	"snappost/internal/drafts"
	"snappost/internal/variants"
	"snappost/pkg/models"
)

// maxImageFileSize bounds the size of a capture file read from disk.
const maxImageFileSize = 20 * 1024 * 1024

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// loadConfig reads the environment configuration and applies the mock override.
func loadConfig(forceMock bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if forceMock {
		cfg.GenerationMode = variants.ModeMock.String()
	}
	return cfg, nil
}

// validateImageFile checks that path is a readable, non-empty regular file of
// reasonable size.
func validateImageFile(path string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", path).
				Msg("Image file not found")
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", path).
				Msg("Permission denied accessing image file")
			return nil, fmt.Errorf("permission denied accessing image file: %s", path)
		}
		return nil, fmt.Errorf("error accessing image file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", path)
	}

	if !imageExtensions[strings.ToLower(filepath.Ext(path))] {
		log.Warn().
			Str("file", path).
			Msg("File does not have a known image extension")
	}

	if fileInfo.Size() == 0 {
		return nil, fmt.Errorf("image file is empty: %s", path)
	}
	if fileInfo.Size() > maxImageFileSize {
		log.Error().
			Str("file", path).
			Int64("size", fileInfo.Size()).
			Int64("max_size", maxImageFileSize).
			Msg("Image file exceeds maximum size limit")
		return nil, fmt.Errorf("image file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), maxImageFileSize)
	}

	return fileInfo, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func writeVariants(w io.Writer, posts []models.Variant) error {
	for i, post := range posts {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "=== %s (%d chars) ===\n%s\n", post.Tone.DisplayName(), post.CharacterCount(), post.Text); err != nil {
			return err
		}
	}
	return nil
}

// saveDrafts appends the variants to the drafts sheet when one is configured.
func saveDrafts(ctx context.Context, cfg *config.Config, sheetURL string, excerpt *models.Excerpt, book, author, mode string, posts []models.Variant, log zerolog.Logger) error {
	if sheetURL == "" {
		sheetURL = cfg.DraftsSheetURL
	}
	if sheetURL == "" {
		return nil
	}

	sheetLog, err := drafts.NewSheetLog(ctx, sheetURL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open drafts sheet")
		return fmt.Errorf("failed to open drafts sheet: %w", err)
	}
	if err := sheetLog.Append(ctx, cfg.DraftsSheetName, drafts.FromVariants(excerpt, book, author, mode, posts)); err != nil {
		log.Error().Err(err).Msg("Failed to save drafts")
		return fmt.Errorf("failed to save drafts: %w", err)
	}
	return nil
}
