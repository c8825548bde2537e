package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snappost/internal/variants"
	"snappost/pkg/models"
)

func TestReadExcerptSources(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "excerpt.txt")
	require.NoError(t, os.WriteFile(file, []byte("From a file."), 0o644))

	text, err := readExcerpt([]string{"From an argument."}, "", strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "From an argument.", text)

	text, err = readExcerpt(nil, file, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "From a file.", text)

	text, err = readExcerpt(nil, "", strings.NewReader("From stdin.\n"))
	require.NoError(t, err)
	assert.Equal(t, "From stdin.", text)

	_, err = readExcerpt([]string{"both"}, file, nil)
	assert.Error(t, err)

	_, err = readExcerpt(nil, filepath.Join(dir, "missing.txt"), nil)
	assert.Error(t, err)
}

func TestValidateImageFile(t *testing.T) {
	dir := t.TempDir()
	log := zerolog.Nop()

	page := filepath.Join(dir, "page.jpg")
	require.NoError(t, os.WriteFile(page, []byte("not really a jpeg"), 0o644))
	info, err := validateImageFile(page, log)
	require.NoError(t, err)
	assert.Equal(t, "page.jpg", info.Name())

	empty := filepath.Join(dir, "empty.png")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = validateImageFile(empty, log)
	assert.ErrorContains(t, err, "empty")

	_, err = validateImageFile(filepath.Join(dir, "missing.png"), log)
	assert.ErrorContains(t, err, "not found")

	_, err = validateImageFile(dir, log)
	assert.ErrorContains(t, err, "not a regular file")
}

func TestWriteVariants(t *testing.T) {
	var buf bytes.Buffer
	posts := []models.Variant{
		{Tone: models.TonePunchy, Text: "Short."},
		{Tone: models.ToneOpenQuestion, Text: "Why?"},
	}

	require.NoError(t, writeVariants(&buf, posts))

	assert.Equal(t, "=== Punchy (6 chars) ===\nShort.\n\n=== Open Question (4 chars) ===\nWhy?\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, GenerateOutput{
		Mode:     "mock",
		Variants: []models.Variant{{ID: "1", Tone: models.ToneAnalytical, Text: "x"}},
	}))

	assert.JSONEq(t, `{"mode":"mock","variants":[{"id":"1","tone":"analytical","text":"x"}]}`, buf.String())
}

func TestLoadConfigForceMock(t *testing.T) {
	t.Setenv("GENERATION_MODE", "remote")

	cfg, err := loadConfig(true)
	require.NoError(t, err)
	assert.Equal(t, variants.ModeMock.String(), cfg.GenerationMode)

	cfg, err = loadConfig(false)
	require.NoError(t, err)
	assert.Equal(t, variants.ModeRemote.String(), cfg.GenerationMode)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["capture"])
	assert.True(t, names["generate"])
	assert.True(t, names["snap"])
}
