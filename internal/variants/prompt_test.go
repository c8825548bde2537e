package variants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserPrompt(t *testing.T) {
	got := UserPrompt("Stay curious.", "Deep Work", "Cal Newport")

	assert.Contains(t, got, `Source excerpt: "Stay curious."`)
	assert.Contains(t, got, "Book: Deep Work\n")
	assert.Contains(t, got, "Author: Cal Newport\n")
	assert.Contains(t, got, "Generate 5 variants with tones: punchy, contrarian, personal, analytical, open-question.")
	assert.Contains(t, got, `{"tone":"<tone>", "text":"<post>"}`)
}

func TestUserPromptUnknownSource(t *testing.T) {
	got := UserPrompt("Stay curious.", "", "  ")

	assert.Contains(t, got, "Book: Unknown\n")
	assert.Contains(t, got, "Author: Unknown\n")
}

func TestSystemPrompt(t *testing.T) {
	assert.Contains(t, SystemPrompt, "under 900 characters")
	assert.Contains(t, SystemPrompt, "hashtags")
}
