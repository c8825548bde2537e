package variants

import (
	"fmt"
	"strings"

	"snappost/pkg/models"
)

// SystemPrompt instructs the model on post shape.
const SystemPrompt = `You write short LinkedIn posts under 900 characters.
Start with a strong hook line.
Add 1 to 2 crisp supporting lines.
End with a question to invite comments.
Do not add hashtags unless explicitly requested.`

const unknownSource = "Unknown"

// UserPrompt embeds the excerpt and optional source details in the request
// for one variant per tone.
func UserPrompt(excerpt, bookTitle, author string) string {
	tones := models.AllTones()
	names := make([]string, len(tones))
	for i, t := range tones {
		names[i] = promptToneName(t)
	}

	return fmt.Sprintf(`Source excerpt: "%s"
Book: %s
Author: %s
Generate %d variants with tones: %s.
Return JSON array where each item is: {"tone":"<tone>", "text":"<post>"}`,
		excerpt,
		orUnknown(bookTitle),
		orUnknown(author),
		len(tones),
		strings.Join(names, ", "),
	)
}

// promptToneName spells a tone the way the model is asked to label it.
func promptToneName(t models.Tone) string {
	if t == models.ToneOpenQuestion {
		return "open-question"
	}
	return string(t)
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return unknownSource
	}
	return s
}
