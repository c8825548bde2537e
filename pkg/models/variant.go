package models

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxVariantLength is the maximum number of characters in a post variant.
	MaxVariantLength = 900

	truncationMarker = "..."
)

// Tone labels the voice of a generated post.
type Tone string

const (
	TonePunchy       Tone = "punchy"
	ToneContrarian   Tone = "contrarian"
	TonePersonal     Tone = "personal"
	ToneAnalytical   Tone = "analytical"
	ToneOpenQuestion Tone = "openQuestion"
)

var allTones = []Tone{TonePunchy, ToneContrarian, TonePersonal, ToneAnalytical, ToneOpenQuestion}

// AllTones returns every tone in canonical order.
func AllTones() []Tone {
	out := make([]Tone, len(allTones))
	copy(out, allTones)
	return out
}

// ParseTone maps a loosely formatted tone label ("Open-Question", "PUNCHY") to a Tone.
// Matching ignores case, hyphens, underscores and spaces.
func ParseTone(s string) (Tone, bool) {
	key := normalizeToneKey(s)
	if key == "" {
		return "", false
	}
	for _, t := range allTones {
		if normalizeToneKey(string(t)) == key {
			return t, true
		}
	}
	return "", false
}

func normalizeToneKey(s string) string {
	r := strings.NewReplacer("-", "", "_", "", " ", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// DisplayName returns the human readable tone label.
func (t Tone) DisplayName() string {
	switch t {
	case TonePunchy:
		return "Punchy"
	case ToneContrarian:
		return "Contrarian"
	case TonePersonal:
		return "Personal"
	case ToneAnalytical:
		return "Analytical"
	case ToneOpenQuestion:
		return "Open Question"
	default:
		return string(t)
	}
}

// Variant is one generated, tone-labeled candidate post.
type Variant struct {
	ID   string `json:"id"`   // Unique variant identifier (UUID)
	Tone Tone   `json:"tone"` // One of the fixed tones
	Text string `json:"text"` // Post text, at most MaxVariantLength characters
}

// TruncateVariantText caps text at MaxVariantLength characters, replacing the tail with "..." when cut.
func TruncateVariantText(text string) string {
	if utf8.RuneCountInString(text) <= MaxVariantLength {
		return text
	}
	runes := []rune(text)
	keep := MaxVariantLength - utf8.RuneCountInString(truncationMarker)
	return string(runes[:keep]) + truncationMarker
}

// CharacterCount returns the length of the post text in characters.
func (v Variant) CharacterCount() int {
	return utf8.RuneCountInString(v.Text)
}
