package variants

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"

	"snappost/pkg/models"
)

// variantItem is one {tone, text} element of a generation response.
type variantItem struct {
	Tone string `json:"tone"`
	Text string `json:"text"`
}

// ParseVariants decodes model output into variants. The content must be a
// JSON array of {tone, text} objects, or an object holding such an array under
// any key (JSON object response mode). Unknown tones are dropped and long texts
// truncated. Zero surviving variants is ErrInvalidResponse.
func ParseVariants(content string) ([]models.Variant, error) {
	const op = "ParseVariants"

	items, err := decodeItems(stripCodeFence(content))
	if err != nil {
		return nil, NewGenerationError(op, ErrInvalidResponse, err.Error())
	}

	var variants []models.Variant
	for _, item := range items {
		tone, ok := models.ParseTone(item.Tone)
		if !ok {
			continue
		}
		variants = append(variants, models.Variant{
			ID:   uuid.NewString(),
			Tone: tone,
			Text: models.TruncateVariantText(item.Text),
		})
	}

	if len(variants) == 0 {
		return nil, NewGenerationError(op, ErrInvalidResponse, "no variant with a known tone")
	}
	return variants, nil
}

func decodeItems(content string) ([]variantItem, error) {
	var items []variantItem
	arrErr := json.Unmarshal([]byte(content), &items)
	if arrErr == nil {
		return items, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &wrapper); err != nil {
		return nil, arrErr
	}
	keys := make([]string, 0, len(wrapper))
	for k := range wrapper {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var nested []variantItem
		if err := json.Unmarshal(wrapper[k], &nested); err == nil {
			return nested, nil
		}
	}
	// A single {tone, text} object.
	var single variantItem
	if err := json.Unmarshal([]byte(content), &single); err == nil && single.Tone != "" {
		return []variantItem{single}, nil
	}
	return nil, arrErr
}

// stripCodeFence removes a surrounding markdown code block from model output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
