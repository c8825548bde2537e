package ocr

import "strings"

var tesseractCodes = map[string]string{
	"de": "deu",
	"en": "eng",
	"es": "spa",
	"fr": "fra",
	"it": "ita",
	"nl": "nld",
	"pt": "por",
}

// tesseractLanguages maps BCP-47 tags to Tesseract traineddata names,
// defaulting to English.
func tesseractLanguages(languages []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, hint := range languageHints(languages) {
		code, ok := tesseractCodes[hint]
		if !ok {
			code = hint
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, strings.ToLower(code))
	}
	if len(out) == 0 {
		return []string{"eng"}
	}
	return out
}
