package models

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestParseTone(t *testing.T) {
	cases := map[string]Tone{
		"punchy":        TonePunchy,
		"PUNCHY":        TonePunchy,
		" Contrarian ":  ToneContrarian,
		"personal":      TonePersonal,
		"Analytical":    ToneAnalytical,
		"open-question": ToneOpenQuestion,
		"openQuestion":  ToneOpenQuestion,
		"Open Question": ToneOpenQuestion,
		"open_question": ToneOpenQuestion,
	}
	for in, want := range cases {
		got, ok := ParseTone(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "funny", "open question?", "-"} {
		_, ok := ParseTone(in)
		assert.False(t, ok, in)
	}
}

func TestAllTonesOrderAndCopy(t *testing.T) {
	tones := AllTones()
	assert.Equal(t, []Tone{TonePunchy, ToneContrarian, TonePersonal, ToneAnalytical, ToneOpenQuestion}, tones)

	tones[0] = "mutated"
	assert.Equal(t, TonePunchy, AllTones()[0])
}

func TestTruncateVariantText(t *testing.T) {
	short := strings.Repeat("a", MaxVariantLength)
	assert.Equal(t, short, TruncateVariantText(short))

	long := strings.Repeat("b", MaxVariantLength+1)
	out := TruncateVariantText(long)
	assert.Equal(t, MaxVariantLength, utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, "..."))

	// multi-byte characters count once each
	emoji := strings.Repeat("🚀", 1000)
	out = TruncateVariantText(emoji)
	assert.Equal(t, MaxVariantLength, utf8.RuneCountInString(out))
	assert.True(t, strings.HasPrefix(out, "🚀"))
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestRectCenters(t *testing.T) {
	r := Rect{X: 4, Y: 10, Width: 20, Height: 8}
	assert.Equal(t, 4.0, r.MinX())
	assert.Equal(t, 14.0, r.MidY())
}

func TestVariantCharacterCount(t *testing.T) {
	v := Variant{Tone: TonePunchy, Text: "Läuft 🚀"}
	assert.Equal(t, 7, v.CharacterCount())
}
