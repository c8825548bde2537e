package textclean

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestRemoveNoise(t *testing.T) {
	lines := []string{
		"This is a regular line of text",
		"42",
		"Another line of text here",
		"123",
		"",
		"   ",
		"CH",
		"CHAPTER ONE",
		"This is a longer line that should be kept",
		"5",
		"THIS IS A VERY LONG ALL CAPS LINE THAT STAYS",
		"ab",
		"  ok ",
		"—12—",
	}

	got := RemoveNoise(lines)

	assert.Equal(t, []string{
		"This is a regular line of text",
		"Another line of text here",
		"This is a longer line that should be kept",
		"THIS IS A VERY LONG ALL CAPS LINE THAT STAYS",
	}, got)
}

func TestRemoveNoiseInvariants(t *testing.T) {
	lines := []string{
		"", " ", "\t", "7", "007", "xy", "abc", "ABC", "Mixed Case", "1 2 3",
		"HEADER", "chapter 3", "Lorem ipsum dolor sit amet, consectetur",
	}

	got := RemoveNoise(lines)

	for _, line := range got {
		trimmed := strings.TrimSpace(line)
		assert.NotEmpty(t, trimmed)
		assert.False(t, isAllNumeric(trimmed), line)
		assert.Greater(t, utf8.RuneCountInString(trimmed), 2, line)
		if utf8.RuneCountInString(trimmed) < 30 {
			assert.NotEqual(t, strings.ToUpper(trimmed), trimmed, line)
		}
	}
	assert.Equal(t, []string{"abc", "Mixed Case", "chapter 3", "Lorem ipsum dolor sit amet, consectetur"}, got)
}

func TestRemoveNoiseDropsNonDecimalNumerals(t *testing.T) {
	assert.True(t, isAllNumeric("Ⅻ"))
	assert.True(t, isAllNumeric("½"))
	assert.True(t, isAllNumeric("²³"))
	assert.False(t, isAllNumeric("Ⅻa"))

	// Long enough to escape the short header rule.
	fractions := strings.Repeat("½", 31)
	roman := strings.Repeat("ⅫⅠ", 16)

	got := RemoveNoise([]string{fractions, "A line of real prose stays here.", roman})

	assert.Equal(t, []string{"A line of real prose stays here."}, got)
}

func TestRemoveNoiseEmpty(t *testing.T) {
	assert.Empty(t, RemoveNoise(nil))
}

func TestClean(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"hyphen break", "word-\nbreak", "wordbreak"},
		{"windows hyphen break", "This is a sen-\r\ntence with Windows line breaks.", "This is a sentence with Windows line breaks."},
		{"collapse spaces", "a  b   c", "a b c"},
		{"trim", "  x  ", "x"},
		{"empty", "", ""},
		{"whitespace only", "   \n\n   \r\n   ", ""},
		{"newlines to spaces", "one\ntwo\r\nthree\rfour", "one two three four"},
		{
			"paragraph",
			"This is a line with a hyphen-\nbreak that should be fixed.\n\nMultiple    spaces   should    be   collapsed.\n\n\n   Leading and trailing whitespace should be removed.   ",
			"This is a line with a hyphenbreak that should be fixed. Multiple spaces should be collapsed. Leading and trailing whitespace should be removed.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Clean(tc.in))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"word-\nbreak",
		"a-\n-\nb",
		"trailing hyphen-",
		"  lots   of\n\n\nspace  ",
		"tab\tseparated\t\ttext",
		"-\r\n-\n\r\n",
		"mixed-\r\nwindows\rand\nunix",
	}
	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "input %q", in)
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "first line second- line", Join([]string{"first line ", " second-", "line"}))
	assert.Equal(t, "", Join(nil))
}
