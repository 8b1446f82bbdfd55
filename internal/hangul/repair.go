// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hangul

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Options selects which repair stages run. The zero value disables
// everything; use DefaultOptions for the full pipeline.
type Options struct {
	Normalize          bool
	ReorderJamo        bool
	StripInvisible     bool
	CollapseWhitespace bool
}

// DefaultOptions enables every repair stage.
func DefaultOptions() Options {
	return Options{
		Normalize:          true,
		ReorderJamo:        true,
		StripInvisible:     true,
		CollapseWhitespace: true,
	}
}

// jamoSwaps matches a displaced vowel jamo followed by a consonant jamo.
// Fonts that emit jamo in visual rather than logical order produce pairs
// like "ㅏㄱ" where "ㄱㅏ" was meant.
var jamoSwaps = []*regexp.Regexp{
	regexp.MustCompile(`ㅏ([ㄱ-ㅎ])`),
	regexp.MustCompile(`ㅓ([ㄱ-ㅎ])`),
	regexp.MustCompile(`ㅗ([ㄱ-ㅎ])`),
	regexp.MustCompile(`ㅜ([ㄱ-ㅎ])`),
	regexp.MustCompile(`ㅡ([ㄱ-ㅎ])`),
	regexp.MustCompile(`ㅣ([ㄱ-ㅎ])`),
}

var (
	spaceRuns     = regexp.MustCompile(`[ \t]+`)
	blankLineRuns = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+`)
)

// Repair runs the enabled recovery stages over text and returns the result.
// Stages run in a fixed order: NFC normalization, jamo reordering,
// invisible character removal, whitespace collapsing, trim.
func Repair(text string, opts Options) string {
	if text == "" {
		return text
	}

	if opts.Normalize {
		text = norm.NFC.String(text)
	}

	if opts.ReorderJamo {
		text = reorderJamo(text)
	}

	if opts.StripInvisible {
		text = stripInvisible(text)
	}

	if opts.CollapseWhitespace {
		text = spaceRuns.ReplaceAllString(text, " ")
		text = blankLineRuns.ReplaceAllString(text, "\n\n")
	}

	return strings.TrimSpace(text)
}

// reorderJamo swaps vowel-before-consonant jamo pairs back into logical
// order. Each swap pattern moves the vowel after the consonant.
func reorderJamo(text string) string {
	for _, re := range jamoSwaps {
		vowel := string([]rune(re.String())[0])
		text = re.ReplaceAllString(text, "${1}"+vowel)
	}
	return text
}

// stripInvisible drops characters that carry no text content: surrogate
// code points, C0 controls (except tab, newline, carriage return), DEL,
// and zero-width/invisible formatting characters.
func stripInvisible(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		switch {
		case r >= 0xD800 && r <= 0xDFFF:
			continue
		case r < 0x20 && r != '\t' && r != '\n' && r != '\r':
			continue
		case r == 0x7F:
			continue
		}
		switch r {
		case '\u00AD', // soft hyphen
			'\u200B', // zero-width space
			'\u200C', // zero-width non-joiner
			'\u200D', // zero-width joiner
			'\u200E', // left-to-right mark
			'\u200F', // right-to-left mark
			'\u2060', // word joiner
			'\uFEFF': // byte order mark
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
