// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hangul evaluates and repairs Korean text recovered from PDF
// extraction. Extraction backends differ wildly in how well they handle
// hangul: some emit decomposed jamo, some emit mojibake, some drop the
// text entirely. The quality score lets smart mode compare backends; the
// repair pipeline fixes the recoverable damage.
package hangul

import (
	"strings"
	"unicode"
)

// IsSyllable reports whether r is a precomposed hangul syllable (가-힣).
func IsSyllable(r rune) bool {
	return r >= 0xAC00 && r <= 0xD7A3
}

// IsJamo reports whether r is a bare compatibility jamo (ㄱ-ㅎ, ㅏ-ㅣ).
// Bare jamo in extracted text usually mean the font encoding broke
// syllable composition.
func IsJamo(r rune) bool {
	return (r >= 0x3131 && r <= 0x314E) || (r >= 0x314F && r <= 0x3163)
}

// isVowelJamo reports whether r is a compatibility vowel jamo (ㅏ-ㅣ).
func isVowelJamo(r rune) bool {
	return r >= 0x314F && r <= 0x3163
}

// isConsonantJamo reports whether r is a compatibility consonant jamo (ㄱ-ㅎ).
func isConsonantJamo(r rune) bool {
	return r >= 0x3131 && r <= 0x314E
}

// CountSyllables returns the number of precomposed hangul syllables in text.
func CountSyllables(text string) int {
	n := 0
	for _, r := range text {
		if IsSyllable(r) {
			n++
		}
	}
	return n
}

// Score rates the Korean quality of extracted text. Higher is better.
//
// The score combines four signals:
//   - the ratio of hangul syllables to all characters (weight 100)
//   - the ratio of complete syllables to complete+bare jamo (weight 50)
//   - the density of hangul words, runs of 2+ syllables per 10 characters
//     (capped bonus of 20)
//   - the ratio of broken characters, anything outside word characters,
//     whitespace, hangul and basic punctuation (penalty weight 50)
//
// The result is clamped at zero. Empty or whitespace-only text scores zero.
func Score(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	var (
		total     int
		syllables int
		jamo      int
		broken    int
		words     int
		runLen    int
	)

	for _, r := range trimmed {
		total++
		switch {
		case IsSyllable(r):
			syllables++
			runLen++
			if runLen == 2 {
				words++
			}
			continue
		case IsJamo(r):
			jamo++
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
		case unicode.IsSpace(r):
		case r == '.', r == ',', r == '!', r == '?', r == '(', r == ')':
		default:
			broken++
		}
		runLen = 0
	}

	score := float64(syllables) / float64(total) * 100

	if syllables+jamo > 0 {
		score += float64(syllables) / float64(syllables+jamo) * 50
	}

	density := float64(words) / (float64(total) / 10)
	bonus := density * 20
	if bonus > 20 {
		bonus = 20
	}
	score += bonus

	score -= float64(broken) / float64(total) * 50

	if score < 0 {
		return 0
	}
	return score
}
