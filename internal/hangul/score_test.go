// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hangul

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty text", text: ""},
		{name: "whitespace only", text: "   \n\t  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.text); got != 0 {
				t.Errorf("Score(%q) = %v, want 0", tt.text, got)
			}
		})
	}
}

func TestScore_Ordering(t *testing.T) {
	// Clean Korean prose must outrank decomposed jamo, which must outrank
	// mojibake. Smart mode relies on this ordering to pick a backend.
	clean := "한글 문서 변환 테스트입니다. 이 문장은 정상적인 한글입니다."
	decomposed := "ㅎㅏㄴㄱㅡㄹ ㅁㅜㄴㅅㅓ ㅂㅕㄴㅎㅗㅏㄴ"
	mojibake := "ÇÑ±Û ¹®¼\u00AD º¯È¯"

	cleanScore := Score(clean)
	decomposedScore := Score(decomposed)
	mojibakeScore := Score(mojibake)

	if cleanScore <= decomposedScore {
		t.Errorf("clean (%.1f) should outrank decomposed jamo (%.1f)", cleanScore, decomposedScore)
	}
	if decomposedScore < mojibakeScore {
		t.Errorf("decomposed jamo (%.1f) should not rank below mojibake (%.1f)", decomposedScore, mojibakeScore)
	}
}

func TestScore_EnglishText(t *testing.T) {
	// English-only text has no hangul signal but no broken-character
	// penalty either; it should score low but not negative.
	got := Score("The quick brown fox jumps over the lazy dog.")
	if got < 0 {
		t.Errorf("Score = %v, want >= 0", got)
	}
	korean := Score("빠른 갈색 여우가 게으른 개를 뛰어넘는다.")
	if got >= korean {
		t.Errorf("English (%.1f) should not outrank Korean (%.1f)", got, korean)
	}
}

func TestScore_WordDensityCapped(t *testing.T) {
	// A wall of syllable runs must not push the word-density bonus past 20.
	dense := ""
	for i := 0; i < 50; i++ {
		dense += "한글 "
	}
	// hangul ratio <= 100, complete ratio <= 50, density <= 20.
	if got := Score(dense); got > 170 {
		t.Errorf("Score = %v, want <= 170", got)
	}
}

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "mixed text", text: "abc 한글 123", want: 2},
		{name: "no hangul", text: "plain ascii", want: 0},
		{name: "jamo are not syllables", text: "ㄱㅏㄴㅏ", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountSyllables(tt.text); got != tt.want {
				t.Errorf("CountSyllables(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}
