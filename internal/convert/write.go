// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
)

// WriteText writes text to path, falling through an encoding chain when
// the text cannot be represented as-is: UTF-8, then the platform legacy
// encoding (EUC-KR on Windows, Latin-1 elsewhere), then ASCII with '?'
// substitution. Returns the encoding actually used. The file is written
// to a temp name first and renamed, so readers never see partial output.
func WriteText(path, text string) (string, error) {
	data, enc := encodeText(text)

	tmp, err := os.CreateTemp(filepath.Dir(path), ".txt-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("renaming into place: %w", err)
	}
	return enc, nil
}

// encodeText picks the first encoding in the chain that can represent the
// text. Valid UTF-8 passes through untouched; strings carrying invalid
// bytes (mangled extractions) drop to the legacy encoding, and as a last
// resort to 7-bit ASCII with '?' for everything else.
func encodeText(text string) ([]byte, string) {
	if utf8.ValidString(text) {
		return []byte(text), "utf-8"
	}

	var enc encoding.Encoding
	var name string
	if runtime.GOOS == "windows" {
		enc, name = korean.EUCKR, "euc-kr"
	} else {
		enc, name = charmap.ISO8859_1, "latin-1"
	}
	if out, err := enc.NewEncoder().Bytes([]byte(text)); err == nil {
		return out, name
	}

	return asciiReplace(text), "ascii"
}

// asciiReplace maps every non-ASCII or invalid byte to '?'.
func asciiReplace(text string) []byte {
	out := make([]byte, len(text))
	for i := 0; i < len(text); i++ {
		b := text[i]
		if b < 0x80 {
			out[i] = b
		} else {
			out[i] = '?'
		}
	}
	return out
}
