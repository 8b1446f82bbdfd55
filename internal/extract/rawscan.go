// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/jhkim1009/pdftotext/pkg/types"
)

// rawScanExtractor parses the PDF object structure directly: it walks
// "N 0 obj" bodies, inflates Flate streams, and pulls string operands out
// of BT/ET text objects, decoding hex strings through ToUnicode CMaps.
// It is the backend of last resort — no dependencies, no layout model,
// and it only understands the Flate filter — but it recovers text from
// files every real parser refuses to open.
type rawScanExtractor struct{}

func (e *rawScanExtractor) Name() string { return string(types.ModeRawScan) }

func (e *rawScanExtractor) Available() bool { return true }

var (
	objPattern       = regexp.MustCompile(`(\d+)\s+0\s+obj([\s\S]*?)endobj`)
	streamPattern    = regexp.MustCompile(`stream\r?\n([\s\S]*?)endstream`)
	toUnicodePattern = regexp.MustCompile(`/ToUnicode\s+(\d+)\s+0\s+R`)
	fontSelPattern   = regexp.MustCompile(`/(\S+)\s+[\d.]+\s+Tf`)
	bfCharSection    = regexp.MustCompile(`beginbfchar([\s\S]*?)endbfchar`)
	bfRangeSection   = regexp.MustCompile(`beginbfrange([\s\S]*?)endbfrange`)
	bfCharPattern    = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]+)>`)
	bfRangePattern   = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]+)>`)
	textObjPattern   = regexp.MustCompile(`BT([\s\S]*?)ET`)
	hexStrPattern    = regexp.MustCompile(`<([0-9A-Fa-f]+)>`)
)

// rawObject is one parsed "N 0 obj" body.
type rawObject struct {
	content string
	stream  []byte
}

// cmap maps character codes (as lowercase hex strings) to runes.
type cmap map[string]rune

func (e *rawScanExtractor) Extract(ctx context.Context, pdfPath string) (*types.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", pdfPath, err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("%s is not a PDF file", pdfPath)
	}

	objects := parseObjects(data)
	fonts := parseFonts(objects)

	var b strings.Builder
	for _, obj := range objects {
		if obj.stream == nil {
			continue
		}
		stream := obj.stream
		if inflated, err := inflate(stream); err == nil {
			stream = inflated
		}
		if text := parseContentStream(stream, fonts); text != "" {
			b.WriteString(text)
			b.WriteString("\n")
		}
	}

	return &types.Document{
		SourcePDF: pdfPath,
		Backend:   e.Name(),
		Pages:     []types.Page{{Number: 1, Text: b.String()}},
	}, nil
}

// parseObjects walks every "N 0 obj ... endobj" body and captures its
// content and stream bytes, keyed by object number.
func parseObjects(data []byte) map[int]*rawObject {
	objects := make(map[int]*rawObject)
	for _, m := range objPattern.FindAllSubmatch(data, -1) {
		id, err := strconv.Atoi(string(m[1]))
		if err != nil {
			continue
		}
		obj := &rawObject{content: string(m[2])}
		if sm := streamPattern.FindSubmatch(m[2]); sm != nil {
			obj.stream = sm[1]
		}
		objects[id] = obj
	}
	return objects
}

// parseFonts builds ToUnicode maps for every font object that references
// a CMap stream, keyed by the font resource name in the content stream.
func parseFonts(objects map[int]*rawObject) map[string]cmap {
	fonts := make(map[string]cmap)
	for _, obj := range objects {
		if !strings.Contains(obj.content, "/Font") || !strings.Contains(obj.content, "/Type") {
			continue
		}
		m := toUnicodePattern.FindStringSubmatch(obj.content)
		if m == nil {
			continue
		}
		cmapID, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		cmapObj, ok := objects[cmapID]
		if !ok || cmapObj.stream == nil {
			continue
		}

		stream := cmapObj.stream
		if inflated, err := inflate(stream); err == nil {
			stream = inflated
		}
		cm := parseCMap(string(stream))
		if len(cm) == 0 {
			continue
		}

		// Index the map under each font resource alias found in the body.
		for _, name := range regexp.MustCompile(`/(F\d+|TT\d+|C\d+_\d+)`).FindAllStringSubmatch(obj.content, -1) {
			fonts[name[1]] = cm
		}
	}
	return fonts
}

// parseCMap reads bfchar (<code> <unicode>) and bfrange
// (<start> <end> <unicodeStart>) mappings out of a ToUnicode CMap.
// Matching is scoped to the begin/end sections so the two operand
// shapes cannot cross-match.
func parseCMap(content string) cmap {
	cm := make(cmap)

	for _, section := range bfRangeSection.FindAllStringSubmatch(content, -1) {
		for _, m := range bfRangePattern.FindAllStringSubmatch(section[1], -1) {
			start, err1 := strconv.ParseInt(m[1], 16, 32)
			end, err2 := strconv.ParseInt(m[2], 16, 32)
			uni, err3 := strconv.ParseInt(m[3], 16, 32)
			if err1 != nil || err2 != nil || err3 != nil || end < start || end-start > 0xFFFF {
				continue
			}
			width := len(m[1])
			for i := start; i <= end; i++ {
				cm[fmt.Sprintf("%0*x", width, i)] = rune(uni + (i - start))
			}
		}
	}

	for _, section := range bfCharSection.FindAllStringSubmatch(content, -1) {
		for _, m := range bfCharPattern.FindAllStringSubmatch(section[1], -1) {
			uni, err := strconv.ParseInt(m[2], 16, 32)
			if err != nil {
				continue
			}
			cm[strings.ToLower(m[1])] = rune(uni)
		}
	}

	return cm
}

// parseContentStream pulls text operands out of BT/ET blocks: literal
// strings from Tj/TJ/' operators and hex strings decoded through the
// currently selected font's CMap.
func parseContentStream(data []byte, fonts map[string]cmap) string {
	content := string(data)
	var b strings.Builder

	for _, block := range textObjPattern.FindAllStringSubmatch(content, -1) {
		var current cmap
		for _, line := range strings.Split(block[1], "\n") {
			if m := fontSelPattern.FindStringSubmatch(line); m != nil {
				if cm, ok := fonts[m[1]]; ok {
					current = cm
				}
			}

			for _, lit := range extractLiterals(line) {
				b.WriteString(lit)
				b.WriteString(" ")
			}

			for _, m := range hexStrPattern.FindAllStringSubmatch(line, -1) {
				if decoded := decodeHex(strings.ToLower(m[1]), current); decoded != "" {
					b.WriteString(decoded)
					b.WriteString(" ")
				}
			}
		}
	}

	return strings.TrimSpace(b.String())
}

// extractLiterals returns the contents of balanced ( ) string operands,
// resolving the standard escapes.
func extractLiterals(line string) []string {
	var out []string
	depth := 0
	var cur strings.Builder

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line) && depth > 0:
			i++
			switch line[i] {
			case 'n':
				cur.WriteByte('\n')
			case 't':
				cur.WriteByte('\t')
			case 'r', 'f', 'b':
			default:
				cur.WriteByte(line[i])
			}
		case c == '(':
			depth++
			if depth == 1 {
				cur.Reset()
				continue
			}
			cur.WriteByte(c)
		case c == ')':
			depth--
			if depth == 0 {
				if s := cur.String(); s != "" {
					out = append(out, s)
				}
				continue
			}
			if depth > 0 {
				cur.WriteByte(c)
			} else {
				depth = 0
			}
		case depth > 0:
			cur.WriteByte(c)
		}
	}
	return out
}

// decodeHex turns a hex string operand into text. With a CMap, codes are
// looked up in two-byte then one-byte units; without one, bytes in the
// printable ASCII range pass through.
func decodeHex(hexStr string, cm cmap) string {
	var b strings.Builder

	if len(cm) > 0 {
		for i := 0; i+4 <= len(hexStr); i += 4 {
			if r, ok := cm[hexStr[i:i+4]]; ok {
				b.WriteRune(r)
				continue
			}
			if r, ok := cm[hexStr[i:i+2]]; ok {
				b.WriteRune(r)
			}
			if r, ok := cm[hexStr[i+2:i+4]]; ok {
				b.WriteRune(r)
			}
		}
		return b.String()
	}

	for i := 0; i+2 <= len(hexStr); i += 2 {
		v, err := strconv.ParseUint(hexStr[i:i+2], 16, 8)
		if err != nil {
			return ""
		}
		if v >= 0x20 && v < 0x7F {
			b.WriteByte(byte(v))
		}
	}
	return b.String()
}

// inflate decompresses a Flate-encoded stream.
func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
