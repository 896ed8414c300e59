package markup

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// declEncodingRegex extracts the encoding pseudo-attribute of a leading
// <?xml ...?> declaration.
var declEncodingRegex = regexp.MustCompile(`^\s*<\?xml[^?]*?\bencoding\s*=\s*["']([A-Za-z0-9._:\-]+)["']`)

// decodeInput converts the raw document to UTF-8.
// Returns false when the document cannot be decoded at all (fatal).
func decodeInput(data []byte, c *Collector) ([]byte, bool) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		// ExpectBOM lets the byte order mark pick the endianness.
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(data)
		if err != nil {
			c.Fatalf(1, "invalid UTF-16 input: %v", err)
			return nil, false
		}
		return sanitizeUTF8(out, c), true
	}

	if m := declEncodingRegex.FindSubmatch(data); m != nil {
		name := strings.ToLower(string(m[1]))
		if !isUTF8Name(name) {
			enc, err := htmlindex.Get(name)
			if err != nil {
				c.Fatalf(1, "unsupported encoding %q", string(m[1]))
				return nil, false
			}
			out, err := enc.NewDecoder().Bytes(data)
			if err != nil {
				c.Fatalf(1, "cannot decode %s input: %v", name, err)
				return nil, false
			}
			data = out
		}
	}

	return sanitizeUTF8(data, c), true
}

func isUTF8Name(name string) bool {
	return name == "utf-8" || name == "utf8"
}

// sanitizeUTF8 replaces every maximal run of invalid UTF-8 bytes with a single
// U+FFFD and records one error per run.
func sanitizeUTF8(data []byte, c *Collector) []byte {
	if utf8.Valid(data) {
		return data
	}

	out := make([]byte, 0, len(data))
	line := 1
	inBad := false
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			if !inBad {
				c.Errorf(line, "invalid UTF-8 byte sequence")
				out = append(out, "\uFFFD"...)
				inBad = true
			}
			i++
			continue
		}
		inBad = false
		if r == '\n' {
			line++
		}
		out = append(out, data[i:i+size]...)
		i += size
	}
	return out
}
