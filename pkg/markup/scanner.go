package markup

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Attr is a single attribute in declaration order.
type Attr struct {
	Name  string
	Value string
}

// Action tells the scanner what to do with the subtree of an element.
type Action uint8

const (
	// Descend delivers events for the element's content and its end tag.
	Descend Action = iota
	// Skip suppresses every event inside the element, including its end tag.
	// The subtree is still checked for well-formedness.
	Skip
)

// Handler receives scanner events in document order.
type Handler interface {
	// ProcInst is called for <?target inst?>, including the XML declaration.
	ProcInst(target, inst string, line int)

	// StartElement is called for an opening (or empty-element) tag.
	StartElement(name string, attrs []Attr, line int) Action

	// EndElement is called for the end of every element StartElement descended into.
	EndElement(name string, line int)

	// Text is called for character data and CDATA content inside the root element.
	Text(data string, line int)

	// Comment is called for <!-- text -->.
	Comment(text string, line int)
}

// Options configures a Scanner.
type Options struct {
	// DiscardText suppresses Text events. Entity errors are still counted.
	DiscardText bool
}

type frame struct {
	name       string
	line       int
	skipped    bool // nothing inside is dispatched
	dispatched bool // StartElement returned Descend
}

// Scanner is a single-use push scanner for one document.
type Scanner struct {
	opts Options
	diag *Collector

	h        Handler
	src      []byte
	pos      int
	line     int
	lpos     int
	stack    []frame
	rootSeen bool
	stopped  bool
}

// NewScanner creates a scanner with a fresh collector.
func NewScanner(opts Options) *Scanner {
	return &Scanner{
		opts: opts,
		diag: NewCollector(),
	}
}

// Collector returns the collector this scanner records into. Handlers may
// report their own errors through it.
func (s *Scanner) Collector() *Collector {
	return s.diag
}

// Scan reads the whole document from r and scans it.
// The returned error is only set when reading fails.
func (s *Scanner) Scan(r io.Reader, h Handler) (*Collector, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return s.diag, err
	}
	return s.ScanBytes(data, h), nil
}

// ScanBytes scans data and pushes events to h.
func (s *Scanner) ScanBytes(data []byte, h Handler) *Collector {
	if s.h != nil {
		panic("markup: Scanner is single-use")
	}
	s.h = h

	decoded, ok := decodeInput(data, s.diag)
	if !ok {
		return s.diag
	}
	s.src = decoded
	s.line = 1

	for s.pos < len(s.src) && !s.stopped {
		if s.src[s.pos] == '<' {
			s.scanMarkup()
		} else {
			s.scanText()
		}
	}
	if !s.stopped {
		s.finish()
	}
	return s.diag
}

// lineAt returns the line of pos. Positions must be requested in increasing order.
func (s *Scanner) lineAt(pos int) int {
	if pos > len(s.src) {
		pos = len(s.src)
	}
	for s.lpos < pos {
		if s.src[s.lpos] == '\n' {
			s.line++
		}
		s.lpos++
	}
	return s.line
}

func (s *Scanner) fatal(line int, format string, args ...any) {
	s.diag.Fatalf(line, format, args...)
	s.stopped = true
}

func (s *Scanner) inSkipped() bool {
	return len(s.stack) > 0 && s.stack[len(s.stack)-1].skipped
}

func (s *Scanner) scanText() {
	start := s.pos
	end := indexByteFrom(s.src, start, '<')
	if end < 0 {
		end = len(s.src)
	}
	line := s.lineAt(start)
	s.pos = end
	s.emitText(string(s.src[start:end]), line, true)
}

func (s *Scanner) emitText(raw string, line int, escaped bool) {
	if len(s.stack) == 0 {
		if strings.TrimSpace(raw) != "" {
			s.diag.Errorf(line, "text outside root element")
		}
		return
	}

	data := raw
	if escaped {
		data = s.unescape(raw, line)
	}
	if s.opts.DiscardText || s.inSkipped() {
		return
	}
	s.h.Text(data, line)
}

var (
	prefixPI      = []byte("<?")
	prefixComment = []byte("<!--")
	prefixCDATA   = []byte("<![CDATA[")
	prefixDecl    = []byte("<!")
	prefixEnd     = []byte("</")
)

func (s *Scanner) scanMarkup() {
	start := s.pos
	line := s.lineAt(start)
	rest := s.src[start:]

	switch {
	case bytes.HasPrefix(rest, prefixPI):
		end := bytes.Index(rest[2:], []byte("?>"))
		if end < 0 {
			s.fatal(line, "unterminated processing instruction")
			return
		}
		body := string(rest[2 : 2+end])
		s.pos = start + 2 + end + 2
		target, inst := splitTarget(body)
		if target == "" {
			s.diag.Errorf(line, "processing instruction without target")
			return
		}
		if !s.inSkipped() {
			s.h.ProcInst(target, inst, line)
		}

	case bytes.HasPrefix(rest, prefixComment):
		end := bytes.Index(rest[4:], []byte("-->"))
		if end < 0 {
			s.fatal(line, "unterminated comment")
			return
		}
		text := string(rest[4 : 4+end])
		s.pos = start + 4 + end + 3
		if !s.inSkipped() {
			s.h.Comment(text, line)
		}

	case bytes.HasPrefix(rest, prefixCDATA):
		end := bytes.Index(rest[9:], []byte("]]>"))
		if end < 0 {
			s.fatal(line, "unterminated CDATA section")
			return
		}
		text := string(rest[9 : 9+end])
		s.pos = start + 9 + end + 3
		s.emitText(text, line, false)

	case bytes.HasPrefix(rest, prefixDecl):
		s.skipDeclaration(line)

	case bytes.HasPrefix(rest, prefixEnd):
		s.scanEndTag(line)

	default:
		s.scanStartTag(line)
	}
}

// skipDeclaration skips <!DOCTYPE ...> and similar, including an internal subset.
func (s *Scanner) skipDeclaration(line int) {
	depth := 0
	for i := s.pos; i < len(s.src); i++ {
		switch s.src[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				s.pos = i + 1
				return
			}
		}
	}
	s.fatal(line, "unterminated declaration")
}

func (s *Scanner) scanEndTag(line int) {
	i := s.pos + 2
	end := indexByteFrom(s.src, i, '>')
	if end < 0 {
		s.fatal(line, "unterminated end tag")
		return
	}
	name := strings.TrimSpace(string(s.src[i:end]))
	s.pos = end + 1
	if !isName(name) {
		s.diag.Errorf(line, "malformed end tag")
		return
	}
	s.closeElement(name, line)
}

func (s *Scanner) scanStartTag(line int) {
	i := s.pos + 1
	nameEnd := scanName(s.src, i)
	if nameEnd == i {
		s.diag.Errorf(line, "'<' not followed by a tag name")
		s.pos = i
		return
	}
	name := string(s.src[i:nameEnd])
	s.pos = nameEnd

	attrs, selfClose, ok := s.scanAttributes(line)
	if !ok {
		return
	}
	s.openElement(name, attrs, line, selfClose)
}

// scanAttributes reads attributes up to and including the closing '>' or '/>'.
// ok is false when a fatal error stopped the scan.
func (s *Scanner) scanAttributes(line int) (attrs []Attr, selfClose bool, ok bool) {
	var seen map[string]bool

	for {
		s.skipSpace()
		if s.pos >= len(s.src) {
			s.fatal(line, "unterminated start tag")
			return nil, false, false
		}

		switch s.src[s.pos] {
		case '>':
			s.pos++
			return attrs, false, true
		case '/':
			if s.pos+1 < len(s.src) && s.src[s.pos+1] == '>' {
				s.pos += 2
				return attrs, true, true
			}
			s.diag.Errorf(s.lineAt(s.pos), "malformed start tag")
			return s.resync(line, attrs)
		}

		nameEnd := scanName(s.src, s.pos)
		if nameEnd == s.pos {
			s.diag.Errorf(s.lineAt(s.pos), "malformed attribute")
			return s.resync(line, attrs)
		}
		name := string(s.src[s.pos:nameEnd])
		s.pos = nameEnd

		s.skipSpace()
		if s.pos >= len(s.src) || s.src[s.pos] != '=' {
			s.diag.Errorf(s.lineAt(s.pos), "attribute %q has no value", name)
			return s.resync(line, attrs)
		}
		s.pos++
		s.skipSpace()
		if s.pos >= len(s.src) {
			s.fatal(line, "unterminated start tag")
			return nil, false, false
		}

		quote := s.src[s.pos]
		if quote != '"' && quote != '\'' {
			s.diag.Errorf(s.lineAt(s.pos), "attribute %q value is not quoted", name)
			return s.resync(line, attrs)
		}
		valueEnd := indexByteFrom(s.src, s.pos+1, quote)
		if valueEnd < 0 {
			s.fatal(s.lineAt(s.pos), "unterminated attribute value")
			return nil, false, false
		}
		valueLine := s.lineAt(s.pos)
		raw := string(s.src[s.pos+1 : valueEnd])
		s.pos = valueEnd + 1

		if strings.IndexByte(raw, '<') >= 0 {
			s.diag.Errorf(valueLine, "'<' in value of attribute %q", name)
		}
		value := s.unescape(normalizeAttrSpace(raw), valueLine)

		if seen[name] {
			s.diag.Errorf(valueLine, "duplicate attribute %q", name)
			continue
		}
		if seen == nil {
			seen = make(map[string]bool)
		}
		seen[name] = true
		attrs = append(attrs, Attr{Name: name, Value: value})
	}
}

// resync skips to the end of a broken start tag, keeping the attributes read so far.
func (s *Scanner) resync(line int, attrs []Attr) ([]Attr, bool, bool) {
	end := indexByteFrom(s.src, s.pos, '>')
	if end < 0 {
		s.fatal(line, "unterminated start tag")
		return nil, false, false
	}
	selfClose := end > 0 && s.src[end-1] == '/'
	s.pos = end + 1
	return attrs, selfClose, true
}

func (s *Scanner) openElement(name string, attrs []Attr, line int, selfClose bool) {
	f := frame{name: name, line: line}

	switch {
	case len(s.stack) == 0 && s.rootSeen:
		s.diag.Errorf(line, "unexpected second root element <%s>", name)
		f.skipped = true
	case s.inSkipped():
		f.skipped = true
	default:
		if len(s.stack) == 0 {
			s.rootSeen = true
		}
		if s.h.StartElement(name, attrs, line) == Skip {
			f.skipped = true
		} else {
			f.dispatched = true
		}
	}

	if selfClose {
		s.endFrame(f, line)
		return
	}
	s.stack = append(s.stack, f)
}

func (s *Scanner) closeElement(name string, line int) {
	i := len(s.stack) - 1
	for ; i >= 0; i-- {
		if s.stack[i].name == name {
			break
		}
	}
	if i < 0 {
		s.diag.Errorf(line, "unexpected end tag </%s>", name)
		return
	}

	for j := len(s.stack) - 1; j > i; j-- {
		f := s.stack[j]
		s.diag.Errorf(line, "unclosed tag <%s> (opened at line %d)", f.name, f.line)
		s.endFrame(f, line)
	}
	f := s.stack[i]
	s.stack = s.stack[:i]
	s.endFrame(f, line)
}

func (s *Scanner) endFrame(f frame, line int) {
	if f.dispatched {
		s.h.EndElement(f.name, line)
	}
}

func (s *Scanner) finish() {
	line := s.lineAt(len(s.src))
	for j := len(s.stack) - 1; j >= 0; j-- {
		f := s.stack[j]
		s.diag.Errorf(line, "unclosed tag <%s> (opened at line %d)", f.name, f.line)
		s.endFrame(f, line)
	}
	s.stack = nil

	if !s.rootSeen {
		s.diag.Fatalf(line, "no root element")
	}
}

func (s *Scanner) skipSpace() {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

// unescape expands entity and character references.
func (s *Scanner) unescape(raw string, line int) string {
	if strings.IndexByte(raw, '&') < 0 {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); {
		c := raw[i]
		if c != '&' {
			b.WriteByte(c)
			i++
			continue
		}
		semi := strings.IndexByte(raw[i:], ';')
		if semi < 0 {
			s.diag.Errorf(line, "unterminated entity reference")
			b.WriteString(raw[i:])
			break
		}
		ent := raw[i+1 : i+semi]
		if r, ok := resolveEntity(ent); ok {
			b.WriteString(r)
		} else {
			s.diag.Errorf(line, "unknown entity or invalid character reference &%s;", ent)
			b.WriteString(raw[i : i+semi+1])
		}
		i += semi + 1
	}
	return b.String()
}

func resolveEntity(ent string) (string, bool) {
	switch ent {
	case "lt":
		return "<", true
	case "gt":
		return ">", true
	case "amp":
		return "&", true
	case "quot":
		return `"`, true
	case "apos":
		return "'", true
	}

	var (
		n   uint64
		err error
	)
	switch {
	case strings.HasPrefix(ent, "#x"), strings.HasPrefix(ent, "#X"):
		n, err = strconv.ParseUint(ent[2:], 16, 32)
	case strings.HasPrefix(ent, "#"):
		n, err = strconv.ParseUint(ent[1:], 10, 32)
	default:
		return "", false
	}
	if err != nil || !isXMLChar(rune(n)) {
		return "", false
	}
	return string(rune(n)), true
}

// isXMLChar reports whether r may appear in a document: tab, LF, CR and
// everything from U+0020 except surrogates, U+FFFE and U+FFFF.
func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r < 0x20, r == 0xFFFE, r == 0xFFFF:
		return false
	}
	return utf8.ValidRune(r)
}

// normalizeAttrSpace applies attribute-value whitespace normalization.
func normalizeAttrSpace(raw string) string {
	if strings.IndexAny(raw, "\t\n\r") < 0 {
		return raw
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return ' '
		}
		return r
	}, raw)
}

func splitTarget(body string) (target, inst string) {
	body = strings.TrimLeft(body, " \t\r\n")
	i := strings.IndexAny(body, " \t\r\n")
	if i < 0 {
		return body, ""
	}
	return body[:i], strings.TrimSpace(body[i:])
}

// pseudoAttrRegex matches name="value" pairs in a processing instruction.
var pseudoAttrRegex = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_.\-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// PseudoAttr returns the value of a pseudo-attribute inside a processing
// instruction body, such as version in <?eclipse version="3.0"?>.
func PseudoAttr(inst, name string) (string, bool) {
	for _, m := range pseudoAttrRegex.FindAllStringSubmatch(inst, -1) {
		if m[1] != name {
			continue
		}
		if m[2] != "" {
			return m[2], true
		}
		return m[3], true
	}
	return "", false
}

func indexByteFrom(b []byte, from int, c byte) int {
	if from >= len(b) {
		return -1
	}
	i := bytes.IndexByte(b[from:], c)
	if i < 0 {
		return -1
	}
	return from + i
}

func scanName(b []byte, i int) int {
	j := i
	for j < len(b) && isNameByte(b[j], j == i) {
		j++
	}
	return j
}

func isName(s string) bool {
	return s != "" && scanName([]byte(s), 0) == len(s)
}

func isNameByte(c byte, first bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == ':', c >= 0x80:
		return true
	case c >= '0' && c <= '9', c == '-', c == '.':
		return !first
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
