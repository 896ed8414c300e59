package markup

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures events as compact strings.
type recorder struct {
	events []string
	skip   map[string]bool
}

func (r *recorder) ProcInst(target, inst string, line int) {
	r.events = append(r.events, fmt.Sprintf("pi %s %q @%d", target, inst, line))
}

func (r *recorder) StartElement(name string, attrs []Attr, line int) Action {
	var parts []string
	for _, a := range attrs {
		parts = append(parts, a.Name+"="+a.Value)
	}
	r.events = append(r.events, fmt.Sprintf("start %s [%s] @%d", name, strings.Join(parts, ","), line))
	if r.skip[name] {
		return Skip
	}
	return Descend
}

func (r *recorder) EndElement(name string, line int) {
	r.events = append(r.events, fmt.Sprintf("end %s @%d", name, line))
}

func (r *recorder) Text(data string, line int) {
	if strings.TrimSpace(data) == "" {
		return
	}
	r.events = append(r.events, fmt.Sprintf("text %q @%d", data, line))
}

func (r *recorder) Comment(text string, line int) {
	r.events = append(r.events, fmt.Sprintf("comment %q @%d", text, line))
}

func scan(t *testing.T, doc string, opts Options, skip ...string) (*recorder, *Collector) {
	t.Helper()
	r := &recorder{skip: make(map[string]bool)}
	for _, s := range skip {
		r.skip[s] = true
	}
	c := NewScanner(opts).ScanBytes([]byte(doc), r)
	return r, c
}

func TestScanWellFormed(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<?eclipse version="3.0"?>
<plugin id="x" name='n'>
   <!-- lead -->
   <runtime/>
   <extension point="a">
      <child k="v &amp; w">hi &lt;there&gt;</child>
      <![CDATA[<raw>]]>
   </extension>
</plugin>
`
	r, c := scan(t, doc, Options{})
	require.False(t, c.HasErrors(), "diagnostics: %v", c.Diagnostics())

	assert.Equal(t, []string{
		`pi xml "version=\"1.0\" encoding=\"UTF-8\"" @1`,
		`pi eclipse "version=\"3.0\"" @2`,
		`start plugin [id=x,name=n] @3`,
		`comment " lead " @4`,
		`start runtime [] @5`,
		`end runtime @5`,
		`start extension [point=a] @6`,
		`start child [k=v & w] @7`,
		`text "hi <there>" @7`,
		`end child @7`,
		`text "<raw>" @8`,
		`end extension @9`,
		`end plugin @10`,
	}, r.events)
}

func TestScanSkip(t *testing.T) {
	doc := `<plugin>
<extension point="a"><x><y/></x><!-- c --></extension>
<extension point="b"/>
</plugin>`

	t.Run("SkippedSubtreeIsSilent", func(t *testing.T) {
		r, c := scan(t, doc, Options{}, "extension")
		require.Zero(t, c.Count())
		assert.Equal(t, []string{
			`start plugin [] @1`,
			`start extension [point=a] @2`,
			`start extension [point=b] @3`,
			`end plugin @4`,
		}, r.events)
	})

	t.Run("ErrorsStillCounted", func(t *testing.T) {
		broken := `<plugin><extension point="a"><x>&bogus;<y></extension></plugin>`
		_, full := scan(t, broken, Options{})
		_, skipped := scan(t, broken, Options{DiscardText: true}, "extension")
		assert.Equal(t, full.Count(), skipped.Count())
		assert.Equal(t, 3, skipped.Count())
	})
}

func TestScanDiscardText(t *testing.T) {
	r, c := scan(t, `<plugin><a>text</a></plugin>`, Options{DiscardText: true})
	require.Zero(t, c.Count())
	for _, e := range r.events {
		assert.NotContains(t, e, "text")
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		errors int
		fatal  int
	}{
		{"UnclosedAtEOF", `<plugin><a><b>`, 3, 0},
		{"MismatchedEnd", `<plugin><a><b></a></plugin>`, 1, 0},
		{"StrayEnd", `<plugin></a></plugin>`, 1, 0},
		{"DuplicateAttribute", `<plugin id="a" id="b"/>`, 1, 0},
		{"UnquotedAttribute", `<plugin id=a/>`, 1, 0},
		{"AttributeWithoutValue", `<plugin id/>`, 1, 0},
		{"UnknownEntity", `<plugin>&nope;</plugin>`, 1, 0},
		{"TextOutsideRoot", `junk<plugin/>`, 1, 0},
		{"SecondRoot", `<plugin/><fragment/>`, 1, 0},
		{"LessThanWithoutName", `<plugin>< </plugin>`, 1, 0},
		{"InvalidUTF8Run", "<plugin>\xff\xfe</plugin>", 1, 0},
		{"TwoInvalidUTF8Runs", "<plugin>\xff a \xfe</plugin>", 2, 0},
		{"NoRoot", `<!-- only -->`, 0, 1},
		{"UnterminatedComment", `<plugin><!-- x`, 0, 1},
		{"UnterminatedTag", `<plugin id="x"`, 0, 1},
		{"UnsupportedEncoding", `<?xml version="1.0" encoding="x-nothing"?><plugin/>`, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := scan(t, tt.doc, Options{})
			assert.Equal(t, tt.errors, c.ErrorCount(), "errors: %v", c.Diagnostics())
			assert.Equal(t, tt.fatal, c.FatalCount(), "fatal: %v", c.Diagnostics())
		})
	}
}

func TestScanErrorAggregation(t *testing.T) {
	// Two tags left open by a mismatched end tag plus one invalid byte.
	doc := "<plugin id=\"x\">\n<extension point=\"a\"><a><b></extension>\n\xff</plugin>"
	r, c := scan(t, doc, Options{})

	assert.Equal(t, 3, c.Count())
	assert.Equal(t, 0, c.FatalCount())
	assert.Equal(t, []int{3, 2, 2}, c.Lines())

	// Implicitly closed elements still get their end events, innermost first.
	assert.Contains(t, strings.Join(r.events, "\n"), "end b @2\nend a @2\nend extension @2")

	err := c.Err()
	require.Error(t, err)
	var d Diagnostic
	assert.True(t, errors.As(err, &d))
}

func TestScanLines(t *testing.T) {
	doc := "<plugin>\n\n<a\n  x=\"1\"\n/>\n<b>\n</b>\n</plugin>"
	r, c := scan(t, doc, Options{})
	require.Zero(t, c.Count())
	assert.Equal(t, []string{
		`start plugin [] @1`,
		`start a [x=1] @3`,
		`end a @3`,
		`start b [] @6`,
		`end b @7`,
		`end plugin @8`,
	}, r.events)
}

func TestScanAttributeNormalization(t *testing.T) {
	r, c := scan(t, "<plugin a=\"x\ty\nz\" b=\"&#10;&#x41;\"/>", Options{})
	require.Zero(t, c.Count())
	assert.Equal(t, "start plugin [a=x y z,b=\nA] @1", r.events[0])
}

func TestScanInvalidCharacterReferences(t *testing.T) {
	tests := []struct {
		ref   string
		valid bool
	}{
		{"&#9;", true},
		{"&#xA;", true},
		{"&#13;", true},
		{"&#x20;", true},
		{"&#xE9;", true},
		{"&#x1F600;", true},
		{"&#0;", false},
		{"&#x1;", false},
		{"&#31;", false},
		{"&#xD800;", false},
		{"&#xFFFE;", false},
		{"&#xFFFF;", false},
		{"&#x110000;", false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			_, c := scan(t, "<plugin a=\""+tt.ref+"\">"+tt.ref+"</plugin>", Options{})
			if tt.valid {
				assert.Zero(t, c.Count())
			} else {
				assert.Equal(t, 2, c.ErrorCount())
			}
		})
	}
}

func TestScanDoctype(t *testing.T) {
	doc := `<!DOCTYPE plugin [ <!ENTITY x "y"> ]><plugin/>`
	r, c := scan(t, doc, Options{})
	require.Zero(t, c.Count())
	assert.Equal(t, []string{`start plugin [] @1`, `end plugin @1`}, r.events)
}

func TestScanUTF16(t *testing.T) {
	// UTF-16LE with BOM: "<p/>"
	doc := []byte{0xFF, 0xFE, '<', 0, 'p', 0, '/', 0, '>', 0}
	r := &recorder{}
	c := NewScanner(Options{}).ScanBytes(doc, r)
	require.Zero(t, c.Count())
	assert.Equal(t, []string{`start p [] @1`, `end p @1`}, r.events)
}

func TestScanDeclaredLatin1(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><p a=\"caf\xe9\"/>")
	r := &recorder{}
	c := NewScanner(Options{}).ScanBytes(doc, r)
	require.Zero(t, c.Count())
	assert.Equal(t, "start p [a=café] @1", r.events[1])
}

func TestScannerSingleUse(t *testing.T) {
	s := NewScanner(Options{})
	s.ScanBytes([]byte("<p/>"), &recorder{})
	assert.Panics(t, func() {
		s.ScanBytes([]byte("<p/>"), &recorder{})
	})
}

func TestPseudoAttr(t *testing.T) {
	v, ok := PseudoAttr(`version="3.0" other='x'`, "version")
	assert.True(t, ok)
	assert.Equal(t, "3.0", v)

	v, ok = PseudoAttr(`version="3.0" other='x'`, "other")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = PseudoAttr(`version="3.0"`, "missing")
	assert.False(t, ok)
}
