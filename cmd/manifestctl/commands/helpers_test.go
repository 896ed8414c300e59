package commands

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fatih/color"
)

// sampleManifest is in canonical form.
const sampleManifest = `<?xml version="1.0" encoding="UTF-8"?>
<?eclipse version="3.0"?>
<plugin
   id="org.example.core"
   name="%pluginName"
   version="1.2.0"
   provider-name="Example"
   class="org.example.core.Activator">

   <!-- libraries -->
   <runtime>
      <library name="core.jar">
         <export name="*"/>
      </library>
      <library name="lib/extra.jar" type="resource"/>
   </runtime>

   <!-- deps -->
   <requires>
      <import plugin="org.example.base" version="1.0.0" match="perfect"/>
      <import plugin="org.example.ui" export="true" optional="true"/>
   </requires>

   <extension-point id="views" name="Views" schema="schema/views.exsd"/>

   <extension id="main" point="org.example.core.views">
      <view id="v1" class="a.B">Some &amp; text</view>
      <category name="c">
         <item/>
      </category>
   </extension>

   <extension point="org.other.menus">
      <menu label="x"/>
   </extension>

   <custom flag="1"/>
</plugin>
`

const compactManifest = `<plugin id="x" version="1.0.0"><extension point="a"><child k="v"/></extension></plugin>`

const brokenManifest = `<plugin id="x"><extension point="a"></plugin>`

func init() {
	color.NoColor = true
}

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.PointSets = map[string][]string{"menus": {"org.other.menus"}}
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// syncBuffer is a bytes.Buffer safe for concurrent writers and readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}
