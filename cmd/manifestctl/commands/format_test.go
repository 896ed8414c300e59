package commands

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFmt(t *testing.T) {
	cfg := testConfig()

	t.Run("CanonicalUnchanged", func(t *testing.T) {
		path := writeManifest(t, t.TempDir(), "plugin.xml", sampleManifest)
		var buf bytes.Buffer
		require.NoError(t, RunFmt(path, FmtOptions{}, cfg, discardLogger(), &buf))
		assert.Equal(t, sampleManifest, buf.String())

		buf.Reset()
		require.NoError(t, RunFmt(path, FmtOptions{Write: true}, cfg, discardLogger(), &buf))
		assert.Equal(t, path+": unchanged\n", buf.String())
	})

	t.Run("Write", func(t *testing.T) {
		path := writeManifest(t, t.TempDir(), "plugin.xml", compactManifest)
		var buf bytes.Buffer
		require.NoError(t, RunFmt(path, FmtOptions{Write: true}, cfg, discardLogger(), &buf))
		assert.Equal(t, path+": formatted\n", buf.String())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), `<?xml version="1.0" encoding="UTF-8"?>`))

		buf.Reset()
		require.NoError(t, RunFmt(path, FmtOptions{Write: true}, cfg, discardLogger(), &buf))
		assert.Equal(t, path+": unchanged\n", buf.String(), "formatting is idempotent")
	})

	t.Run("Diff", func(t *testing.T) {
		path := writeManifest(t, t.TempDir(), "plugin.xml", compactManifest)
		var buf bytes.Buffer
		require.NoError(t, RunFmt(path, FmtOptions{Diff: true}, cfg, discardLogger(), &buf))
		out := buf.String()
		assert.Contains(t, out, "--- "+path)
		assert.Contains(t, out, "+++ "+path+" (canonical)")
		assert.Contains(t, out, "-"+compactManifest)
	})

	t.Run("ParseError", func(t *testing.T) {
		path := writeManifest(t, t.TempDir(), "plugin.xml", brokenManifest)
		var buf bytes.Buffer
		assert.Error(t, RunFmt(path, FmtOptions{Write: true}, cfg, discardLogger(), &buf))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, brokenManifest, string(data))
	})
}

func TestUnifiedDiff(t *testing.T) {
	d, err := unifiedDiff("p.xml", []byte("a\nb\n"), []byte("a\nb\n"))
	require.NoError(t, err)
	assert.Empty(t, d)

	d, err = unifiedDiff("p.xml", []byte("a\nb\n"), []byte("a\nc\n"))
	require.NoError(t, err)
	assert.Contains(t, d, "-b\n")
	assert.Contains(t, d, "+c\n")
}
