package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

func TestCollector(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		c := NewCollector()
		assert.False(t, c.HasErrors())
		assert.NoError(t, c.Err())
		assert.Empty(t, c.Lines())
	})

	t.Run("Counts", func(t *testing.T) {
		c := NewCollector()
		c.Errorf(3, "bad %s", "thing")
		c.Errorf(0, "no line")
		c.Fatalf(7, "stop")

		assert.Equal(t, 2, c.ErrorCount())
		assert.Equal(t, 1, c.FatalCount())
		assert.Equal(t, 3, c.Count())
		assert.Equal(t, []int{3, 7}, c.Lines())

		errs := multierr.Errors(c.Err())
		assert.Len(t, errs, 3)
		assert.EqualError(t, errs[0], "line 3: error: bad thing")
		assert.EqualError(t, errs[1], "error: no line")
		assert.EqualError(t, errs[2], "line 7: fatal: stop")
	})

	t.Run("DiagnosticsIsCopy", func(t *testing.T) {
		c := NewCollector()
		c.Errorf(1, "x")
		d := c.Diagnostics()
		d[0].Message = "changed"
		assert.Equal(t, "x", c.Diagnostics()[0].Message)
	})
}
