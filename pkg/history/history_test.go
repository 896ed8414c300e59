package history_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manifestkit/manifest-go/pkg/history"
	"github.com/manifestkit/manifest-go/pkg/model"
)

const testManifest = `<?xml version="1.0" encoding="UTF-8"?>
<?eclipse version="3.0"?>
<plugin id="org.example.core" name="Core" version="1.2.0">
   <runtime>
      <library name="core.jar"/>
      <library name="extra.jar"/>
   </runtime>
   <requires>
      <import plugin="org.example.base" version="1.0.0"/>
   </requires>
   <extension-point id="views" name="Views"/>
   <extension id="main" point="org.example.core.views">
      <view id="v1" class="a.B">text</view>
      <category name="c"><item/></category>
   </extension>
   <extension point="org.other.menus">
      <menu label="x"/>
   </extension>
</plugin>
`

func load(t *testing.T) *model.Model {
	t.Helper()
	m := model.New(model.DefaultOptions())
	require.NoError(t, m.Load(strings.NewReader(testManifest), false))
	return m
}

func serialize(t *testing.T, m *model.Model) string {
	t.Helper()
	data, err := m.Serialize()
	require.NoError(t, err)
	return string(data)
}

func undoAll(t *testing.T, h *history.Manager) int {
	t.Helper()
	n := 0
	for {
		err := h.Undo()
		if errors.Is(err, history.ErrNothingToUndo) {
			return n
		}
		require.NoError(t, err)
		n++
	}
}

func redoAll(t *testing.T, h *history.Manager) int {
	t.Helper()
	n := 0
	for {
		err := h.Redo()
		if errors.Is(err, history.ErrNothingToRedo) {
			return n
		}
		require.NoError(t, err)
		n++
	}
}

// edit applies one edit of every kind.
func edit(t *testing.T, m *model.Model) {
	t.Helper()
	root := m.Root()
	main := root.Extensions()[0]
	view := main.Elements()[0]

	require.NoError(t, root.SetVersion("2.0.0"))
	require.NoError(t, root.SetName(""))
	require.NoError(t, view.SetAttributeValue("extra", "1"))
	require.NoError(t, view.SetAttributeValue("class", "c.D"))
	require.NoError(t, view.SetText("changed"))
	require.NoError(t, root.Imports()[0].SetMatch(model.MatchPerfect))

	x := m.NewExtension("org.new")
	require.NoError(t, root.AddExtensionAt(1, x))
	child := m.NewElement("entry")
	require.NoError(t, x.AddElement(child))
	require.NoError(t, child.SetAttributeValue("k", "v"))

	require.NoError(t, root.RemoveLibrary(root.Libraries()[0]))
	require.NoError(t, root.SwapExtensions(root.Extensions()[0], root.Extensions()[2]))
	require.NoError(t, main.RemoveElement(main.Elements()[1]))
	require.NoError(t, root.RemoveExtensionPoint(root.ExtensionPoints()[0]))
}

func TestUndoRedo(t *testing.T) {
	t.Run("UndoRestoresDocument", func(t *testing.T) {
		m := load(t)
		h := history.NewManager(m, 0)
		defer h.Close()

		before := serialize(t, m)
		edit(t, m)
		after := serialize(t, m)
		require.NotEqual(t, before, after)

		n := undoAll(t, h)
		assert.Equal(t, 13, n)
		if diff := cmp.Diff(before, serialize(t, m)); diff != "" {
			t.Errorf("document after undo (-want +got):\n%s", diff)
		}

		assert.Equal(t, 13, redoAll(t, h))
		if diff := cmp.Diff(after, serialize(t, m)); diff != "" {
			t.Errorf("document after redo (-want +got):\n%s", diff)
		}
	})

	t.Run("UndoRedoUndo", func(t *testing.T) {
		m := load(t)
		h := history.NewManager(m, 0)
		defer h.Close()

		before := serialize(t, m)
		edit(t, m)
		undoAll(t, h)
		redoAll(t, h)
		undoAll(t, h)
		assert.Equal(t, before, serialize(t, m))
	})

	t.Run("EmptyStacks", func(t *testing.T) {
		h := history.NewManager(load(t), 0)
		assert.ErrorIs(t, h.Undo(), history.ErrNothingToUndo)
		assert.ErrorIs(t, h.Redo(), history.ErrNothingToRedo)
		assert.False(t, h.CanUndo())
		assert.False(t, h.CanRedo())
	})

	t.Run("NewEditClearsRedo", func(t *testing.T) {
		m := load(t)
		h := history.NewManager(m, 0)
		require.NoError(t, m.Root().SetVersion("2"))
		require.NoError(t, h.Undo())
		assert.True(t, h.CanRedo())

		require.NoError(t, m.Root().SetVersion("3"))
		assert.False(t, h.CanRedo())
		undo, redo := h.Depth()
		assert.Equal(t, 1, undo)
		assert.Equal(t, 0, redo)
	})

	t.Run("UndoIsObservable", func(t *testing.T) {
		m := load(t)
		h := history.NewManager(m, 0)
		require.NoError(t, m.Root().SetVersion("2"))

		var got []model.ChangeEvent
		m.Subscribe(model.ObserverFunc(func(ev model.ChangeEvent) { got = append(got, ev) }))
		require.NoError(t, h.Undo())
		require.Len(t, got, 1)
		assert.Equal(t, model.PropertyChanged, got[0].Kind)
		assert.Equal(t, "2", got[0].OldValue)
		assert.Equal(t, "1.2.0", got[0].NewValue)
	})
}

func TestGroup(t *testing.T) {
	t.Run("OneStep", func(t *testing.T) {
		m := load(t)
		h := history.NewManager(m, 0)
		before := serialize(t, m)

		err := h.Group(func() error {
			x := m.NewExtension("p")
			if err := m.Root().AddExtension(x); err != nil {
				return err
			}
			if err := x.SetID("grouped"); err != nil {
				return err
			}
			return x.AddElement(m.NewElement("e"))
		})
		require.NoError(t, err)

		undo, _ := h.Depth()
		assert.Equal(t, 1, undo)
		require.NoError(t, h.Undo())
		assert.Equal(t, before, serialize(t, m))
		assert.False(t, h.CanUndo())
	})

	t.Run("FailureKeepsAppliedEdits", func(t *testing.T) {
		m := load(t)
		h := history.NewManager(m, 0)
		boom := errors.New("boom")

		err := h.Group(func() error {
			if err := m.Root().SetVersion("9"); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.True(t, h.CanUndo())
	})

	t.Run("EmptyGroup", func(t *testing.T) {
		h := history.NewManager(load(t), 0)
		require.NoError(t, h.Group(func() error { return nil }))
		assert.False(t, h.CanUndo())
	})

	t.Run("NestedIsBusy", func(t *testing.T) {
		h := history.NewManager(load(t), 0)
		err := h.Group(func() error {
			return h.Group(func() error { return nil })
		})
		assert.ErrorIs(t, err, history.ErrBusy)
	})
}

func TestManagerLifecycle(t *testing.T) {
	t.Run("ReloadClears", func(t *testing.T) {
		m := load(t)
		h := history.NewManager(m, 0)
		require.NoError(t, m.Root().SetVersion("2"))
		require.NoError(t, m.Reload(strings.NewReader(testManifest), false))
		assert.False(t, h.CanUndo())
	})

	t.Run("ResetClears", func(t *testing.T) {
		m := load(t)
		h := history.NewManager(m, 0)
		require.NoError(t, m.Root().SetVersion("2"))
		m.Reset()
		assert.False(t, h.CanUndo())
	})

	t.Run("Limit", func(t *testing.T) {
		m := load(t)
		h := history.NewManager(m, 3)
		for _, v := range []string{"a", "b", "c", "d", "e"} {
			require.NoError(t, m.Root().SetVersion(v))
		}
		assert.Equal(t, 3, undoAll(t, h))
		assert.Equal(t, "b", m.Root().Version())
	})

	t.Run("Close", func(t *testing.T) {
		m := load(t)
		h := history.NewManager(m, 0)
		h.Close()
		require.NoError(t, m.Root().SetVersion("2"))
		assert.False(t, h.CanUndo())
		assert.Equal(t, 0, m.ObserverCount())
	})

	t.Run("Clear", func(t *testing.T) {
		m := load(t)
		h := history.NewManager(m, 0)
		require.NoError(t, m.Root().SetVersion("2"))
		h.Clear()
		assert.False(t, h.CanUndo())
	})

	t.Run("NotEditableKeepsStep", func(t *testing.T) {
		m := load(t)
		h := history.NewManager(m, 0)
		require.NoError(t, m.Root().SetVersion("2"))
		m.SetEditable(false)

		assert.ErrorIs(t, h.Undo(), model.ErrEditNotPermitted)
		assert.True(t, h.CanUndo())

		m.SetEditable(true)
		require.NoError(t, h.Undo())
		assert.Equal(t, "1.2.0", m.Root().Version())
	})
}

func TestInvert(t *testing.T) {
	t.Run("WorldChanged", func(t *testing.T) {
		assert.Error(t, history.Invert(model.ChangeEvent{Kind: model.WorldChanged}))
	})

	t.Run("MissingContainer", func(t *testing.T) {
		m := load(t)
		ev := model.ChangeEvent{Kind: model.Insert, Subject: m.Root().Extensions()[0]}
		assert.Error(t, history.Invert(ev))
	})
}
