package model

import (
	"path"
	"slices"
)

// FullExportFilter is the single filter of a fully exported library.
const FullExportFilter = "*"

// Library is a <library> declaration of the runtime section. Its Name is the
// library path.
type Library struct {
	nodeBase

	libType string
	exports []string
}

func newLibrary(m *Model, a *arena, name string) *Library {
	l := &Library{}
	l.name = name
	l.register(m, a, KindLibrary, l)
	return l
}

// Type returns the library type, empty for code libraries.
func (l *Library) Type() string {
	return l.libType
}

// SetType changes the library type.
func (l *Library) SetType(t string) error {
	return l.setString(PropType, &l.libType, t)
}

// Exported reports whether any export filter is declared.
func (l *Library) Exported() bool {
	return len(l.exports) > 0
}

// FullyExported reports whether the library exports everything.
func (l *Library) FullyExported() bool {
	return len(l.exports) == 1 && l.exports[0] == FullExportFilter
}

// ContentFilters returns the export filters in declaration order.
func (l *Library) ContentFilters() []string {
	return slices.Clone(l.exports)
}

// SetExported toggles export. Enabling export on a library without filters
// installs the full export filter; disabling clears every filter.
func (l *Library) SetExported(exported bool) error {
	switch {
	case exported && l.Exported():
		return l.model.authorize()
	case exported:
		return l.SetContentFilters([]string{FullExportFilter})
	default:
		return l.SetContentFilters(nil)
	}
}

// AddContentFilter appends an export filter.
func (l *Library) AddContentFilter(filter string) error {
	if slices.Contains(l.exports, filter) {
		return l.model.authorize()
	}
	return l.SetContentFilters(append(slices.Clone(l.exports), filter))
}

// RemoveContentFilter removes an export filter.
func (l *Library) RemoveContentFilter(filter string) error {
	i := slices.Index(l.exports, filter)
	if i < 0 {
		if err := l.model.authorize(); err != nil {
			return err
		}
		return ErrNotFound
	}
	next := slices.Delete(slices.Clone(l.exports), i, i+1)
	return l.SetContentFilters(next)
}

// SetContentFilters replaces the export filters.
func (l *Library) SetContentFilters(filters []string) error {
	next := slices.Clone(filters)
	if len(next) == 0 {
		next = nil
	}
	return l.model.edit(l.arena, PropExportFilters, func() (*change, error) {
		if slices.Equal(l.exports, next) {
			return nil, nil
		}
		old := l.exports
		l.exports = next
		return propertyChange(l, PropExportFilters, slices.Clone(old), slices.Clone(next)), nil
	})
}

// RestoreProperty re-applies oldValue for key.
func (l *Library) RestoreProperty(key string, oldValue, newValue any) error {
	switch key {
	case PropType:
		s, err := stringValue(key, oldValue)
		if err != nil {
			return err
		}
		return l.SetType(s)
	case PropExportFilters:
		f, err := stringsValue(key, oldValue)
		if err != nil {
			return err
		}
		return l.SetContentFilters(f)
	}
	if handled, err := l.restore(key, oldValue); handled {
		return err
	}
	return unknownProperty(l, key)
}

// validExportFilter reports whether an <export name> value is usable.
// Malformed filters are advisory data and are dropped at load.
func validExportFilter(filter string) bool {
	if filter == "" {
		return false
	}
	_, err := path.Match(filter, "")
	return err == nil
}
