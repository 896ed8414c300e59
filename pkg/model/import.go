package model

// MatchRule is the version match rule of an import or a fragment host.
type MatchRule uint8

// Match rules.
const (
	MatchNone MatchRule = iota
	MatchPerfect
	MatchEquivalent
	MatchCompatible
	MatchGreaterOrEqual
)

// String returns the manifest attribute value, empty for MatchNone.
func (r MatchRule) String() string {
	switch r {
	case MatchPerfect:
		return "perfect"
	case MatchEquivalent:
		return "equivalent"
	case MatchCompatible:
		return "compatible"
	case MatchGreaterOrEqual:
		return "greaterOrEqual"
	default:
		return ""
	}
}

// ParseMatchRule parses a match attribute value. The empty string is MatchNone.
func ParseMatchRule(s string) (MatchRule, bool) {
	switch s {
	case "":
		return MatchNone, true
	case "perfect":
		return MatchPerfect, true
	case "equivalent":
		return MatchEquivalent, true
	case "compatible":
		return MatchCompatible, true
	case "greaterOrEqual":
		return MatchGreaterOrEqual, true
	default:
		return MatchNone, false
	}
}

// Import is a <requires>/<import> declaration. ID is the required plugin id.
type Import struct {
	identifiableBase

	version    string
	match      MatchRule
	reexported bool
	optional   bool
}

func newImport(m *Model, a *arena, pluginID string) *Import {
	i := &Import{}
	i.id = pluginID
	i.register(m, a, KindImport, i)
	return i
}

// Version returns the required version, empty when unconstrained.
func (i *Import) Version() string {
	return i.version
}

// SetVersion changes the required version.
func (i *Import) SetVersion(v string) error {
	return i.setString(PropVersion, &i.version, v)
}

// Match returns the explicit match rule.
func (i *Import) Match() MatchRule {
	return i.match
}

// SetMatch changes the explicit match rule.
func (i *Import) SetMatch(r MatchRule) error {
	return i.model.edit(i.arena, PropMatch, func() (*change, error) {
		if i.match == r {
			return nil, nil
		}
		old := i.match
		i.match = r
		return propertyChange(i, PropMatch, old, r), nil
	})
}

// EffectiveMatch returns the match rule that applies to Version. Without an
// explicit rule the dialect decides: legacy manifests use compatible,
// current ones greaterOrEqual. Without a version there is no rule.
func (i *Import) EffectiveMatch() MatchRule {
	if i.match != MatchNone || i.version == "" {
		return i.match
	}
	if root, ok := i.Parent().(*Root); ok && root.IsLegacy() {
		return MatchCompatible
	}
	return MatchGreaterOrEqual
}

// Reexported reports whether the import is re-exported (export="true").
func (i *Import) Reexported() bool {
	return i.reexported
}

// SetReexported changes the re-export flag.
func (i *Import) SetReexported(v bool) error {
	return i.setBool(PropReexported, &i.reexported, v)
}

// Optional reports whether the import is optional.
func (i *Import) Optional() bool {
	return i.optional
}

// SetOptional changes the optional flag.
func (i *Import) SetOptional(v bool) error {
	return i.setBool(PropOptional, &i.optional, v)
}

// RestoreProperty re-applies oldValue for key.
func (i *Import) RestoreProperty(key string, oldValue, newValue any) error {
	switch key {
	case PropVersion:
		s, err := stringValue(key, oldValue)
		if err != nil {
			return err
		}
		return i.SetVersion(s)
	case PropMatch:
		r, err := matchValue(key, oldValue)
		if err != nil {
			return err
		}
		return i.SetMatch(r)
	case PropReexported:
		b, err := boolValue(key, oldValue)
		if err != nil {
			return err
		}
		return i.SetReexported(b)
	case PropOptional:
		b, err := boolValue(key, oldValue)
		if err != nil {
			return err
		}
		return i.SetOptional(b)
	}
	if handled, err := i.restore(key, oldValue); handled {
		return err
	}
	return unknownProperty(i, key)
}
