package model

import (
	"fmt"
	"slices"
	"strings"
)

// Property keys reported in PropertyChanged events and accepted by
// RestoreProperty. Element attributes use AttributeProperty(name).
const (
	PropID            = "id"
	PropName          = "name"
	PropVersion       = "version"
	PropProviderName  = "provider-name"
	PropClass         = "class"
	PropPluginID      = "plugin-id"
	PropPluginVersion = "plugin-version"
	PropMatch         = "match"
	PropSchemaVersion = "schema-version"
	PropPoint         = "point"
	PropSchema        = "schema"
	PropType          = "type"
	PropExportFilters = "export-filters"
	PropReexported    = "export"
	PropOptional      = "optional"
	PropText          = "text"
)

const attributePrefix = "@"

// AttributeProperty returns the property key used for an element attribute.
func AttributeProperty(name string) string {
	return attributePrefix + name
}

// AttributeName extracts the attribute name from a property key.
func AttributeName(key string) (string, bool) {
	if !strings.HasPrefix(key, attributePrefix) || len(key) == len(attributePrefix) {
		return "", false
	}
	return key[len(attributePrefix):], true
}

func propertyChange(subject Node, key string, oldValue, newValue any) *change {
	return &change{event: ChangeEvent{
		Kind:     PropertyChanged,
		Subject:  subject,
		Property: key,
		OldValue: oldValue,
		NewValue: newValue,
	}}
}

func unknownProperty(n Node, key string) error {
	return fmt.Errorf("%w: %q on %s", ErrUnknownProperty, key, n.Kind())
}

func stringValue(key string, v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("%w: %s wants string, got %T", ErrPropertyType, key, v)
}

func boolValue(key string, v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("%w: %s wants bool, got %T", ErrPropertyType, key, v)
}

func matchValue(key string, v any) (MatchRule, error) {
	switch m := v.(type) {
	case MatchRule:
		return m, nil
	case string:
		if r, ok := ParseMatchRule(m); ok {
			return r, nil
		}
	}
	return MatchNone, fmt.Errorf("%w: %s wants MatchRule, got %T", ErrPropertyType, key, v)
}

func stringsValue(key string, v any) ([]string, error) {
	switch s := v.(type) {
	case []string:
		return slices.Clone(s), nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s wants []string, got %T", ErrPropertyType, key, v)
}

// optionalString converts an attribute value to the *string form used by
// SetAttribute; nil means absent.
func optionalString(key string, v any) (*string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &s, nil
	case *string:
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s wants string or nil, got %T", ErrPropertyType, key, v)
}
