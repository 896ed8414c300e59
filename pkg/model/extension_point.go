package model

import "strings"

// ExtensionPoint declares a contribution slot. Only the schema reference is
// stored; the schema itself is resolved by callers.
type ExtensionPoint struct {
	identifiableBase

	schema string
}

func newExtensionPoint(m *Model, a *arena, id string) *ExtensionPoint {
	p := &ExtensionPoint{}
	p.id = id
	p.register(m, a, KindExtensionPoint, p)
	return p
}

// Schema returns the schema reference.
func (p *ExtensionPoint) Schema() string {
	return p.schema
}

// SetSchema changes the schema reference.
func (p *ExtensionPoint) SetSchema(schema string) error {
	return p.setString(PropSchema, &p.schema, schema)
}

// FullID returns the id qualified with the declaring plugin id when the
// declared id is simple.
func (p *ExtensionPoint) FullID() string {
	root, ok := p.Parent().(*Root)
	if !ok || root.ID() == "" {
		return p.id
	}
	if strings.Contains(p.id, ".") {
		return p.id
	}
	return root.ID() + "." + p.id
}

// RestoreProperty re-applies oldValue for key.
func (p *ExtensionPoint) RestoreProperty(key string, oldValue, newValue any) error {
	if key == PropSchema {
		s, err := stringValue(key, oldValue)
		if err != nil {
			return err
		}
		return p.SetSchema(s)
	}
	if handled, err := p.restore(key, oldValue); handled {
		return err
	}
	return unknownProperty(p, key)
}
