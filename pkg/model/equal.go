package model

import "slices"

// Equal reports whether a and b are structurally equal: same kinds, same
// properties, same attribute sets and the same children in the same order.
// Source ranges, handles and captured comments are ignored.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || a.Name() != b.Name() {
		return false
	}

	switch x := a.(type) {
	case *Root:
		y := b.(*Root)
		if x.id != y.id || x.version != y.version || x.providerName != y.providerName ||
			x.className != y.className || x.pluginID != y.pluginID ||
			x.pluginVersion != y.pluginVersion || x.match != y.match ||
			x.schemaVersion != y.schemaVersion {
			return false
		}
	case *Extension:
		y := b.(*Extension)
		if x.id != y.id || x.point != y.point {
			return false
		}
	case *ExtensionPoint:
		y := b.(*ExtensionPoint)
		if x.id != y.id || x.schema != y.schema {
			return false
		}
	case *Library:
		y := b.(*Library)
		if x.libType != y.libType || !slices.Equal(x.exports, y.exports) {
			return false
		}
	case *Import:
		y := b.(*Import)
		if x.id != y.id || x.version != y.version || x.match != y.match ||
			x.reexported != y.reexported || x.optional != y.optional {
			return false
		}
	case *Element:
		y := b.(*Element)
		if x.text != y.text || !sameAttributes(&x.attrs, &y.attrs) {
			return false
		}
	}

	ca, okA := a.(Container)
	cb, okB := b.(Container)
	if okA != okB {
		return false
	}
	if !okA {
		return true
	}
	ka, kb := ca.Children(), cb.Children()
	if len(ka) != len(kb) {
		return false
	}
	for i := range ka {
		if !Equal(ka[i], kb[i]) {
			return false
		}
	}
	return true
}

func sameAttributes(a, b *attributeMap) bool {
	if a.len() != b.len() {
		return false
	}
	for _, name := range a.names {
		v, ok := b.get(name)
		if !ok || v != a.values[name] {
			return false
		}
	}
	return true
}
