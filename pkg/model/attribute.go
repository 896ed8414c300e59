package model

import "slices"

// Attribute is a single element attribute.
type Attribute struct {
	Name  string
	Value string
}

// attributeMap keeps attributes unique by name in declaration order.
type attributeMap struct {
	names  []string
	values map[string]string
}

func (a *attributeMap) get(name string) (string, bool) {
	v, ok := a.values[name]
	return v, ok
}

// set stores value and returns the previous value, if any.
// A new name is appended at the end.
func (a *attributeMap) set(name, value string) (string, bool) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	old, existed := a.values[name]
	if !existed {
		a.names = append(a.names, name)
	}
	a.values[name] = value
	return old, existed
}

// remove deletes name and returns the removed value, if any.
func (a *attributeMap) remove(name string) (string, bool) {
	old, existed := a.values[name]
	if !existed {
		return "", false
	}
	delete(a.values, name)
	i := slices.Index(a.names, name)
	if i < 0 {
		panic("model: attribute map corrupted")
	}
	a.names = slices.Delete(a.names, i, i+1)
	return old, true
}

func (a *attributeMap) len() int {
	return len(a.names)
}

func (a *attributeMap) keys() []string {
	return slices.Clone(a.names)
}

func (a *attributeMap) list() []Attribute {
	out := make([]Attribute, len(a.names))
	for i, n := range a.names {
		out[i] = Attribute{Name: n, Value: a.values[n]}
	}
	return out
}
