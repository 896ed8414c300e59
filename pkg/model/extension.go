package model

// Extension contributes elements to the extension point named by Point.
type Extension struct {
	identifiableBase

	point    string
	elements []*Element
}

func newExtension(m *Model, a *arena, point string) *Extension {
	x := &Extension{point: point}
	x.register(m, a, KindExtension, x)
	return x
}

// Point returns the id of the extension point this extension contributes to.
func (x *Extension) Point() string {
	return x.point
}

// SetPoint changes the target extension point.
func (x *Extension) SetPoint(point string) error {
	return x.setString(PropPoint, &x.point, point)
}

// Elements returns the top-level elements of the extension.
func (x *Extension) Elements() []*Element {
	return append([]*Element(nil), x.elements...)
}

// AddElement appends an element.
func (x *Extension) AddElement(e *Element) error {
	return insertChild(x, &x.elements, -1, e)
}

// AddElementAt inserts an element at index.
func (x *Extension) AddElementAt(index int, e *Element) error {
	return insertChild(x, &x.elements, index, e)
}

// RemoveElement detaches an element.
func (x *Extension) RemoveElement(e *Element) error {
	return removeChild(x, &x.elements, e)
}

// SwapElements exchanges two elements.
func (x *Extension) SwapElements(a, b *Element) error {
	return swapChildren(x, &x.elements, a, b)
}

// Children returns the elements as nodes.
func (x *Extension) Children() []Node {
	return nodes(x.elements)
}

// IndexOf returns the position of child, or -1.
func (x *Extension) IndexOf(child Node) int {
	return indexOfElement(x.elements, child)
}

// InsertChild inserts an *Element child.
func (x *Extension) InsertChild(index int, child Node) error {
	e, ok := child.(*Element)
	if !ok {
		return ErrInvalidChild
	}
	return x.AddElementAt(index, e)
}

// RemoveChild detaches an *Element child.
func (x *Extension) RemoveChild(child Node) error {
	e, ok := child.(*Element)
	if !ok {
		return ErrNotFound
	}
	return x.RemoveElement(e)
}

// SwapChildren exchanges two elements.
func (x *Extension) SwapChildren(a, b Node) error {
	return swapKind[*Element](x, &x.elements, a, b)
}

// RestoreProperty re-applies oldValue for key.
func (x *Extension) RestoreProperty(key string, oldValue, newValue any) error {
	if key == PropPoint {
		s, err := stringValue(key, oldValue)
		if err != nil {
			return err
		}
		return x.SetPoint(s)
	}
	if handled, err := x.restore(key, oldValue); handled {
		return err
	}
	return unknownProperty(x, key)
}
