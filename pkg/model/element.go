package model

// Element is a generic, schema-free node inside an extension (or an unknown
// top-level element of the root). Its Name is the tag name.
type Element struct {
	nodeBase

	attrs    attributeMap
	text     string
	children []*Element
}

func newElement(m *Model, a *arena, tag string) *Element {
	e := &Element{}
	e.name = tag
	e.register(m, a, KindElement, e)
	return e
}

// Attribute returns the value of the attribute with exactly this name.
func (e *Element) Attribute(name string) (string, bool) {
	return e.attrs.get(name)
}

// AttributeCount returns the number of attributes.
func (e *Element) AttributeCount() int {
	return e.attrs.len()
}

// AttributeNames returns the attribute names in declaration order.
func (e *Element) AttributeNames() []string {
	return e.attrs.keys()
}

// Attributes returns the attributes in declaration order.
func (e *Element) Attributes() []Attribute {
	return e.attrs.list()
}

// SetAttribute sets the attribute to *value. A nil value removes the
// attribute.
func (e *Element) SetAttribute(name string, value *string) error {
	key := AttributeProperty(name)
	return e.model.edit(e.arena, key, func() (*change, error) {
		if value == nil {
			old, existed := e.attrs.remove(name)
			if !existed {
				return nil, nil
			}
			return propertyChange(e, key, old, nil), nil
		}

		old, existed := e.attrs.get(name)
		if existed && old == *value {
			return nil, nil
		}
		e.attrs.set(name, *value)
		if !existed {
			return propertyChange(e, key, nil, *value), nil
		}
		return propertyChange(e, key, old, *value), nil
	})
}

// SetAttributeValue sets the attribute to value.
func (e *Element) SetAttributeValue(name, value string) error {
	return e.SetAttribute(name, &value)
}

// RemoveAttribute removes the attribute.
func (e *Element) RemoveAttribute(name string) error {
	return e.SetAttribute(name, nil)
}

// Text returns the trimmed text content, empty when absent.
func (e *Element) Text() string {
	return e.text
}

// SetText replaces the text content.
func (e *Element) SetText(text string) error {
	return e.setString(PropText, &e.text, text)
}

// Elements returns the child elements.
func (e *Element) Elements() []*Element {
	return append([]*Element(nil), e.children...)
}

// AddElement appends a child element.
func (e *Element) AddElement(c *Element) error {
	return insertChild(e, &e.children, -1, c)
}

// AddElementAt inserts a child element at index.
func (e *Element) AddElementAt(index int, c *Element) error {
	return insertChild(e, &e.children, index, c)
}

// RemoveElement detaches a child element.
func (e *Element) RemoveElement(c *Element) error {
	return removeChild(e, &e.children, c)
}

// SwapElements exchanges two child elements.
func (e *Element) SwapElements(a, b *Element) error {
	return swapChildren(e, &e.children, a, b)
}

// Children returns the child elements as nodes.
func (e *Element) Children() []Node {
	return nodes(e.children)
}

// IndexOf returns the position of child, or -1.
func (e *Element) IndexOf(child Node) int {
	return indexOfElement(e.children, child)
}

// InsertChild inserts an *Element child.
func (e *Element) InsertChild(index int, child Node) error {
	c, ok := child.(*Element)
	if !ok {
		return ErrInvalidChild
	}
	return e.AddElementAt(index, c)
}

// RemoveChild detaches an *Element child.
func (e *Element) RemoveChild(child Node) error {
	c, ok := child.(*Element)
	if !ok {
		return ErrNotFound
	}
	return e.RemoveElement(c)
}

// SwapChildren exchanges two child elements.
func (e *Element) SwapChildren(a, b Node) error {
	return swapKind[*Element](e, &e.children, a, b)
}

// RestoreProperty re-applies oldValue for key.
func (e *Element) RestoreProperty(key string, oldValue, newValue any) error {
	if name, ok := AttributeName(key); ok {
		v, err := optionalString(key, oldValue)
		if err != nil {
			return err
		}
		return e.SetAttribute(name, v)
	}

	switch key {
	case PropText:
		s, err := stringValue(key, oldValue)
		if err != nil {
			return err
		}
		return e.SetText(s)
	}

	if handled, err := e.restore(key, oldValue); handled {
		return err
	}
	return unknownProperty(e, key)
}

func indexOfElement(list []*Element, child Node) int {
	c, ok := child.(*Element)
	if !ok {
		return -1
	}
	for i, e := range list {
		if e == c {
			return i
		}
	}
	return -1
}
