package model

import (
	"fmt"
	"slices"
)

// Container is a node that owns ordered children.
//
// Index arguments and results refer to the list that holds the child's kind.
// A Root keeps separate lists for libraries, imports, extension points,
// extensions and unknown elements; Extension and Element have a single list.
type Container interface {
	Node

	// Children returns all children in serialization order.
	Children() []Node

	// IndexOf returns the position of child in its list, or -1.
	IndexOf(child Node) int

	// InsertChild inserts child at index; -1 appends.
	InsertChild(index int, child Node) error

	// RemoveChild detaches child.
	RemoveChild(child Node) error

	// SwapChildren exchanges the positions of two children of the same list.
	SwapChildren(a, b Node) error
}

// ElementContainer is implemented by the nodes that own extension elements.
type ElementContainer interface {
	Container
	Elements() []*Element
	AddElement(e *Element) error
	AddElementAt(index int, e *Element) error
	RemoveElement(e *Element) error
	SwapElements(a, b *Element) error
}

var (
	_ Container        = (*Root)(nil)
	_ ElementContainer = (*Extension)(nil)
	_ ElementContainer = (*Element)(nil)
)

type member interface {
	comparable
	Node
}

// checkAttach panics when child cannot legally be inserted into container.
func checkAttach(container, child Node) {
	cb, b := container.base(), child.base()
	if b.model != cb.model || b.arena != cb.arena {
		panic(fmt.Sprintf("model: %s from another model or generation inserted into %s", child.Kind(), container.Kind()))
	}
	if b.parent != NoHandle {
		panic(fmt.Sprintf("model: %s is already attached", child.Kind()))
	}
	if cb.model.arena != cb.arena {
		panic(fmt.Sprintf("model: %s belongs to a discarded tree", container.Kind()))
	}
	for n := container; n != nil; n = n.Parent() {
		if n == child {
			panic(fmt.Sprintf("model: inserting %s would create a cycle", child.Kind()))
		}
	}
}

func insertChild[T member](container Node, list *[]T, index int, child T) error {
	checkAttach(container, child)

	m := container.Model()
	return m.edit(container.base().arena, "insert "+child.Kind().String(), func() (*change, error) {
		if index == -1 {
			index = len(*list)
		}
		if index < 0 || index > len(*list) {
			return nil, fmt.Errorf("insert at %d of %d: %w", index, len(*list), ErrNotFound)
		}
		*list = slices.Insert(*list, index, child)
		child.base().parent = container.Handle()
		setInModel(child, container.InModel())
		return &change{event: ChangeEvent{
			Kind:      Insert,
			Subject:   child,
			Container: container,
			Index:     index,
		}}, nil
	})
}

func removeChild[T member](container Node, list *[]T, child T) error {
	m := container.Model()
	return m.edit(container.base().arena, "remove "+child.Kind().String(), func() (*change, error) {
		i := slices.Index(*list, child)
		if i < 0 {
			return nil, ErrNotFound
		}
		*list = slices.Delete(*list, i, i+1)
		setInModel(child, false)
		return &change{
			event: ChangeEvent{
				Kind:      Remove,
				Subject:   child,
				Container: container,
				Index:     i,
			},
			after: func() { child.base().parent = NoHandle },
		}, nil
	})
}

func swapChildren[T member](container Node, list *[]T, a, b T) error {
	m := container.Model()
	return m.edit(container.base().arena, "swap "+a.Kind().String(), func() (*change, error) {
		ia := slices.Index(*list, a)
		ib := slices.Index(*list, b)
		if ia < 0 || ib < 0 {
			return nil, ErrNotFound
		}
		if ia == ib {
			return nil, nil
		}
		(*list)[ia], (*list)[ib] = (*list)[ib], (*list)[ia]
		return &change{event: ChangeEvent{
			Kind:      Reorder,
			Subject:   a,
			Container: container,
			Index:     ib,
			Other:     b,
		}}, nil
	})
}

// swapKind is the Node-typed form of swapChildren used by SwapChildren.
func swapKind[T member](container Node, list *[]T, a, b Node) error {
	ta, okA := a.(T)
	tb, okB := b.(T)
	if !okA || !okB {
		return ErrNotFound
	}
	return swapChildren(container, list, ta, tb)
}

func nodes[T Node](list []T) []Node {
	out := make([]Node, len(list))
	for i, n := range list {
		out[i] = n
	}
	return out
}

// setInModel sets the in-model flag on n and its whole subtree.
func setInModel(n Node, v bool) {
	Walk(n, func(c Node) bool {
		c.base().inModel = v
		return true
	})
}

// Walk visits n and its descendants depth-first in serialization order.
// Returning false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	if c, ok := n.(Container); ok {
		for _, child := range c.Children() {
			Walk(child, fn)
		}
	}
}
