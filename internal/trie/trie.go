// Package trie implements a rune-keyed prefix tree used to match
// administrative names against the head of an address string.
package trie

import "unicode/utf8"

type node[T any] struct {
	children map[rune]*node[T]
	value    T
	terminal bool
}

// Trie maps registered names to values and answers longest-prefix queries
// anchored at the start of a text. The zero value is not usable; call New.
type Trie[T any] struct {
	root *node[T]
	size int
}

// New returns an empty trie.
func New[T any]() *Trie[T] {
	return &Trie[T]{root: &node[T]{}}
}

// Insert registers name with its value. Inserting the same name again
// overwrites the stored value.
func (t *Trie[T]) Insert(name string, value T) {
	n := t.root
	for _, r := range name {
		if n.children == nil {
			n.children = make(map[rune]*node[T])
		}
		child, ok := n.children[r]
		if !ok {
			child = &node[T]{}
			n.children[r] = child
		}
		n = child
	}
	if !n.terminal {
		t.size++
	}
	n.terminal = true
	n.value = value
}

// Get returns the value stored under exactly name.
func (t *Trie[T]) Get(name string) (T, bool) {
	var zero T
	n := t.root
	for _, r := range name {
		child, ok := n.children[r]
		if !ok {
			return zero, false
		}
		n = child
	}
	if !n.terminal {
		return zero, false
	}
	return n.value, true
}

// Contains reports whether name was inserted.
func (t *Trie[T]) Contains(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Len returns the number of distinct names inserted.
func (t *Trie[T]) Len() int { return t.size }

// FindLongestPrefix returns the longest registered name that prefixes text.
// The walk does not stop at the first terminal node: it keeps extending while
// the tree has a child for the next rune, so with both "广东" and "广东省"
// registered, "广东省深圳市" matches "广东省". byteLen is the length of the
// match in bytes, always a rune boundary of text.
func (t *Trie[T]) FindLongestPrefix(text string) (matched string, value T, byteLen int, ok bool) {
	n := t.root
	pos := 0
	for _, r := range text {
		child, found := n.children[r]
		if !found {
			break
		}
		n = child
		pos += utf8.RuneLen(r)
		if n.terminal {
			matched, value, byteLen, ok = text[:pos], n.value, pos, true
		}
	}
	return
}
