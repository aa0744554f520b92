// Package span implements the composable rendering tree behind chirpy's
// console formatters: a mutable tree of leaf, semantic and container nodes,
// walked by a color-stack-aware renderer (see render.go).
//
// Nodes are arena-allocated and referenced by integer Handle rather than by
// pointer, per the re-architecture guidance for a mutable tree with upward
// traversal: a pointer tree in Go works too, but handles keep find_first /
// replace_with / wrap as simple index operations and make the arena trivially
// poolable between renders.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package span

// Kind discriminates node payloads.
type Kind int

const (
	KindPlainText Kind = iota
	KindWhitespace
	KindNewLine
	KindEmpty
	KindSequence
	KindStyled
	KindBordered
	KindAligned
	KindSurrounded
)

// Handle is an index into a Tree's node arena.
type Handle int

const noHandle Handle = -1

// Style carries the optional style attributes an AnsiStyled span pushes
// onto the color stack while its subtree renders.
type Style struct {
	FG            *Color
	BG            *Color
	Bold          bool
	Italic        bool
	Underline     bool
	Dim           bool
	Strikethrough bool
}

// Color is a 24-bit truecolor value; the renderer down-samples it to 16 or
// 256 colors depending on the capability it is given.
type Color struct {
	R, G, B uint8
}

// BorderStyle selects the glyph set Bordered draws with.
type BorderStyle int

const (
	BorderSingle BorderStyle = iota
	BorderDouble
	BorderRounded
	BorderHeavy
	BorderASCII
)

// Align selects how Aligned pads or truncates its rendered child.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

type node struct {
	kind Kind
	text string // PlainText payload

	children []Handle
	parent   Handle

	style          Style // KindStyled
	borderStyle    BorderStyle
	borderColor    *Color
	padding        int // KindBordered
	width          int
	align          Align // KindAligned
	separator      string
	prefix, suffix Handle // KindSurrounded: noHandle when absent
}

// Tree is the mutable span forest rooted at Root.
type Tree struct {
	nodes []node
	Root  Handle
}

// NewTree creates an empty tree whose root is a separator-less Sequence, so
// top-level children render in order without needing their own wrapper.
func NewTree() *Tree {
	t := &Tree{}
	t.Root = t.new(KindSequence)
	return t
}

func (t *Tree) new(k Kind) Handle {
	t.nodes = append(t.nodes, node{kind: k, parent: noHandle, prefix: noHandle, suffix: noHandle})
	return Handle(len(t.nodes) - 1)
}

func (t *Tree) at(h Handle) *node { return &t.nodes[h] }

// Kind returns the node's kind.
func (t *Tree) Kind(h Handle) Kind { return t.at(h).kind }

// Text returns a PlainText/Whitespace node's payload.
func (t *Tree) Text(h Handle) string { return t.at(h).text }

// Children returns a container node's children in order.
func (t *Tree) Children(h Handle) []Handle { return t.at(h).children }

// Parent returns h's parent, or noHandle for the root.
func (t *Tree) Parent(h Handle) Handle { return t.at(h).parent }

func (t *Tree) appendChild(parent, child Handle) {
	t.at(parent).children = append(t.at(parent).children, child)
	t.at(child).parent = parent
}

// PlainText adds a leaf text span as a child of parent.
func (t *Tree) PlainText(parent Handle, s string) Handle {
	h := t.new(KindPlainText)
	t.at(h).text = s
	t.appendChild(parent, h)
	return h
}

// Whitespace adds n spaces as a child of parent.
func (t *Tree) Whitespace(parent Handle, n int) Handle {
	h := t.new(KindWhitespace)
	t.at(h).text = spaces(n)
	t.appendChild(parent, h)
	return h
}

// NewLine adds a line-break leaf as a child of parent.
func (t *Tree) NewLine(parent Handle) Handle {
	h := t.new(KindNewLine)
	t.appendChild(parent, h)
	return h
}

// Sequence adds a SpanSequence container, optionally separating children's
// rendered output with sep.
func (t *Tree) Sequence(parent Handle, sep string) Handle {
	h := t.new(KindSequence)
	t.at(h).separator = sep
	t.appendChild(parent, h)
	return h
}

// Styled adds an AnsiStyled container applying style to its subtree.
func (t *Tree) Styled(parent Handle, style Style) Handle {
	h := t.new(KindStyled)
	t.at(h).style = style
	t.appendChild(parent, h)
	return h
}

// Bordered adds a Bordered container drawn with the given style/padding.
func (t *Tree) Bordered(parent Handle, style BorderStyle, color *Color, padding int) Handle {
	h := t.new(KindBordered)
	n := t.at(h)
	n.borderStyle, n.borderColor, n.padding = style, color, padding
	t.appendChild(parent, h)
	return h
}

// Aligned adds an Aligned container padding/truncating its child to width.
func (t *Tree) Aligned(parent Handle, width int, align Align) Handle {
	h := t.new(KindAligned)
	n := t.at(h)
	n.width, n.align = width, align
	t.appendChild(parent, h)
	return h
}

// Surrounded adds a Surrounded container whose rendered output is the
// optional prefix subtree, then its children, then the optional suffix
// subtree. Pass noHandle's zero value (by never calling the matching
// setter) to omit either side; use SetPrefix/SetSuffix to attach one.
func (t *Tree) Surrounded(parent Handle) Handle {
	h := t.new(KindSurrounded)
	t.appendChild(parent, h)
	return h
}

// SetPrefix attaches prefix as h's Surrounded prefix subtree.
func (t *Tree) SetPrefix(h, prefix Handle) {
	t.at(h).prefix = prefix
	t.at(prefix).parent = h
}

// SetSuffix attaches suffix as h's Surrounded suffix subtree.
func (t *Tree) SetSuffix(h, suffix Handle) {
	t.at(h).suffix = suffix
	t.at(suffix).parent = h
}

// AddChild attaches an already-built subtree root as a child of parent,
// used by semantic spans whose Build() produces a sub-tree.
func (t *Tree) AddChild(parent, child Handle) {
	t.appendChild(parent, child)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// FindFirst returns the first node of kind k in a depth-first walk from
// root, or noHandle (ok=false) if none exists.
func (t *Tree) FindFirst(root Handle, k Kind) (Handle, bool) {
	var found Handle = noHandle
	t.walk(root, func(h Handle) bool {
		if t.Kind(h) == k {
			found = h
			return false
		}
		return true
	})
	return found, found != noHandle
}

// FindAll returns every node of kind k in depth-first order.
func (t *Tree) FindAll(root Handle, k Kind) []Handle {
	var out []Handle
	t.walk(root, func(h Handle) bool {
		if t.Kind(h) == k {
			out = append(out, h)
		}
		return true
	})
	return out
}

// walk performs a depth-first traversal, calling fn for each node; fn
// returns false to stop early.
func (t *Tree) walk(root Handle, fn func(Handle) bool) {
	if !fn(root) {
		return
	}
	n := t.at(root)
	for _, s := range []Handle{n.prefix, n.suffix} {
		if s != noHandle {
			t.walk(s, fn)
		}
	}
	for _, c := range n.children {
		t.walk(c, fn)
	}
}

// Remove detaches h from its parent's children list. h keeps its own
// children, but is no longer reachable from the root.
func (t *Tree) Remove(h Handle) {
	p := t.at(h).parent
	if p == noHandle {
		return
	}
	siblings := t.at(p).children
	for i, c := range siblings {
		if c == h {
			t.at(p).children = append(siblings[:i], siblings[i+1:]...)
			return
		}
	}
}

// ReplaceWith swaps h for replacement in h's parent's children list.
func (t *Tree) ReplaceWith(h, replacement Handle) {
	p := t.at(h).parent
	if p == noHandle {
		t.Root = replacement
		t.at(replacement).parent = noHandle
		return
	}
	siblings := t.at(p).children
	for i, c := range siblings {
		if c == h {
			siblings[i] = replacement
			t.at(replacement).parent = p
			return
		}
	}
}

// Wrap replaces h with a new node built by fn(h), splicing h in as fn's
// sole child — the mechanism transformers use to e.g. border a subtree.
func (t *Tree) Wrap(h Handle, fn func(t *Tree, child Handle) Handle) {
	parent := t.at(h).parent
	wrapper := fn(t, h)
	if parent == noHandle {
		t.Root = wrapper
		t.at(wrapper).parent = noHandle
		return
	}
	siblings := t.at(parent).children
	for i, c := range siblings {
		if c == h {
			siblings[i] = wrapper
			t.at(wrapper).parent = parent
			return
		}
	}
}
