package span

// Transformer mutates a built span tree in place before rendering, given
// the record it was built from. Transformers run in registration order and
// must not block on I/O.
type Transformer func(t *Tree, root Handle, rec any)

// BorderCritical returns a Transformer that wraps the whole tree in a
// Bordered span whenever shouldBorder(rec) is true, typically used to box
// records at or above a severity threshold.
func BorderCritical(style BorderStyle, color *Color, padding int, shouldBorder func(rec any) bool) Transformer {
	return func(t *Tree, root Handle, rec any) {
		if !shouldBorder(rec) {
			return
		}
		t.Wrap(root, func(t *Tree, child Handle) Handle {
			h := t.new(KindBordered)
			n := t.at(h)
			n.borderStyle, n.borderColor, n.padding = style, color, padding
			t.AddChild(h, child)
			return h
		})
	}
}
