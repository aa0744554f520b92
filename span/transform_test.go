package span

import (
	"strings"
	"testing"
)

// TestBorderCriticalWrapsOnlyWhenPredicateTrue: a transformer borders the
// rendered line only for records the predicate flags, leaving others
// untouched.
func TestBorderCriticalWrapsOnlyWhenPredicateTrue(t *testing.T) {
	transform := BorderCritical(BorderSingle, nil, 0, func(rec any) bool {
		return rec.(bool)
	})

	critical := NewTree()
	critical.PlainText(critical.Root, "DOWN")
	transform(critical, critical.Root, true)
	out := string(Render(critical, critical.Root, CapNone, nil))
	if !strings.Contains(out, "┌") {
		t.Fatalf("expected critical record to be bordered, got %q", out)
	}

	ok := NewTree()
	ok.PlainText(ok.Root, "ok")
	transform(ok, ok.Root, false)
	out = string(Render(ok, ok.Root, CapNone, nil))
	if strings.Contains(out, "┌") {
		t.Fatalf("expected non-critical record to stay unbordered, got %q", out)
	}
}

func TestSurroundedPrefixAndSuffix(t *testing.T) {
	tree := NewTree()
	s := tree.Surrounded(tree.Root)
	prefix := tree.new(KindPlainText)
	tree.at(prefix).text = ">> "
	tree.SetPrefix(s, prefix)
	tree.PlainText(s, "body")
	suffix := tree.new(KindPlainText)
	tree.at(suffix).text = " <<"
	tree.SetSuffix(s, suffix)

	out := string(Render(tree, tree.Root, CapNone, nil))
	if out != ">> body <<" {
		t.Fatalf("got %q, want %q", out, ">> body <<")
	}
}
