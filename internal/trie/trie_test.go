package trie

import "testing"

func TestInsertAndGet(t *testing.T) {
	tr := New[int]()
	tr.Insert("广东省", 1)
	tr.Insert("广东", 2)
	tr.Insert("广州市", 3)

	cases := []struct {
		name  string
		want  int
		found bool
	}{
		{"广东省", 1, true},
		{"广东", 2, true},
		{"广州市", 3, true},
		{"广", 0, false},
		{"北京", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := tr.Get(tc.name)
		if ok != tc.found || got != tc.want {
			t.Errorf("Get(%q) = (%d, %v), want (%d, %v)", tc.name, got, ok, tc.want, tc.found)
		}
	}

	if tr.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tr.Len())
	}
}

func TestInsertOverwrites(t *testing.T) {
	tr := New[string]()
	tr.Insert("南山", "old")
	tr.Insert("南山", "new")

	got, ok := tr.Get("南山")
	if !ok || got != "new" {
		t.Errorf("Get(南山) = (%q, %v), want (new, true)", got, ok)
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d after overwrite, want 1", tr.Len())
	}
}

func TestFindLongestPrefix(t *testing.T) {
	tr := New[string]()
	tr.Insert("广东", "广东省")
	tr.Insert("广东省", "广东省")
	tr.Insert("深圳", "深圳市")

	matched, value, n, ok := tr.FindLongestPrefix("广东省深圳市南山区")
	if !ok {
		t.Fatal("expected a match")
	}
	// Must keep extending past the shorter terminal "广东".
	if matched != "广东省" || value != "广东省" || n != len("广东省") {
		t.Errorf("got (%q, %q, %d), want (广东省, 广东省, %d)", matched, value, n, len("广东省"))
	}
}

func TestFindLongestPrefixPartialWalk(t *testing.T) {
	tr := New[int]()
	tr.Insert("朝阳区", 1)

	// The walk enters the tree but never reaches a terminal node.
	if _, _, _, ok := tr.FindLongestPrefix("朝阴路"); ok {
		t.Error("expected no match for a non-terminal walk")
	}
	if _, _, _, ok := tr.FindLongestPrefix(""); ok {
		t.Error("expected no match for empty text")
	}
	if _, _, _, ok := tr.FindLongestPrefix("science park"); ok {
		t.Error("expected no match for unrelated text")
	}
}

func TestFindLongestPrefixAnchored(t *testing.T) {
	tr := New[int]()
	tr.Insert("南山区", 1)

	// Matching is anchored at position 0 of the text.
	if _, _, _, ok := tr.FindLongestPrefix("深圳市南山区"); ok {
		t.Error("match must start at the beginning of the text")
	}
}

func TestByteLengthIsRuneBoundary(t *testing.T) {
	tr := New[int]()
	tr.Insert("北京市", 7)

	text := "北京市朝阳区"
	_, _, n, ok := tr.FindLongestPrefix(text)
	if !ok {
		t.Fatal("expected a match")
	}
	if n != len("北京市") {
		t.Fatalf("byteLen = %d, want %d", n, len("北京市"))
	}
	if text[:n] != "北京市" || text[n:] != "朝阳区" {
		t.Errorf("slicing at byteLen split a rune: %q / %q", text[:n], text[n:])
	}
}
