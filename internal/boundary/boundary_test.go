package boundary

import "testing"

func TestNextSpecialIndex(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"hello", -1},
		{"hello <b>", 6},
		{"```go\n", 0},
		{"hi\n```go\n", 3},
		{"hi\n   ```go\n", 3},
		{"hi\n    ```go\n", -1}, // 4 spaces: no longer a fence candidate
		{"a ~~~ b", -1},        // not at line start
	}
	for _, c := range cases {
		if got := NextSpecialIndex(c.in); got != c.want {
			t.Errorf("NextSpecialIndex(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestMatchTagOpen(t *testing.T) {
	m, closeFound, ok := MatchTagOpen(`<think mode="deep">rest`)
	if !ok || !closeFound {
		t.Fatalf("expected match, got ok=%v closeFound=%v", ok, closeFound)
	}
	if m.Name != "think" {
		t.Errorf("name = %q, want think", m.Name)
	}
	if m.AttrSource != ` mode="deep"` {
		t.Errorf("attrSource = %q", m.AttrSource)
	}

	_, closeFound, ok = MatchTagOpen(`<think mode="deep"`)
	if ok || closeFound {
		t.Fatalf("expected no close found yet, got ok=%v closeFound=%v", ok, closeFound)
	}

	_, _, ok = MatchTagOpen(`hello`)
	if ok {
		t.Fatalf("expected no match for non-tag input")
	}
}

func TestIsSelfClosing(t *testing.T) {
	attrs, self := IsSelfClosing(` foo="bar"/`)
	if !self {
		t.Fatal("expected self-closing")
	}
	if attrs != ` foo="bar"` {
		t.Errorf("trimmed attrs = %q", attrs)
	}

	_, self = IsSelfClosing(` foo="bar"`)
	if self {
		t.Fatal("expected not self-closing")
	}
}

func TestParseAttrs(t *testing.T) {
	pairs := ParseAttrs(` name="think" mode='deep' broken=nope also="second"`)
	want := []KV{{"name", "think"}, {"mode", "deep"}, {"also", "second"}}
	if len(pairs) != len(want) {
		t.Fatalf("ParseAttrs = %+v, want %+v", pairs, want)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pair %d = %+v, want %+v", i, pairs[i], want[i])
		}
	}
}

func TestFindFenceClose(t *testing.T) {
	m, ok := FindFenceClose("code here\n```\ntail", '`', 3)
	if !ok {
		t.Fatal("expected fence close match")
	}
	if m.Start != len("code here\n") {
		t.Errorf("Start = %d, want %d", m.Start, len("code here\n"))
	}
	if m.End != len("code here\n```\n") {
		t.Errorf("End = %d, want %d", m.End, len("code here\n```\n"))
	}
}

func TestFindFenceCloseLengthMismatch(t *testing.T) {
	// A ~~~~ open is not closed by ~~~.
	_, ok := FindFenceClose("content\n~~~\n", '~', 4)
	if ok {
		t.Fatal("expected no match: close run shorter than open run")
	}
}

func TestFindFenceCloseIndented(t *testing.T) {
	m, ok := FindFenceClose("code\n   ```\ntail", '`', 3)
	if !ok {
		t.Fatal("expected indented fence close to match")
	}
	if m.Start != len("code\n") {
		t.Errorf("Start = %d, want %d", m.Start, len("code\n"))
	}
	if m.End != len("code\n   ```\n") {
		t.Errorf("End = %d, want %d", m.End, len("code\n   ```\n"))
	}
}

func TestFindFenceCloseRejectsTrailingContent(t *testing.T) {
	_, ok := FindFenceClose("code\n```not-a-close\n", '`', 3)
	if ok {
		t.Fatal("expected no match: trailing non-whitespace after delimiter")
	}
}

func TestTagCloseStillForming(t *testing.T) {
	cases := []struct {
		buf         string
		afterPrefix int
		wantForming bool
		desc        string
	}{
		{"</think", 7, true, "nothing buffered yet after the name"},
		{"</think   ", 7, true, "only whitespace buffered so far"},
		{"</thinking>", 7, false, "a longer, different tag name"},
		{"</think>rest", 7, false, "a non-whitespace byte would follow a completed match, unreachable via closeRe but still not 'forming'"},
	}
	for _, c := range cases {
		if got := TagCloseStillForming(c.buf, c.afterPrefix); got != c.wantForming {
			t.Errorf("%s: TagCloseStillForming(%q, %d) = %v, want %v", c.desc, c.buf, c.afterPrefix, got, c.wantForming)
		}
	}
}
