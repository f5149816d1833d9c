package tokenloom

import (
	"strings"
	"testing"
)

// collector is a trivial Emitter used only so tests can assert on events
// delivered as they're produced, independent of the slice Feed/Flush return.
type collector struct {
	events []Event
}

func (c *collector) Emit(e Event) {
	c.events = append(c.events, e)
}

func textOf(events []Event) string {
	var b strings.Builder
	for _, e := range events {
		switch e.Type {
		case EventText, EventCodeFenceChunk:
			b.WriteString(e.Text)
		}
	}
	return b.String()
}

func feedChunks(t *testing.T, p *Parser, chunks ...string) []Event {
	t.Helper()
	var all []Event
	for _, c := range chunks {
		all = append(all, p.Feed(c)...)
	}
	all = append(all, p.Flush()...)
	return all
}

func newTestParser(t *testing.T, cfg Config) (*Parser, *collector) {
	t.Helper()
	c := &collector{}
	p, err := New(cfg, c)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, c
}

func TestPlainTokensNoTags(t *testing.T) {
	cfg := DefaultConfig()
	p, _ := newTestParser(t, cfg)
	events := feedChunks(t, p, "hello world")

	var texts []string
	for _, e := range events {
		if e.Type == EventText {
			texts = append(texts, e.Text)
		}
	}
	want := []string{"hello", " ", "world"}
	if len(texts) != len(want) {
		t.Fatalf("texts = %q, want %q", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("texts[%d] = %q, want %q", i, texts[i], want[i])
		}
	}
	last := events[len(events)-1]
	if last.Type != EventEnd {
		t.Errorf("last event = %v, want end", last.Type)
	}
}

func TestFragmentedTagAcrossChunks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tags = WithTags("think")
	p, _ := newTestParser(t, cfg)

	chunks := []string{"before <th", "ink mode=\"deep\">insi", "de</th", "ink> after"}
	events := feedChunks(t, p, chunks...)

	var types []EventType
	for _, e := range events {
		types = append(types, e.Type)
	}

	foundOpen, foundClose := false, false
	var openAttrs *Attrs
	for _, e := range events {
		if e.Type == EventTagOpen && e.TagName == "think" {
			foundOpen = true
			openAttrs = e.Attrs
		}
		if e.Type == EventTagClose && e.TagName == "think" {
			foundClose = true
		}
	}
	if !foundOpen || !foundClose {
		t.Fatalf("expected tag-open/tag-close for think, got types %v", types)
	}
	if v, ok := openAttrs.Get("mode"); !ok || v != "deep" {
		t.Errorf("mode attr = %q, ok=%v", v, ok)
	}

	var plain strings.Builder
	for _, e := range events {
		if e.Type == EventText {
			plain.WriteString(e.Text)
		}
	}
	if !strings.Contains(plain.String(), "before") || !strings.Contains(plain.String(), "after") {
		t.Errorf("expected surrounding text preserved, got %q", plain.String())
	}
}

func TestFragmentedFenceAcrossChunks(t *testing.T) {
	cfg := DefaultConfig()
	p, _ := newTestParser(t, cfg)

	chunks := []string{"pre\n```j", "s\nconsole.l", "og(1)\n``", "`\npost"}
	events := feedChunks(t, p, chunks...)

	var start, end bool
	var lang string
	var chunkText strings.Builder
	for _, e := range events {
		switch e.Type {
		case EventCodeFenceStart:
			start = true
			lang = e.Lang
		case EventCodeFenceEnd:
			end = true
		case EventCodeFenceChunk:
			chunkText.WriteString(e.Text)
		}
	}
	if !start || !end {
		t.Fatalf("expected fence start+end, events=%v", events)
	}
	if lang != "js" {
		t.Errorf("lang = %q, want js", lang)
	}
	if chunkText.String() != "console.log(1)\n" {
		t.Errorf("fence content = %q", chunkText.String())
	}
}

func TestUnclosedTagFlushedAsLiteralText(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tags = WithTags("think")
	p, _ := newTestParser(t, cfg)

	events := feedChunks(t, p, `before <think mode="deep">never closes`)

	var sawClose bool
	var plain strings.Builder
	for _, e := range events {
		if e.Type == EventTagClose {
			sawClose = true
		}
		if e.Type == EventText {
			plain.WriteString(e.Text)
		}
	}
	if sawClose {
		t.Fatalf("did not expect a synthesized tag-close, events=%v", events)
	}
	got := plain.String()
	if !strings.Contains(got, `<think mode="deep">`) {
		t.Errorf("expected literal reinjection of open markup, got %q", got)
	}
	// Body text emitted before Flush precedes the reinjected markup; the held
	// tail follows it. Without the markup, the text reads in input order.
	if body := strings.Replace(got, `<think mode="deep">`, "", 1); body != "before never closes" {
		t.Errorf("expected surrounding and tag body text preserved in order, got %q", body)
	}
}

func TestWordUnitCommentOperatorMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmitUnit = UnitWord
	p, _ := newTestParser(t, cfg)

	events := feedChunks(t, p, "a // b")

	found := false
	for _, e := range events {
		if e.Type == EventText && e.Text == "//" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected merged // piece among events %v", events)
	}
}

func TestIndentedCloseFence(t *testing.T) {
	cfg := DefaultConfig()
	p, _ := newTestParser(t, cfg)

	events := feedChunks(t, p, "```\ncode\n   ```\ntail")

	var chunkText strings.Builder
	var end bool
	for _, e := range events {
		if e.Type == EventCodeFenceChunk {
			chunkText.WriteString(e.Text)
		}
		if e.Type == EventCodeFenceEnd {
			end = true
		}
	}
	if !end {
		t.Fatalf("expected code-fence-end, events=%v", events)
	}
	if chunkText.String() != "code\n" {
		t.Errorf("fence content = %q, want %q", chunkText.String(), "code\n")
	}
}

func TestFeedByteAtATimeRoundTrips(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tags = WithTags("a")
	cfg.SpecMinParseLength = 1
	p, _ := newTestParser(t, cfg)

	input := `x <a id="1">yz</a> ` + "```go\nfmt.Println(1)\n```" + " w"
	var chunks []string
	for i := 0; i < len(input); i++ {
		chunks = append(chunks, string(input[i]))
	}
	events := feedChunks(t, p, chunks...)

	var out strings.Builder
	for _, e := range events {
		switch e.Type {
		case EventText, EventCodeFenceChunk:
			out.WriteString(e.Text)
		}
	}
	// The reconstructed plain content omits the recognized tag/fence markup
	// bytes themselves; just assert the surrounding literal segments and code
	// body made it through untouched and in order.
	got := out.String()
	for _, want := range []string{"x ", "yz", "fmt.Println(1)\n", " w"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q to appear in reconstructed output %q", want, got)
		}
	}
}

func TestSelfClosingTag(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tags = WithTags("br")
	p, _ := newTestParser(t, cfg)

	events := feedChunks(t, p, `before <br/> after`)

	var openIdx, closeIdx int = -1, -1
	for i, e := range events {
		if e.Type == EventTagOpen {
			openIdx = i
		}
		if e.Type == EventTagClose {
			closeIdx = i
		}
	}
	if openIdx < 0 || closeIdx < 0 || closeIdx != openIdx+1 {
		t.Fatalf("expected adjacent tag-open/tag-close, events=%v", events)
	}
}

func TestUnrecognizedTagNameIsLiteralText(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tags = WithTags("think")
	p, _ := newTestParser(t, cfg)

	events := feedChunks(t, p, "a <other>b</other> c")

	for _, e := range events {
		if e.Type == EventTagOpen || e.Type == EventTagClose {
			t.Fatalf("did not expect tag events for unrecognized name, got %v", e)
		}
	}
	if !strings.Contains(textOf(events), "<other>") {
		t.Errorf("expected literal markup preserved, events=%v", events)
	}
}

func TestTagBodyContainingLongerSimilarNameDoesNotStall(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tags = WithTags("think")
	p, _ := newTestParser(t, cfg)

	// The tag body text contains "</thinking>", a longer, different tag name
	// that merely starts with the same "</think" prefix as the real close
	// marker. This must not stall forward progress waiting on a close that
	// can never match.
	events := feedChunks(t, p, `<think>body has </thinking> inside</think> tail`)

	var foundOpen, foundClose bool
	for _, e := range events {
		if e.Type == EventTagOpen && e.TagName == "think" {
			foundOpen = true
		}
		if e.Type == EventTagClose && e.TagName == "think" {
			foundClose = true
		}
	}
	if !foundOpen || !foundClose {
		t.Fatalf("expected tag-open/tag-close for think, got %v", events)
	}

	got := textOf(events)
	if !strings.Contains(got, "</thinking>") {
		t.Errorf("expected the embedded longer tag name preserved as literal text, got %q", got)
	}
	if !strings.Contains(got, "tail") {
		t.Errorf("expected trailing text after close preserved, got %q", got)
	}
}

func TestWordModeFlushDrainsTrailingWord(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmitUnit = UnitWord
	p, _ := newTestParser(t, cfg)

	events := feedChunks(t, p, "plain text that ends mid word done")

	got := textOf(events)
	if !strings.HasSuffix(got, "done") {
		t.Errorf("expected trailing word-mode piece preserved through Flush, got %q", got)
	}
	if got != "plain text that ends mid word done" {
		t.Errorf("reconstructed text = %q, want original input reproduced exactly", got)
	}
}

func TestDisposeStopsFurtherOutput(t *testing.T) {
	cfg := DefaultConfig()
	p, _ := newTestParser(t, cfg)
	p.Feed("hello")
	p.Dispose()
	if events := p.Feed("world"); events != nil {
		t.Errorf("expected no events after Dispose, got %v", events)
	}
}
