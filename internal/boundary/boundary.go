// Package boundary implements the low-level search helpers the text, tag, and
// fence handlers share: locating the next candidate special sequence, tag
// open/close recognition, fence open/close recognition, and quoted-attribute
// extraction.
//
// Go's regexp package (RE2) has no backreferences and no lookahead
// assertions, so the fence-close rule (which needs "delimiter of exactly the
// open length, followed only by whitespace to end of line") and attribute
// parsing (which needs "whichever quote character opened the value") are
// implemented as manual scans rather than direct transliterations of the
// spec's regex text — the same style charmbracelet/glow's flow package uses
// for its own fence boundary detection (calculateFenceState,
// findCodeBlockBoundary) instead of reaching for a regex it can't express.
package boundary

import (
	"regexp"
	"strings"
)

// TagNamePattern is the grammar a tag name must match.
const TagNamePattern = `[A-Za-z][A-Za-z0-9_-]*`

var tagNameRe = regexp.MustCompile(`^` + TagNamePattern)

// tagOpenRe captures the name and the raw attribute section of a tag open
// sequence once it is known to be fully buffered (terminated by '>').
var tagOpenRe = regexp.MustCompile(`^<(` + TagNamePattern + `)([^>]*)>`)

var attrKeyByteClass = [256]bool{}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		attrKeyByteClass[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		attrKeyByteClass[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		attrKeyByteClass[c] = true
	}
	attrKeyByteClass['_'] = true
}

// IsWordByte reports whether b is an ASCII word character ([0-9A-Za-z_]),
// matching the \w class used by the attribute regex in spec §6.3.
func IsWordByte(b byte) bool {
	return attrKeyByteClass[b]
}

// NextSpecialIndex returns the earliest index in buf that could begin a tag
// open (a '<') or a fence open (a run of backticks/tildes at column 0, or
// right after a '\n', optionally preceded by up to 3 spaces), or -1 if there
// is none. It never looks past the input it is given — callers decide
// whether more data is needed before committing.
func NextSpecialIndex(buf string) int {
	ltIdx := strings.IndexByte(buf, '<')
	fenceIdx := nextFenceCandidateIndex(buf)
	switch {
	case ltIdx < 0:
		return fenceIdx
	case fenceIdx < 0:
		return ltIdx
	case ltIdx < fenceIdx:
		return ltIdx
	default:
		return fenceIdx
	}
}

// nextFenceCandidateIndex finds the earliest position of a backtick/tilde run
// that starts a line (column 0, or immediately after a '\n'), allowing up to
// 3 leading spaces of indentation. It returns the index of the first
// character of that candidate (a space, backtick, or tilde), not the index of
// the run's first backtick/tilde, so the handler can still see the
// indentation when it re-inspects the candidate.
func nextFenceCandidateIndex(buf string) int {
	n := len(buf)
	for i := 0; i < n; i++ {
		if i != 0 && buf[i-1] != '\n' {
			continue
		}
		j := i
		spaces := 0
		for j < n && buf[j] == ' ' && spaces < 3 {
			j++
			spaces++
		}
		if j < n && (buf[j] == '`' || buf[j] == '~') {
			return i
		}
	}
	return -1
}

// FenceRunLength returns the run length of consecutive identical fence
// characters starting at buf[pos], and the character itself. pos must
// already point at a backtick or tilde.
func FenceRunLength(buf string, pos int) (char byte, length int) {
	if pos >= len(buf) {
		return 0, 0
	}
	char = buf[pos]
	if char != '`' && char != '~' {
		return 0, 0
	}
	length = 0
	for pos+length < len(buf) && buf[pos+length] == char {
		length++
	}
	return char, length
}

// LeadingFenceIndent reports how many of the up-to-3 leading spaces precede
// the fence run starting logically at lineStart (lineStart is the index
// returned by nextFenceCandidateIndex / the start of a line).
func LeadingFenceIndent(buf string, lineStart int) int {
	n := len(buf)
	spaces := 0
	for lineStart+spaces < n && buf[lineStart+spaces] == ' ' && spaces < 3 {
		spaces++
	}
	return spaces
}

// TagOpenMatch describes a fully-buffered tag open sequence.
type TagOpenMatch struct {
	Name       string
	AttrSource string
	End        int // index in buf just past the closing '>'
}

// MatchTagOpen attempts to match a complete "<name ...>" at the start of buf.
// ok is false if buf does not begin with '<', or the name is malformed, or no
// closing '>' has been buffered yet (closeFound distinguishes the latter so
// the caller can decide whether to keep waiting).
func MatchTagOpen(buf string) (m TagOpenMatch, closeFound bool, ok bool) {
	if len(buf) == 0 || buf[0] != '<' {
		return TagOpenMatch{}, false, false
	}
	idx := strings.IndexByte(buf, '>')
	if idx < 0 {
		return TagOpenMatch{}, false, false
	}
	if !tagNameRe.MatchString(buf[1:]) {
		return TagOpenMatch{}, true, false
	}
	sub := tagOpenRe.FindStringSubmatch(buf[:idx+1])
	if sub == nil {
		return TagOpenMatch{}, true, false
	}
	return TagOpenMatch{Name: sub[1], AttrSource: sub[2], End: idx + 1}, true, true
}

// IsSelfClosing reports whether a tag's raw attribute source ends with a "/"
// immediately before '>' (e.g. "<br/>" or "<br />").
func IsSelfClosing(attrSource string) (trimmedAttrs string, selfClosing bool) {
	trimmed := strings.TrimRight(attrSource, " \t")
	if strings.HasSuffix(trimmed, "/") {
		return strings.TrimRight(trimmed[:len(trimmed)-1], " \t"), true
	}
	return attrSource, false
}

// TagCloseRegex builds (and the caller should cache) the close-tag matcher
// for a specific tag name.
func TagCloseRegex(name string) *regexp.Regexp {
	return regexp.MustCompile(`^</` + regexp.QuoteMeta(name) + `\s*>`)
}

// TagClosePrefixLen is the minimum retained tail length the tag handler keeps
// in buffer so a close marker split across a chunk boundary can still be
// recognized on the next feed: max(len("</name")-1, 1).
func TagClosePrefixLen(name string) int {
	l := len("</"+name) - 1
	if l < 1 {
		return 1
	}
	return l
}

// TagCloseStillForming reports whether buf[afterPrefixLen:] — the bytes
// buffered so far after a "</name" occurrence — could still resolve into
// `\s*>` given more input: true only while every byte seen so far is
// whitespace and no close ('>') has been reached yet. It returns false the
// moment a disqualifying byte appears, which is how the tag handler tells a
// genuinely-incomplete close marker ("</think" with nothing after it yet)
// apart from a same-prefixed but different tag name ("</thinking>"), which
// must never be waited on indefinitely.
func TagCloseStillForming(buf string, afterPrefixLen int) bool {
	rest := buf[afterPrefixLen:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return false
		}
	}
	return true
}

// KV is one key/value pair extracted from an attribute section, in the order
// it was encountered. Callers fold duplicates themselves (e.g. by feeding
// pairs into an ordered map that keeps first position, last value).
type KV struct {
	Key   string
	Value string
}

// ParseAttrs extracts key="value"/key='value' pairs from an attribute
// section, in order. Unquoted attributes are ignored, matching spec §6.3's
// `(\w+)=(["'])(.*?)\2` rule without relying on backreference support RE2
// doesn't have.
func ParseAttrs(s string) []KV {
	var pairs []KV
	i, n := 0, len(s)
	for i < n {
		for i < n && !IsWordByte(s[i]) {
			i++
		}
		start := i
		for i < n && IsWordByte(s[i]) {
			i++
		}
		if i == start {
			break
		}
		key := s[start:i]
		if i >= n || s[i] != '=' {
			continue
		}
		i++
		if i >= n {
			break
		}
		quote := s[i]
		if quote != '"' && quote != '\'' {
			continue
		}
		i++
		valStart := i
		for i < n && s[i] != quote {
			i++
		}
		if i >= n {
			break
		}
		pairs = append(pairs, KV{Key: key, Value: s[valStart:i]})
		i++
	}
	return pairs
}

// FenceCloseMatch describes a matched closing fence line.
type FenceCloseMatch struct {
	Start int // index where the closing-fence line (including indentation) begins
	End   int // index just past the consumed newline (or end of buffer)
}

// FindFenceClose searches buf for a line consisting of up to 3 leading
// spaces, then exactly length copies of char, then only whitespace up to a
// newline or end of buffer. It returns the earliest such match.
func FindFenceClose(buf string, char byte, length int) (FenceCloseMatch, bool) {
	pos := 0
	for pos <= len(buf) {
		lineEnd := strings.IndexByte(buf[pos:], '\n')
		var line string
		var consumedEnd int
		if lineEnd < 0 {
			line = buf[pos:]
			consumedEnd = len(buf)
		} else {
			line = buf[pos : pos+lineEnd]
			consumedEnd = pos + lineEnd + 1
		}
		if matchFenceCloseLine(line, char, length) {
			return FenceCloseMatch{Start: pos, End: consumedEnd}, true
		}
		if lineEnd < 0 {
			break
		}
		pos += lineEnd + 1
	}
	return FenceCloseMatch{}, false
}

// matchFenceCloseLine checks a single line (no trailing newline) for the
// closing-fence shape: up to 3 leading spaces, exactly length copies of
// char, then only whitespace to the end of the line.
func matchFenceCloseLine(line string, char byte, length int) bool {
	spaces := 0
	for spaces < len(line) && line[spaces] == ' ' && spaces < 3 {
		spaces++
	}
	rest := line[spaces:]
	if len(rest) < length {
		return false
	}
	for i := 0; i < length; i++ {
		if rest[i] != char {
			return false
		}
	}
	tail := rest[length:]
	return strings.TrimLeft(tail, " \t\r") == ""
}

// TrimInfoString trims an opening fence's info string, turning an
// all-whitespace string into "".
func TrimInfoString(s string) string {
	return strings.TrimSpace(s)
}
