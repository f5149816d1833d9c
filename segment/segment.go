// Package segment splits strings into tokens, words, or grapheme clusters.
//
// Each function is purely functional over its input: given the same string it
// always returns the same pieces, and concatenating the pieces reproduces the
// input exactly. All statefulness needed to stream segmentation across
// arbitrarily chopped input (holding back an unfinished trailing word, for
// instance) belongs to the caller — see the root tokenloom package's use of
// seg_hold/fence_hold.
package segment

import (
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/clipperhouse/uax29/v2/words"
)

// Unit selects a segmentation granularity.
type Unit int

// Recognized units.
const (
	Token Unit = iota
	Word
	Grapheme
)

// Split partitions s into pieces according to unit. Concatenating the
// returned pieces, in order, always yields s.
func Split(s string, unit Unit) []string {
	switch unit {
	case Token:
		return SplitTokens(s)
	case Word:
		return SplitWords(s)
	case Grapheme:
		return SplitGraphemes(s)
	default:
		return SplitTokens(s)
	}
}

// SplitTokens splits s into maximal runs of whitespace and maximal runs of
// non-whitespace, preserving each run as one piece.
func SplitTokens(s string) []string {
	if s == "" {
		return nil
	}
	var pieces []string
	start := 0
	inSpace := false
	first := true
	for i, r := range s {
		isSpace := unicode.IsSpace(r)
		if !first && isSpace != inSpace {
			pieces = append(pieces, s[start:i])
			start = i
		}
		inSpace = isSpace
		first = false
	}
	pieces = append(pieces, s[start:])
	return pieces
}

// SplitGraphemes emits one piece per Unicode grapheme cluster using
// clipperhouse/uax29/v2's grapheme segmenter. If the input contains
// ill-formed UTF-8 (which the segmenter's byte scanner cannot make sense of),
// it falls back to raw code-point iteration, which by construction never
// splits a valid multi-byte rune and passes invalid bytes through one at a
// time — the conservative fallback spec §9 calls for when no Unicode-aware
// segmenter can be trusted with the input.
func SplitGraphemes(s string) []string {
	if s == "" {
		return nil
	}
	if !utf8.ValidString(s) {
		return fallbackGraphemes(s)
	}
	var pieces []string
	seg := graphemes.FromString(s)
	for seg.Next() {
		pieces = append(pieces, seg.Value())
	}
	if len(pieces) == 0 {
		return fallbackGraphemes(s)
	}
	return pieces
}

// SplitWords emits word-level pieces per Unicode word segmentation (words,
// whitespace runs, punctuation), then merges any adjacent "//" + "/*" + "*/"
// piece pairs produced by the segmenter into single pieces so downstream
// highlighters see comment operators as atomic tokens.
func SplitWords(s string) []string {
	if s == "" {
		return nil
	}
	var pieces []string
	if !utf8.ValidString(s) {
		pieces = fallbackWords(s)
	} else {
		seg := words.FromString(s)
		for seg.Next() {
			pieces = append(pieces, seg.Value())
		}
		if len(pieces) == 0 {
			pieces = fallbackWords(s)
		}
	}
	return mergeCommentOperators(pieces)
}

// commentOperatorPairs lists adjacent-piece sequences that must collapse into
// a single piece: "/" + "/" -> "//", "/" + "*" -> "/*", "*" + "/" -> "*/".
// Word segmenters commonly split on punctuation-class transitions and would
// otherwise hand "//" back as two separate "/" pieces.
var commentOperatorPairs = map[string]bool{
	"//": true,
	"/*": true,
	"*/": true,
}

func mergeCommentOperators(pieces []string) []string {
	if len(pieces) < 2 {
		return pieces
	}
	out := make([]string, 0, len(pieces))
	i := 0
	for i < len(pieces) {
		if i+1 < len(pieces) && commentOperatorPairs[pieces[i]+pieces[i+1]] {
			out = append(out, pieces[i]+pieces[i+1])
			i += 2
			continue
		}
		out = append(out, pieces[i])
		i++
	}
	return out
}

// fallbackGraphemes iterates by Unicode scalar value (code point), which
// never splits a surrogate-encoded rune because Go strings are already UTF-8
// and utf8.DecodeRuneInString advances by full rune width (using
// utf8.RuneError width 1 for genuinely invalid bytes, so malformed input is
// still consumed byte-by-byte rather than stalling).
func fallbackGraphemes(s string) []string {
	var pieces []string
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size == 0 {
			size = 1
		}
		pieces = append(pieces, s[i:i+size])
		i += size
	}
	return pieces
}

// isWordChar reports whether r counts as a "word character" (Unicode letter,
// number, or underscore) for the property-class fallback word segmenter.
func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}

// fallbackWords splits on transitions between word-character runs and
// non-word-character runs when no Unicode word segmenter is available (or
// the input is not valid UTF-8).
func fallbackWords(s string) []string {
	if s == "" {
		return nil
	}
	var pieces []string
	start := 0
	var curWord bool
	first := true
	for i, r := range s {
		w := isWordChar(r)
		if !first && w != curWord {
			pieces = append(pieces, s[start:i])
			start = i
		}
		curWord = w
		first = false
	}
	pieces = append(pieces, s[start:])
	return pieces
}

// LastCharIsWord reports whether the last rune of s is a Unicode
// letter/number/underscore, the test the caller uses to decide whether to
// hold back a piece as an unfinished word (spec §4.2).
func LastCharIsWord(s string) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return isWordChar(r)
}
