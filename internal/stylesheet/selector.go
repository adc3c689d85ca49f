package stylesheet

import "strings"

// selSegment is one combinator-delimited compound selector within a
// selector chain. combinator is the combinator preceding this segment:
// 0 for the first segment, ' ' for a descendant combinator, or one of
// '>', '+', '~'.
type selSegment struct {
	combinator byte
	text       string
}

// segmentSelector splits an already whitespace-squeezed selector into its
// combinator chain, using depth-aware scanning so combinators inside
// functional pseudo-classes (at nonzero depth) are left untouched.
func segmentSelector(s string) []selSegment {
	var segs []selSegment
	var sc depthScanner
	var buf strings.Builder
	first := true
	var pendingCombinator byte

	flush := func() {
		text := buf.String()
		if text == "" {
			return
		}
		c := byte(0)
		if !first {
			c = pendingCombinator
		}
		segs = append(segs, selSegment{combinator: c, text: text})
		first = false
		pendingCombinator = 0
		buf.Reset()
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		zero := sc.atZero()
		sc.feed(c)
		if zero {
			switch c {
			case '>', '+', '~':
				flush()
				pendingCombinator = c
				continue
			case ' ':
				if buf.Len() > 0 {
					flush()
					pendingCombinator = ' '
				}
				continue
			}
		}
		buf.WriteByte(c)
	}
	flush()
	return segs
}

// joinSegments reconstructs canonical selector text from a segment chain:
// a single space for descendant combinators, " > "/" + "/" ~ " otherwise.
func joinSegments(segs []selSegment) string {
	var b strings.Builder
	for idx, s := range segs {
		if idx == 0 {
			b.WriteString(s.text)
			continue
		}
		switch s.combinator {
		case ' ', 0:
			b.WriteByte(' ')
		default:
			b.WriteByte(' ')
			b.WriteByte(s.combinator)
			b.WriteByte(' ')
		}
		b.WriteString(s.text)
	}
	return b.String()
}

// normalizeSelector collapses whitespace, trims, and canonicalizes
// combinator spacing, per §4.1's selector normalization rule.
func normalizeSelector(sel string) string {
	squeezed := squeezeWhitespace(sel)
	segs := segmentSelector(squeezed)
	if len(segs) == 0 {
		return ""
	}
	return joinSegments(segs)
}

// extractParentSelector performs a depth-aware drop of the trailing
// compound segment and its leading combinator (§4.4 tree-parent
// computation). Returns "" when selector has only one segment.
func extractParentSelector(selector string) string {
	segs := segmentSelector(selector)
	if len(segs) <= 1 {
		return ""
	}
	return joinSegments(segs[:len(segs)-1])
}

// rightmostToken returns the trailing compound selector segment, used as
// the basis for a rule's stable identifier.
func rightmostToken(selector string) string {
	segs := segmentSelector(selector)
	if len(segs) == 0 {
		return selector
	}
	return segs[len(segs)-1].text
}
