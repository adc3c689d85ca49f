package stylesheet

import "strings"

// depthScanner tracks parenthesis depth, bracket depth, and string-literal
// state while walking a byte stream, so that combinators, commas, and
// braces can be recognized only at zero depth and outside strings (§4.1,
// §9 "Selector parsing as a depth-tracked scanner").
type depthScanner struct {
	parenDepth   int
	bracketDepth int
	quote        byte // 0, '\'', or '"'
	escaped      bool
}

// atZero reports whether the scanner sits at top level: no open paren,
// bracket, or string literal.
func (s *depthScanner) atZero() bool {
	return s.parenDepth == 0 && s.bracketDepth == 0 && s.quote == 0
}

// feed advances the scanner state past byte c. Callers must check atZero
// (or inspect state) *before* calling feed for byte c, since feed mutates
// state to reflect having consumed c.
func (s *depthScanner) feed(c byte) {
	if s.escaped {
		s.escaped = false
		return
	}
	if s.quote != 0 {
		switch c {
		case '\\':
			s.escaped = true
		case s.quote:
			s.quote = 0
		}
		return
	}
	switch c {
	case '\'', '"':
		s.quote = c
	case '(':
		s.parenDepth++
	case ')':
		if s.parenDepth > 0 {
			s.parenDepth--
		}
	case '[':
		s.bracketDepth++
	case ']':
		if s.bracketDepth > 0 {
			s.bracketDepth--
		}
	}
}

// stripComments removes /* ... */ block comments, preserving string
// literals verbatim (a comment marker inside a string is not a comment).
// An unterminated comment consumes the remainder of the input, per the
// parser's tolerant failure policy.
func stripComments(src string) string {
	var buf strings.Builder
	var sc depthScanner
	i := 0
	n := len(src)
	for i < n {
		c := src[i]
		if sc.quote == 0 && c == '/' && i+1 < n && src[i+1] == '*' {
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				break
			}
			i = i + 2 + end + 2
			continue
		}
		sc.feed(c)
		buf.WriteByte(c)
		i++
	}
	return buf.String()
}

// statement is one top-level unit produced by splitTopLevel: either a
// semicolon-terminated at-statement/declaration, or a brace-delimited
// block with its prelude and body text.
type statement struct {
	prelude string
	body    string
	isBlock bool
}

// splitTopLevel repeatedly scans for the next top-level ';' or '{',
// respecting paren/bracket/string depth. Unterminated trailing content
// (no terminator before end of input) is silently dropped, matching the
// parser's "never raise on malformed input" policy.
func splitTopLevel(s string) []statement {
	var stmts []statement
	var sc depthScanner
	start := 0
	i := 0
	n := len(s)
	for i < n {
		c := s[i]
		zero := sc.atZero()
		sc.feed(c)
		if zero {
			switch c {
			case ';':
				stmts = append(stmts, statement{prelude: s[start:i]})
				i++
				start = i
				continue
			case '{':
				bodyStart := i + 1
				bodyEnd, next := findMatchingBrace(s, bodyStart)
				stmts = append(stmts, statement{prelude: s[start:i], body: s[bodyStart:bodyEnd], isBlock: true})
				i = next
				start = i
				continue
			}
		}
		i++
	}
	return stmts
}

// findMatchingBrace locates the '}' matching the '{' whose body starts at
// bodyStart, using brace counting that also respects paren/bracket/string
// depth. An unterminated block falls through to end-of-input.
func findMatchingBrace(s string, bodyStart int) (bodyEnd, next int) {
	var sc depthScanner
	depth := 1
	i := bodyStart
	n := len(s)
	for i < n {
		c := s[i]
		zero := sc.atZero()
		sc.feed(c)
		if zero {
			switch c {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return i, i + 1
				}
			}
		}
		i++
	}
	return n, n
}

// splitSelectorList splits a prelude into selector list members at
// top-level commas, ignoring commas inside :is(...), :where(...),
// :has(...), or bracketed attribute selectors (all at nonzero depth).
func splitSelectorList(s string) []string {
	var sc depthScanner
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		zero := sc.atZero()
		sc.feed(c)
		if zero && c == ',' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitDeclaration splits a "prop: value" statement at the first
// top-level colon. Colons inside functions, brackets, or strings (e.g. a
// data URL) do not split.
func splitDeclaration(s string) (prop, value string, ok bool) {
	var sc depthScanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		zero := sc.atZero()
		sc.feed(c)
		if zero && c == ':' {
			prop = strings.TrimSpace(s[:i])
			value = strings.TrimSpace(s[i+1:])
			if prop == "" {
				return "", "", false
			}
			return prop, value, true
		}
	}
	return "", "", false
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// squeezeWhitespace collapses every run of ASCII whitespace into a single
// space and trims the result.
func squeezeWhitespace(s string) string {
	var b strings.Builder
	prevSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isSpaceByte(c) {
			if b.Len() > 0 && !prevSpace {
				b.WriteByte(' ')
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		b.WriteByte(c)
	}
	return strings.TrimSpace(b.String())
}
