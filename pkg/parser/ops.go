package parser

import (
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/token"
)

// TryParseOp consumes the operator op. Each character is a separate punct; the
// match fails if a punct is not joint with the next one before op is complete.
func TryParseOp(c *Cursor, op string) (token.Span, bool) {
	runes := []rune(op)
	probe := *c
	var span token.Span
	for i, r := range runes {
		tt, ok := probe.Next()
		if !ok || !tt.IsPunct(r) {
			return token.Span{}, false
		}
		if i == 0 {
			span = tt.Span
		}
		if i < len(runes)-1 && tt.Spacing != token.Joint {
			return token.Span{}, false
		}
	}
	*c = probe
	return span, true
}

// ParseOp consumes op or fails with "expected `op`"
func ParseOp(c *Cursor, op string) (token.Span, error) {
	if span, ok := TryParseOp(c, op); ok {
		return span, nil
	}
	return token.Span{}, expected(c, "`"+op+"`")
}

// TryParseKeyword consumes the identifier name
func TryParseKeyword(c *Cursor, name string) (token.TokenTree, bool) {
	if c.checkIdent(0, name) {
		tt, _ := c.Next()
		return tt, true
	}
	return token.TokenTree{}, false
}

// ParseKeyword consumes the identifier name or fails with "expected `name`"
func ParseKeyword(c *Cursor, name string) (token.TokenTree, error) {
	if tt, ok := TryParseKeyword(c, name); ok {
		return tt, nil
	}
	return token.TokenTree{}, expected(c, "`"+name+"`")
}

// TryParseIdent consumes any identifier
func TryParseIdent(c *Cursor) (token.TokenTree, bool) {
	tt, ok := c.Peek()
	if !ok || tt.Kind != token.KindIdent {
		return token.TokenTree{}, false
	}
	c.Next()
	return tt, true
}

// ParseIdent consumes any identifier or fails with "expected what"
func ParseIdent(c *Cursor, what string) (token.TokenTree, error) {
	if tt, ok := TryParseIdent(c); ok {
		return tt, nil
	}
	return token.TokenTree{}, expected(c, what)
}

// TryParseGroup consumes a group with the given delimiter
func TryParseGroup(c *Cursor, delim token.Delimiter) (token.TokenTree, bool) {
	tt, ok := c.Peek()
	if !ok || !tt.IsGroup(delim) {
		return token.TokenTree{}, false
	}
	c.Next()
	return tt, true
}

func expected(c *Cursor, what string) *Error {
	if c.IsEmpty() {
		return errorAt(nil, "unexpected end of input, expected %s", what)
	}
	return errorAt(c.Span(), "expected %s", what)
}

// isArrowTail reports whether a `>` following prev completes `->` or `=>`
func isArrowTail(prev *token.TokenTree) bool {
	return prev != nil && prev.Kind == token.KindPunct && prev.Spacing == token.Joint &&
		(prev.Char == '-' || prev.Char == '=')
}

// ReadBalancedAngleBrackets consumes trees while stop returns false, tracking
// `<`/`>` nesting. stop is only consulted outside of angle brackets; progress is
// the number of trees consumed so far. An unmatched `>` ends the run. The `>` of
// `->` and `=>` is not a bracket.
func ReadBalancedAngleBrackets(c *Cursor, stop func(tt token.TokenTree, progress int) bool) ([]token.TokenTree, error) {
	var (
		out       []token.TokenTree
		depth     int
		firstOpen *token.Span
		prev      *token.TokenTree
	)
	for {
		tt, ok := c.Peek()
		if !ok {
			break
		}
		if depth == 0 && stop(tt, len(out)) {
			break
		}
		switch {
		case tt.IsPunct('<'):
			if depth == 0 {
				firstOpen = spanOf(tt)
			}
			depth++
		case tt.IsPunct('>') && !isArrowTail(prev):
			if depth == 0 {
				return out, nil
			}
			depth--
		}
		c.Next()
		out = append(out, tt)
		prev = &out[len(out)-1]
	}
	if depth > 0 {
		return nil, errorAt(firstOpen, "unterminated `<`")
	}
	return out, nil
}
