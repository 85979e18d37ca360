// Package parser implements parse combinators for syntactic fragments over token trees
package parser

import (
	"fmt"

	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/token"
)

// Error is a parse failure. Span is nil when the input ended.
type Error struct {
	Span *token.Span
	Msg  string
}

func (e *Error) Error() string {
	if e.Span == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Span, e.Msg)
}

func errorAt(span *token.Span, format string, args ...any) *Error {
	return &Error{Span: span, Msg: fmt.Sprintf(format, args...)}
}

func spanOf(tt token.TokenTree) *token.Span {
	span := tt.Span
	return &span
}

// Fragment describes how to recognize one kind of syntax
type Fragment[T any] struct {
	// Desc names the fragment in error messages
	Desc string
	// Try returns ok=false without error when the fragment clearly isn't present
	Try func(c *Cursor) (T, bool, error)
}

func fragment[T any](desc string, try func(c *Cursor) (T, bool, error)) Fragment[T] {
	return Fragment[T]{Desc: desc, Try: try}
}

// TryParse attempts the fragment. The cursor is left unchanged unless it succeeds.
func (f Fragment[T]) TryParse(c *Cursor) (T, bool, error) {
	saved := *c
	value, ok, err := f.Try(c)
	if err != nil || !ok {
		*c = saved
		var zero T
		return zero, false, err
	}
	return value, true, nil
}

// Parse is TryParse with a missing fragment turned into an error
func (f Fragment[T]) Parse(c *Cursor) (T, error) {
	value, ok, err := f.TryParse(c)
	if err != nil {
		return value, err
	}
	if !ok {
		if c.IsEmpty() {
			return value, errorAt(nil, "unexpected end of input, expected %s", f.Desc)
		}
		return value, errorAt(c.Span(), "expected %s", f.Desc)
	}
	return value, nil
}

// ParseAll parses the fragment and requires the input to be fully consumed
func (f Fragment[T]) ParseAll(c *Cursor) (T, error) {
	value, err := f.Parse(c)
	if err != nil {
		return value, err
	}
	if !c.IsEmpty() {
		return value, errorAt(c.Span(), "unexpected input after %s", f.Desc)
	}
	return value, nil
}

// TryParseAll is TryParse followed by the end-of-input check of ParseAll
func (f Fragment[T]) TryParseAll(c *Cursor) (T, bool, error) {
	value, ok, err := f.TryParse(c)
	if err != nil || !ok {
		return value, ok, err
	}
	if !c.IsEmpty() {
		return value, false, errorAt(c.Span(), "unexpected input after %s", f.Desc)
	}
	return value, true, nil
}

// Many repeats f while it succeeds; it needs at least one element
func Many[T any](f Fragment[T]) Fragment[[]T] {
	return fragment(f.Desc, func(c *Cursor) ([]T, bool, error) {
		var out []T
		for {
			value, ok, err := f.TryParse(c)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				break
			}
			out = append(out, value)
		}
		return out, len(out) > 0, nil
	})
}

// ParseTokens parses a whole token stream as the fragment
func ParseTokens[T any](f Fragment[T], tokens []token.TokenTree) (T, error) {
	return f.ParseAll(NewCursor(tokens))
}

// ParseString tokenizes src and parses all of it as the fragment
func ParseString[T any](f Fragment[T], src string) (T, error) {
	tokens, err := token.Tokenize(src)
	if err != nil {
		var zero T
		return zero, err
	}
	return ParseTokens(f, tokens)
}
