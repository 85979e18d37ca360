package parser

import (
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/token"
)

// Cursor is a view over the remaining input. Parsing advances it in place;
// copying the struct value is a checkpoint.
type Cursor struct {
	tokens []token.TokenTree
}

// NewCursor creates a cursor over tokens
func NewCursor(tokens []token.TokenTree) *Cursor {
	return &Cursor{tokens: tokens}
}

// IsEmpty checks if all input was consumed
func (c *Cursor) IsEmpty() bool {
	return len(c.tokens) == 0
}

// Len returns the number of remaining top-level trees
func (c *Cursor) Len() int {
	return len(c.tokens)
}

// Rest returns the remaining input without consuming it
func (c *Cursor) Rest() []token.TokenTree {
	return c.tokens
}

// Peek returns the next tree, with transparent groups flattened
func (c *Cursor) Peek() (token.TokenTree, bool) {
	return c.PeekN(0)
}

// PeekN looks ahead by offset trees
func (c *Cursor) PeekN(offset int) (token.TokenTree, bool) {
	if offset >= len(c.tokens) {
		return token.TokenTree{}, false
	}
	return c.tokens[offset].Flatten(), true
}

// Next returns the next tree and advances past it
func (c *Cursor) Next() (token.TokenTree, bool) {
	tt, ok := c.Peek()
	if ok {
		c.tokens = c.tokens[1:]
	}
	return tt, ok
}

// Span returns the span of the next tree, or nil at end of input
func (c *Cursor) Span() *token.Span {
	tt, ok := c.Peek()
	if !ok {
		return nil
	}
	span := tt.Span
	return &span
}

// checkPunct reports whether the tree at offset is the punct ch
func (c *Cursor) checkPunct(offset int, ch rune) bool {
	tt, ok := c.PeekN(offset)
	return ok && tt.IsPunct(ch)
}

// checkIdent reports whether the tree at offset is the identifier name
func (c *Cursor) checkIdent(offset int, name string) bool {
	tt, ok := c.PeekN(offset)
	return ok && tt.IsIdent(name)
}
