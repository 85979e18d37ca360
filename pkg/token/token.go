// Package token defines the token trees consumed and produced by the fragment parser
package token

import (
	"fmt"
	"strings"
)

// Span is a position in the source a token was read from
type Span struct {
	Line   int
	Column int
	Offset int
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// Kind is the shape of a token tree
type Kind int

const (
	KindIdent Kind = iota
	KindLiteral
	KindPunct
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindIdent:
		return "ident"
	case KindLiteral:
		return "literal"
	case KindPunct:
		return "punct"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Spacing tells whether a punct is glued to the punct that follows it
type Spacing int

const (
	Alone Spacing = iota
	Joint
)

// Delimiter is the bracket kind surrounding a group
type Delimiter int

const (
	Parenthesis Delimiter = iota
	Bracket
	Brace
	None
)

// Open returns the opening character of the delimiter, or "" for None
func (d Delimiter) Open() string {
	switch d {
	case Parenthesis:
		return "("
	case Bracket:
		return "["
	case Brace:
		return "{"
	default:
		return ""
	}
}

// Close returns the closing character of the delimiter, or "" for None
func (d Delimiter) Close() string {
	switch d {
	case Parenthesis:
		return ")"
	case Bracket:
		return "]"
	case Brace:
		return "}"
	default:
		return ""
	}
}

// TokenTree is an atomic token or a delimited run of token trees
type TokenTree struct {
	Kind    Kind
	Text    string      // identifier name or literal source text
	Char    rune        // punct character
	Spacing Spacing     // punct spacing
	Delim   Delimiter   // group delimiter
	Stream  []TokenTree // group contents
	Span    Span
}

// ToTokenTrees is implemented by everything that can be turned back into tokens
type ToTokenTrees interface {
	AppendTo(dst []TokenTree) []TokenTree
}

// NewIdent creates an identifier token
func NewIdent(name string, span Span) TokenTree {
	return TokenTree{Kind: KindIdent, Text: name, Span: span}
}

// NewLiteral creates a literal token from its source text
func NewLiteral(text string, span Span) TokenTree {
	return TokenTree{Kind: KindLiteral, Text: text, Span: span}
}

// NewPunct creates a punctuation token
func NewPunct(ch rune, spacing Spacing, span Span) TokenTree {
	return TokenTree{Kind: KindPunct, Char: ch, Spacing: spacing, Span: span}
}

// NewGroup creates a delimited group
func NewGroup(delim Delimiter, stream []TokenTree, span Span) TokenTree {
	return TokenTree{Kind: KindGroup, Delim: delim, Stream: stream, Span: span}
}

// Ident is shorthand for an identifier without a source span
func Ident(name string) TokenTree {
	return NewIdent(name, Span{})
}

// Op returns the punct tokens spelling op, all but the last one joint
func Op(op string, span Span) []TokenTree {
	runes := []rune(op)
	out := make([]TokenTree, 0, len(runes))
	for i, r := range runes {
		spacing := Joint
		if i == len(runes)-1 {
			spacing = Alone
		}
		out = append(out, NewPunct(r, spacing, span))
	}
	return out
}

// Flatten unwraps None-delimited groups holding exactly one tree, recursively
func (tt TokenTree) Flatten() TokenTree {
	for tt.Kind == KindGroup && tt.Delim == None && len(tt.Stream) == 1 {
		tt = tt.Stream[0]
	}
	return tt
}

// IsIdent reports whether the token is the identifier name
func (tt TokenTree) IsIdent(name string) bool {
	return tt.Kind == KindIdent && tt.Text == name
}

// IsPunct reports whether the token is the punct ch
func (tt TokenTree) IsPunct(ch rune) bool {
	return tt.Kind == KindPunct && tt.Char == ch
}

// IsGroup reports whether the token is a group with the given delimiter
func (tt TokenTree) IsGroup(delim Delimiter) bool {
	return tt.Kind == KindGroup && tt.Delim == delim
}

// String returns a debug representation of the token
func (tt TokenTree) String() string {
	switch tt.Kind {
	case KindIdent:
		return "IDENT:" + tt.Text
	case KindLiteral:
		return "LITERAL:" + tt.Text
	case KindPunct:
		if tt.Spacing == Joint {
			return fmt.Sprintf("PUNCT:%c~", tt.Char)
		}
		return fmt.Sprintf("PUNCT:%c", tt.Char)
	case KindGroup:
		parts := make([]string, len(tt.Stream))
		for i, t := range tt.Stream {
			parts[i] = t.String()
		}
		open, closing := tt.Delim.Open(), tt.Delim.Close()
		if tt.Delim == None {
			open, closing = "«", "»"
		}
		return open + strings.Join(parts, " ") + closing
	default:
		return "?"
	}
}

// Collect appends the tokens of every item in order
func Collect(items ...ToTokenTrees) []TokenTree {
	var out []TokenTree
	for _, item := range items {
		if item != nil {
			out = item.AppendTo(out)
		}
	}
	return out
}

// Stream is a plain run of token trees
type Stream []TokenTree

// AppendTo appends the stream itself
func (s Stream) AppendTo(dst []TokenTree) []TokenTree {
	return append(dst, s...)
}
