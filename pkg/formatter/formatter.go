// Package formatter turns token trees back into source text
package formatter

import (
	"strings"

	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/token"
)

// Formatter handles token printing and indentation
type Formatter struct {
	indentSize int
	useSpaces  bool
	pretty     bool
}

// New creates a formatter that prints everything on one line
func New() *Formatter {
	return &Formatter{
		indentSize: 4,
		useSpaces:  true,
	}
}

// NewPretty creates a formatter that breaks lines after items and inside braces
func NewPretty() *Formatter {
	f := New()
	f.pretty = true
	return f
}

// Format prints tokens on a single line
func Format(tokens []token.TokenTree) string {
	return New().Format(tokens)
}

// Format prints a token stream. Re-tokenizing the output yields the same trees.
func (f *Formatter) Format(tokens []token.TokenTree) string {
	var result strings.Builder
	f.writeStream(&result, tokens, 0)
	return strings.TrimRight(result.String(), " \n")
}

func (f *Formatter) writeStream(result *strings.Builder, tokens []token.TokenTree, depth int) {
	lineStart := true
	for i, tt := range tokens {
		if !lineStart && needsSpace(tokens, i) {
			result.WriteString(" ")
		}
		f.writeTree(result, tt, depth)
		lineStart = false
		if f.pretty && endsItem(tokens, i) && i+1 < len(tokens) {
			result.WriteString("\n")
			result.WriteString(f.getIndent(depth))
			lineStart = true
		}
	}
}

func (f *Formatter) writeTree(result *strings.Builder, tt token.TokenTree, depth int) {
	switch tt.Kind {
	case token.KindIdent, token.KindLiteral:
		result.WriteString(tt.Text)
	case token.KindPunct:
		result.WriteRune(tt.Char)
	case token.KindGroup:
		if tt.Delim == token.None {
			f.writeStream(result, tt.Stream, depth)
			return
		}
		result.WriteString(tt.Delim.Open())
		if tt.Delim == token.Brace && len(tt.Stream) > 0 {
			if f.pretty {
				result.WriteString("\n" + f.getIndent(depth+1))
				f.writeStream(result, tt.Stream, depth+1)
				result.WriteString("\n" + f.getIndent(depth))
			} else {
				result.WriteString(" ")
				f.writeStream(result, tt.Stream, depth)
				result.WriteString(" ")
			}
		} else {
			f.writeStream(result, tt.Stream, depth)
		}
		result.WriteString(tt.Delim.Close())
	}
}

// needsSpace decides whether a space separates tokens[i-1] and tokens[i]
func needsSpace(tokens []token.TokenTree, i int) bool {
	prev, next := tokens[i-1], tokens[i]
	if prev.Kind == token.KindPunct {
		if prev.Spacing == token.Joint {
			return false
		}
		// an alone punct must not touch a punct it would join with
		if next.Kind == token.KindPunct && token.IsOperatorChar(next.Char) {
			return true
		}
		switch prev.Char {
		case '&', '*', '#', '!', '<':
			return false
		case '.':
			// `t.0.1` must not re-read as the float `0.1`
			return next.Kind == token.KindLiteral
		case ':':
			return !(i >= 2 && tokens[i-2].IsPunct(':') && tokens[i-2].Spacing == token.Joint)
		}
		return true
	}
	if next.Kind == token.KindPunct {
		switch next.Char {
		case ',', ';', ':', '>', '.':
			return false
		case '<', '!':
			return prev.Kind != token.KindIdent
		}
		return true
	}
	if prev.Kind == token.KindIdent && (next.IsGroup(token.Parenthesis) || next.IsGroup(token.Bracket)) {
		return isKeyword(prev.Text)
	}
	return true
}

// endsItem reports whether tokens[i] closes an item at this nesting level
func endsItem(tokens []token.TokenTree, i int) bool {
	tt := tokens[i]
	if tt.IsPunct(';') {
		return true
	}
	if tt.IsGroup(token.Brace) {
		return i+1 >= len(tokens) || !tokens[i+1].IsPunct(';')
	}
	if tt.IsGroup(token.Bracket) && i > 0 && tokens[i-1].IsPunct('#') {
		return true
	}
	return false
}

func isKeyword(word string) bool {
	switch word {
	case "fn", "impl", "for", "if", "while", "match", "in", "as", "where", "return", "mut", "dyn", "unsafe", "extern", "pub":
		return true
	}
	return false
}

// getIndent returns the indentation string for the given depth
func (f *Formatter) getIndent(depth int) string {
	if f.useSpaces {
		return strings.Repeat(" ", depth*f.indentSize)
	}
	return strings.Repeat("\t", depth)
}
