package token

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const puncts = "=<>!~+-*/%^&|@.,;:#$?"

// IsOperatorChar reports whether r is a punct that can join with a neighbor
func IsOperatorChar(r rune) bool {
	return strings.ContainsRune(puncts, r)
}

// LexError is a tokenizer failure with the position it happened at
type LexError struct {
	Span Span
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Msg)
}

type openGroup struct {
	delim  Delimiter
	span   Span
	stream []TokenTree
}

// Tokenizer turns Rust-like source text into token trees
type Tokenizer struct {
	input     string
	pos       int // current position in input
	line      int // current line number
	column    int // current column number
	width     int // width of last rune read
	start     int // start position of current token
	startSpan Span
	stack     []openGroup
	errors    []*LexError
	maxTokens int // Maximum number of tokens to prevent OOM
	count     int
}

// NewTokenizer creates a new tokenizer
func NewTokenizer(input string) *Tokenizer {
	const maxTokensLimit = 1000000
	return &Tokenizer{
		input:     input,
		line:      1,
		column:    1,
		stack:     []openGroup{{delim: None}},
		maxTokens: maxTokensLimit,
	}
}

// Tokenize is a convenience wrapper returning the top-level trees or the first error
func Tokenize(src string) ([]TokenTree, error) {
	t := NewTokenizer(src)
	tokens := t.Tokenize()
	if t.HasErrors() {
		return nil, t.errors[0]
	}
	return tokens, nil
}

// next reads the next rune and advances position
func (t *Tokenizer) next() rune {
	if t.pos >= len(t.input) {
		t.width = 0
		return 0
	}

	r, w := utf8.DecodeRuneInString(t.input[t.pos:])
	t.width = w
	t.pos += w

	if r == '\n' {
		t.line++
		t.column = 1
	} else {
		t.column++
	}

	return r
}

// backup steps back one rune
func (t *Tokenizer) backup() {
	if t.width == 0 {
		return
	}
	t.pos -= t.width
	if t.pos < len(t.input) && t.input[t.pos] == '\n' {
		t.line--
		col := 1
		for i := t.pos - 1; i >= 0 && t.input[i] != '\n'; i-- {
			col++
		}
		t.column = col
	} else {
		t.column--
	}
}

// peek returns the next rune without advancing position
func (t *Tokenizer) peek() rune {
	r := t.next()
	t.backup()
	return r
}

// peekN returns the nth rune ahead without advancing position
func (t *Tokenizer) peekN(n int) rune {
	pos, line, column, width := t.pos, t.line, t.column, t.width

	var r rune
	for i := 0; i < n; i++ {
		r = t.next()
		if r == 0 {
			break
		}
	}

	t.pos, t.line, t.column, t.width = pos, line, column, width
	return r
}

func (t *Tokenizer) mark() {
	t.start = t.pos
	t.startSpan = Span{Line: t.line, Column: t.column, Offset: t.pos}
}

func (t *Tokenizer) text() string {
	return t.input[t.start:t.pos]
}

// emit appends a token to the innermost open group
func (t *Tokenizer) emit(tt TokenTree) {
	if t.count >= t.maxTokens {
		if t.count == t.maxTokens {
			t.emitError("too many tokens - possible infinite loop or memory exhaustion")
		}
		t.count++
		return
	}
	t.count++
	top := &t.stack[len(t.stack)-1]
	top.stream = append(top.stream, tt)
}

func (t *Tokenizer) emitError(message string) {
	t.errors = append(t.errors, &LexError{Span: t.startSpan, Msg: message})
}

// Tokenize processes the input and returns the top-level token trees
func (t *Tokenizer) Tokenize() []TokenTree {
	for t.pos < len(t.input) && len(t.errors) == 0 {
		oldPos := t.pos
		t.mark()
		r := t.next()

		switch {
		case unicode.IsSpace(r):
			// insignificant
		case r == '/' && (t.peek() == '/' || t.peek() == '*'):
			t.scanComment()
		case r == '"':
			t.scanString()
			t.emit(NewLiteral(t.text(), t.startSpan))
		case r == '\'':
			t.scanQuote()
		case r == '_' || unicode.IsLetter(r):
			t.scanIdentifier()
		case unicode.IsDigit(r):
			t.scanNumber()
		case r == '(' || r == '[' || r == '{':
			t.openGroup(r)
		case r == ')' || r == ']' || r == '}':
			t.closeGroup(r)
		case strings.ContainsRune(puncts, r):
			t.scanPunct(r)
		default:
			t.emitError(fmt.Sprintf("unexpected character: %c", r))
		}

		if t.pos == oldPos {
			t.emitError(fmt.Sprintf("tokenizer stuck at position %d", t.pos))
			t.pos++
		}
	}

	if len(t.errors) == 0 && len(t.stack) > 1 {
		open := t.stack[len(t.stack)-1]
		t.startSpan = open.span
		t.emitError(fmt.Sprintf("unclosed delimiter `%s`", open.delim.Open()))
	}

	return t.stack[0].stream
}

// HasErrors returns true if the tokenizer encountered any errors
func (t *Tokenizer) HasErrors() bool {
	return len(t.errors) > 0
}

// GetErrors returns all errors
func (t *Tokenizer) GetErrors() []*LexError {
	return t.errors
}

// SetMaxTokens sets the maximum number of tokens (for testing purposes)
func (t *Tokenizer) SetMaxTokens(max int) {
	t.maxTokens = max
}

func (t *Tokenizer) openGroup(r rune) {
	delim := Parenthesis
	switch r {
	case '[':
		delim = Bracket
	case '{':
		delim = Brace
	}
	t.stack = append(t.stack, openGroup{delim: delim, span: t.startSpan})
}

func (t *Tokenizer) closeGroup(r rune) {
	if len(t.stack) == 1 {
		t.emitError(fmt.Sprintf("unexpected closing delimiter `%c`", r))
		return
	}
	open := t.stack[len(t.stack)-1]
	if open.delim.Close() != string(r) {
		t.emitError(fmt.Sprintf("mismatched closing delimiter `%c` for `%s`", r, open.delim.Open()))
		return
	}
	t.stack = t.stack[:len(t.stack)-1]
	t.emit(NewGroup(open.delim, open.stream, open.span))
}

// scanPunct emits a punct, joint when another punct follows immediately
func (t *Tokenizer) scanPunct(r rune) {
	spacing := Alone
	if next := t.peek(); next != 0 && strings.ContainsRune(puncts, next) {
		spacing = Joint
	}
	t.emit(NewPunct(r, spacing, t.startSpan))
}

// scanComment skips comments; doc comments become doc attributes
func (t *Tokenizer) scanComment() {
	// '/' already consumed
	if t.next() == '/' {
		inner := t.peek() == '!'
		doc := inner || (t.peek() == '/' && t.peekN(2) != '/')
		if doc {
			t.next()
		}
		bodyStart := t.pos
		for {
			r := t.next()
			if r == '\n' || r == 0 {
				if r == '\n' {
					t.backup()
				}
				break
			}
		}
		if doc {
			t.emitDoc(t.input[bodyStart:t.pos], inner)
		}
		return
	}

	inner := t.peek() == '!'
	doc := inner || (t.peek() == '*' && t.peekN(2) != '*' && t.peekN(2) != '/')
	if doc {
		t.next()
	}
	bodyStart := t.pos
	depth := 1
	for depth > 0 {
		r := t.next()
		switch {
		case r == 0:
			t.emitError("unterminated block comment")
			return
		case r == '/' && t.peek() == '*':
			t.next()
			depth++
		case r == '*' && t.peek() == '/':
			t.next()
			depth--
		}
	}
	if doc {
		t.emitDoc(t.input[bodyStart:t.pos-2], inner)
	}
}

// emitDoc lowers a doc comment to #[doc = "..."] or #![doc = "..."]
func (t *Tokenizer) emitDoc(text string, inner bool) {
	span := t.startSpan
	if inner {
		t.emit(NewPunct('#', Joint, span))
		t.emit(NewPunct('!', Alone, span))
	} else {
		t.emit(NewPunct('#', Alone, span))
	}
	t.emit(NewGroup(Bracket, []TokenTree{
		NewIdent("doc", span),
		NewPunct('=', Alone, span),
		NewLiteral(strconv.Quote(text), span),
	}, span))
}

// scanString scans the rest of a string literal after the opening quote
func (t *Tokenizer) scanString() {
	for {
		r := t.next()
		if r == 0 {
			t.emitError("unterminated string literal")
			return
		}
		if r == '"' {
			break
		}
		if r == '\\' {
			if t.next() == 0 {
				t.emitError("unterminated string literal - EOF after escape")
				return
			}
		}
	}
	t.scanSuffix()
}

// scanRawString scans r"..." / r#"..."# after the 'r'
func (t *Tokenizer) scanRawString() {
	hashes := 0
	for t.peek() == '#' {
		t.next()
		hashes++
	}
	if t.next() != '"' {
		t.emitError("malformed raw string literal")
		return
	}
	closing := "\"" + strings.Repeat("#", hashes)
	end := strings.Index(t.input[t.pos:], closing)
	if end < 0 {
		t.emitError("unterminated raw string literal")
		return
	}
	target := t.pos + end + len(closing)
	for t.pos < target {
		t.next()
	}
	t.scanSuffix()
}

// scanQuote handles a lifetime or a character literal
func (t *Tokenizer) scanQuote() {
	first := t.peek()
	if first == '_' || unicode.IsLetter(first) {
		// a lifetime unless the identifier run is closed by a quote
		i := 1
		for {
			r := t.peekN(i)
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			i++
		}
		if t.peekN(i) != '\'' || i > 2 {
			t.emit(NewPunct('\'', Joint, t.startSpan))
			t.mark()
			t.scanIdentifier()
			return
		}
	}
	t.scanChar()
	t.emit(NewLiteral(t.text(), t.startSpan))
}

// scanChar scans the rest of a character literal after the opening quote
func (t *Tokenizer) scanChar() {
	const maxCharLength = 12
	count := 0
	for {
		r := t.next()
		count++
		if count > maxCharLength {
			t.emitError("character literal too long")
			return
		}
		if r == 0 || r == '\n' {
			t.emitError("unterminated character literal")
			return
		}
		if r == '\'' {
			break
		}
		if r == '\\' {
			if t.next() == 0 {
				t.emitError("unterminated character literal - EOF after escape")
				return
			}
		}
	}
	t.scanSuffix()
}

// scanIdentifier scans an identifier, raw identifier or prefixed literal
func (t *Tokenizer) scanIdentifier() {
	for {
		r := t.peek()
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		t.next()
	}

	word := t.text()
	next := t.peek()
	switch {
	case word == "r" && next == '#' && (t.peekN(2) == '_' || unicode.IsLetter(t.peekN(2))):
		t.next()
		t.scanIdentifier()
		return
	case (word == "r" || word == "br" || word == "cr") && (next == '"' || next == '#'):
		t.scanRawString()
		t.emit(NewLiteral(t.text(), t.startSpan))
		return
	case (word == "b" || word == "c") && next == '"':
		t.next()
		t.scanString()
		t.emit(NewLiteral(t.text(), t.startSpan))
		return
	case word == "b" && next == '\'':
		t.next()
		t.scanChar()
		t.emit(NewLiteral(t.text(), t.startSpan))
		return
	}
	t.emit(NewIdent(word, t.startSpan))
}

// scanNumber scans a numeric literal including its suffix
func (t *Tokenizer) scanNumber() {
	for {
		r := t.peek()
		switch {
		case r == '_' || unicode.IsDigit(r) || unicode.IsLetter(r):
			t.next()
			if (r == 'e' || r == 'E') && (t.peek() == '+' || t.peek() == '-') &&
				!strings.HasPrefix(strings.ToLower(t.text()), "0x") {
				t.next()
			}
		case r == '.' && unicode.IsDigit(t.peekN(2)):
			t.next()
		default:
			t.emit(NewLiteral(t.text(), t.startSpan))
			return
		}
	}
}

// scanSuffix consumes a literal suffix such as u8 or f32
func (t *Tokenizer) scanSuffix() {
	for {
		r := t.peek()
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return
		}
		t.next()
	}
}
