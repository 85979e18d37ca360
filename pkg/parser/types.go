package parser

import (
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/ast"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/token"
)

var (
	Type        = typeFrag()
	Path        = pathFrag()
	Lifetime    = lifetimeFrag()
	GenericArg  = genericArgFrag()
	GenericArgs = genericArgsFrag()
	Generics    = genericsFrag()
)

// The parse functions refer to each other through these constructors rather
// than the package variables, which would form an initialization cycle.

func typeFrag() Fragment[ast.Type]               { return fragment("type", tryParseType) }
func pathFrag() Fragment[ast.Path]               { return fragment("path", tryParsePath) }
func lifetimeFrag() Fragment[ast.Lifetime]       { return fragment("lifetime", tryParseLifetime) }
func genericArgFrag() Fragment[ast.GenericArg]   { return fragment("generic argument", tryParseGenericArg) }
func genericArgsFrag() Fragment[ast.GenericArgs] { return fragment("generic arguments", tryParseGenericArgs) }
func genericsFrag() Fragment[ast.Generics]       { return fragment("generics", tryParseGenerics) }

func parseType(c *Cursor) (ast.Type, error) {
	return typeFrag().Parse(c)
}

// typeStop ends an opaque type run
func typeStop(tt token.TokenTree, progress int) bool {
	switch {
	case tt.IsGroup(token.Brace):
		return true
	case tt.Kind == token.KindPunct:
		return tt.Char == ',' || tt.Char == ';' || tt.Char == '='
	case tt.IsIdent("where"):
		return true
	case tt.IsIdent("for"):
		// `for<'a> fn(&'a T)` starts with `for`; `impl A for B` has it in the middle
		return progress > 0
	}
	return false
}

func tryParseType(c *Cursor) (ast.Type, bool, error) {
	tt, ok := c.Peek()
	if !ok {
		return nil, false, nil
	}

	switch {
	case tt.IsGroup(token.Parenthesis):
		c.Next()
		t, err := parseTupleType(tt)
		if err != nil {
			return nil, false, err
		}
		return t, true, nil

	case tt.IsIdent("Self") && !c.checkPunct(1, ':'):
		c.Next()
		return &ast.SelfType{Span: tt.Span}, true, nil

	case tt.IsPunct('*'):
		c.Next()
		switch {
		case c.checkIdent(0, "const"):
			c.Next()
			elem, err := parseType(c)
			if err != nil {
				return nil, false, err
			}
			return &ast.PtrType{Span: tt.Span, Elem: elem}, true, nil
		case c.checkIdent(0, "mut"):
			c.Next()
			elem, err := parseType(c)
			if err != nil {
				return nil, false, err
			}
			return &ast.PtrMutType{Span: tt.Span, Elem: elem}, true, nil
		default:
			return nil, false, expected(c, "`const` or `mut`")
		}

	case tt.IsPunct('&'):
		c.Next()
		lifetime, hasLifetime, err := lifetimeFrag().TryParse(c)
		if err != nil {
			return nil, false, err
		}
		var lt *ast.Lifetime
		if hasLifetime {
			lt = &lifetime
		}
		_, isMut := TryParseKeyword(c, "mut")
		elem, err := parseType(c)
		if err != nil {
			return nil, false, err
		}
		if isMut {
			return &ast.RefMutType{Span: tt.Span, Lifetime: lt, Elem: elem}, true, nil
		}
		return &ast.RefType{Span: tt.Span, Lifetime: lt, Elem: elem}, true, nil
	}

	run, err := ReadBalancedAngleBrackets(c, typeStop)
	if err != nil {
		return nil, false, err
	}
	if len(run) == 0 {
		return nil, false, nil
	}
	if path, ok, err := pathFrag().TryParseAll(NewCursor(run)); err == nil && ok {
		return &ast.PathType{Path: path}, true, nil
	}
	return &ast.OtherType{Tokens: run}, true, nil
}

// parseTupleType parses a parenthesized type; `(T)` is T, `(T,)` is a tuple
func parseTupleType(group token.TokenTree) (ast.Type, error) {
	c := NewCursor(group.Stream)
	var elems []ast.Type
	trailingComma := false
	for !c.IsEmpty() {
		elem, err := parseType(c)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		trailingComma = false
		if c.IsEmpty() {
			break
		}
		if _, err := ParseOp(c, ","); err != nil {
			return nil, err
		}
		trailingComma = true
	}
	if len(elems) == 1 && !trailingComma {
		return elems[0], nil
	}
	return &ast.TupleType{Span: group.Span, Elems: elems}, nil
}

func tryParseLifetime(c *Cursor) (ast.Lifetime, bool, error) {
	tt, ok := c.Peek()
	if !ok || !tt.IsPunct('\'') {
		return ast.Lifetime{}, false, nil
	}
	c.Next()
	name, err := ParseIdent(c, "lifetime name")
	if err != nil {
		return ast.Lifetime{}, false, err
	}
	return ast.Lifetime{Span: tt.Span, Ident: name.Text}, true, nil
}

func tryParsePath(c *Cursor) (ast.Path, bool, error) {
	var path ast.Path
	_, path.Leading = TryParseOp(c, "::")

	first, ok := TryParseIdent(c)
	if !ok {
		if path.Leading {
			return path, false, expected(c, "identifier after `::`")
		}
		return path, false, nil
	}

	seg := ast.PathSeg{Ident: first}
	for {
		if c.checkPunct(0, '<') {
			args, err := genericArgsFrag().Parse(c)
			if err != nil {
				return path, false, err
			}
			seg.Args = &args
		}
		if _, ok := TryParseOp(c, "::"); !ok {
			break
		}
		if seg.Args == nil && c.checkPunct(0, '<') {
			args, err := genericArgsFrag().Parse(c)
			if err != nil {
				return path, false, err
			}
			seg.Args = &args
			seg.Turbofish = true
			if _, ok := TryParseOp(c, "::"); !ok {
				break
			}
		}
		path.Segs = append(path.Segs, seg)
		ident, err := ParseIdent(c, "identifier after `::`")
		if err != nil {
			return path, false, err
		}
		seg = ast.PathSeg{Ident: ident}
	}
	path.Segs = append(path.Segs, seg)
	return path, true, nil
}

func tryParseGenericArg(c *Cursor) (ast.GenericArg, bool, error) {
	lifetime, ok, err := lifetimeFrag().TryParse(c)
	if err != nil {
		return ast.GenericArg{}, false, err
	}
	if ok {
		return ast.GenericArg{Lifetime: &lifetime}, true, nil
	}
	t, ok, err := typeFrag().TryParse(c)
	if err != nil || !ok {
		return ast.GenericArg{}, false, err
	}
	return ast.GenericArg{Type: t}, true, nil
}

func tryParseGenericArgs(c *Cursor) (ast.GenericArgs, bool, error) {
	open, ok := c.Peek()
	if !ok || !open.IsPunct('<') {
		return ast.GenericArgs{}, false, nil
	}
	c.Next()
	args := ast.GenericArgs{Span: open.Span}
	for {
		if _, ok := TryParseOp(c, ">"); ok {
			return args, true, nil
		}
		if c.IsEmpty() {
			return args, false, errorAt(spanOf(open), "unterminated `<`")
		}
		arg, err := genericArgFrag().Parse(c)
		if err != nil {
			return args, false, err
		}
		args.Args = append(args.Args, arg)
		if _, ok := TryParseOp(c, ","); !ok {
			if _, err := ParseOp(c, ">"); err != nil {
				if c.IsEmpty() {
					return args, false, errorAt(spanOf(open), "unterminated `<`")
				}
				return args, false, err
			}
			return args, true, nil
		}
	}
}

// tryParseGenerics reads a declaration parameter list `<...>` as written
func tryParseGenerics(c *Cursor) (ast.Generics, bool, error) {
	if !c.checkPunct(0, '<') {
		return ast.Generics{}, false, nil
	}
	run, err := ReadBalancedAngleBrackets(c, func(_ token.TokenTree, progress int) bool {
		return progress > 0
	})
	if err != nil {
		return ast.Generics{}, false, err
	}
	return ast.Generics{Tokens: run}, true, nil
}
