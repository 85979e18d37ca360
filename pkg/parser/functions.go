package parser

import (
	"strconv"
	"strings"

	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/ast"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/token"
)

var (
	ExternAbi         = externAbiFrag()
	FunctionParam     = functionParamFrag()
	FunctionParams    = functionParamsFrag()
	FunctionArgs      = functionArgsFrag()
	FunctionSignature = functionSignatureFrag()
	Function          = functionFrag()
)

func externAbiFrag() Fragment[ast.ExternAbi] { return fragment("extern ABI", tryParseExternAbi) }
func functionParamFrag() Fragment[ast.FunctionParam] {
	return fragment("function parameter", tryParseFunctionParam)
}
func functionParamsFrag() Fragment[ast.FunctionParams] {
	return fragment("function parameters", tryParseFunctionParams)
}
func functionArgsFrag() Fragment[ast.FunctionArgs] {
	return fragment("function arguments", tryParseFunctionArgs)
}
func functionSignatureFrag() Fragment[ast.FunctionSignature] {
	return fragment("function signature", tryParseFunctionSignature)
}
func functionFrag() Fragment[*ast.Function] { return fragment("function", tryParseFunction) }

func tryParseExternAbi(c *Cursor) (ast.ExternAbi, bool, error) {
	kw, ok := TryParseKeyword(c, "extern")
	if !ok {
		return ast.ExternAbi{}, false, nil
	}
	abi := ast.ExternAbi{Span: kw.Span}
	tt, ok := c.Peek()
	if ok && tt.Kind == token.KindLiteral {
		if !validAbiLiteral(tt.Text) {
			return abi, false, errorAt(spanOf(tt), "malformed extern ABI string literal")
		}
		c.Next()
		abi.Abi = &tt
	}
	return abi, true, nil
}

func validAbiLiteral(text string) bool {
	if strings.HasPrefix(text, "r") {
		trimmed := strings.Trim(text[1:], "#")
		return len(trimmed) >= 2 && strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`)
	}
	if !strings.HasPrefix(text, `"`) {
		return false
	}
	_, err := strconv.Unquote(text)
	return err == nil
}

// tryParseFunctionParam parses `name: Type` or one of the receiver forms
// `self`, `mut self`, `self: Type`, `&self`, `&'a self`, `&mut self`, `&'a mut self`
func tryParseFunctionParam(c *Cursor) (ast.FunctionParam, bool, error) {
	attrs, _, err := Many(attributeFrag()).TryParse(c)
	if err != nil {
		return ast.FunctionParam{}, false, err
	}
	param := ast.FunctionParam{Attrs: attrs}

	if amp, ok := c.Peek(); ok && amp.IsPunct('&') {
		c.Next()
		lifetime, hasLifetime, err := lifetimeFrag().TryParse(c)
		if err != nil {
			return param, false, err
		}
		var lt *ast.Lifetime
		if hasLifetime {
			lt = &lifetime
		}
		if _, isMut := TryParseKeyword(c, "mut"); isMut {
			self, ok := TryParseKeyword(c, "self")
			if !ok {
				return param, false, expected(c, "`self` after `mut`")
			}
			param.Ident, param.IsSelf = self, true
			param.Type = &ast.RefMutType{Span: amp.Span, Lifetime: lt, Elem: &ast.SelfType{Span: self.Span}}
			return param, true, nil
		}
		self, ok := TryParseKeyword(c, "self")
		if !ok {
			return param, false, expected(c, "`self` after `&`")
		}
		param.Ident, param.IsSelf = self, true
		param.Type = &ast.RefType{Span: amp.Span, Lifetime: lt, Elem: &ast.SelfType{Span: self.Span}}
		return param, true, nil
	}

	if c.checkIdent(0, "mut") && c.checkIdent(1, "self") {
		c.Next()
		param.Mut = true
	}
	if self, ok := TryParseKeyword(c, "self"); ok {
		param.Ident, param.IsSelf = self, true
		if _, ok := TryParseOp(c, ":"); ok {
			t, err := parseType(c)
			if err != nil {
				return param, false, err
			}
			param.Type, param.Explicit = t, true
			return param, true, nil
		}
		param.Type = &ast.SelfType{Span: self.Span}
		return param, true, nil
	}

	_, param.Mut = TryParseKeyword(c, "mut")
	name, ok := TryParseIdent(c)
	if !ok {
		if param.Mut || len(attrs) > 0 {
			return param, false, expected(c, "parameter name")
		}
		return param, false, nil
	}
	param.Ident = name
	if _, err := ParseOp(c, ":"); err != nil {
		return param, false, err
	}
	t, err := parseType(c)
	if err != nil {
		return param, false, err
	}
	param.Type = t
	return param, true, nil
}

func tryParseFunctionParams(c *Cursor) (ast.FunctionParams, bool, error) {
	group, ok := TryParseGroup(c, token.Parenthesis)
	if !ok {
		return ast.FunctionParams{}, false, nil
	}
	params := ast.FunctionParams{Span: group.Span}
	inner := NewCursor(group.Stream)
	for !inner.IsEmpty() {
		param, err := functionParamFrag().Parse(inner)
		if err != nil {
			return params, false, err
		}
		params.Params = append(params.Params, param)
		if inner.IsEmpty() {
			break
		}
		if _, err := ParseOp(inner, ","); err != nil {
			return params, false, err
		}
	}
	return params, true, nil
}

// tryParseFunctionArgs splits a parenthesized group at top-level commas
func tryParseFunctionArgs(c *Cursor) (ast.FunctionArgs, bool, error) {
	group, ok := TryParseGroup(c, token.Parenthesis)
	if !ok {
		return ast.FunctionArgs{}, false, nil
	}
	args := ast.FunctionArgs{Span: group.Span}
	var current []token.TokenTree
	for _, tt := range group.Stream {
		if tt.IsPunct(',') {
			if len(current) == 0 {
				return args, false, errorAt(spanOf(tt), "expected argument before `,`")
			}
			args.Args = append(args.Args, current)
			current = nil
			continue
		}
		current = append(current, tt)
	}
	if len(current) > 0 {
		args.Args = append(args.Args, current)
	}
	return args, true, nil
}

func tryParseFunctionSignature(c *Cursor) (ast.FunctionSignature, bool, error) {
	var sig ast.FunctionSignature
	// `const NAME` is a const item, so only commit once `fn` is seen
	_, sig.Const = TryParseKeyword(c, "const")
	_, sig.Async = TryParseKeyword(c, "async")
	_, sig.Unsafe = TryParseKeyword(c, "unsafe")
	if c.checkIdent(0, "extern") {
		abi, _, err := externAbiFrag().TryParse(c)
		if err != nil {
			return sig, false, err
		}
		sig.Abi = &abi
	}
	if _, ok := TryParseKeyword(c, "fn"); !ok {
		return sig, false, nil
	}

	name, err := ParseIdent(c, "function name")
	if err != nil {
		return sig, false, err
	}
	sig.Ident = name

	generics, ok, err := genericsFrag().TryParse(c)
	if err != nil {
		return sig, false, err
	}
	if ok {
		sig.Generics = &generics
	}

	sig.Params, err = functionParamsFrag().Parse(c)
	if err != nil {
		return sig, false, err
	}

	if _, ok := TryParseOp(c, "->"); ok {
		sig.ReturnType, err = parseType(c)
		if err != nil {
			return sig, false, err
		}
	}

	if c.checkIdent(0, "where") {
		for {
			tt, ok := c.Peek()
			if !ok || tt.IsGroup(token.Brace) || tt.IsPunct(';') {
				break
			}
			c.Next()
			sig.WhereClause = append(sig.WhereClause, tt)
		}
	}
	return sig, true, nil
}

func tryParseFunction(c *Cursor) (*ast.Function, bool, error) {
	attrs, _, err := Many(attributeFrag()).TryParse(c)
	if err != nil {
		return nil, false, err
	}
	vis, hasVis, err := visibilityFrag().TryParse(c)
	if err != nil {
		return nil, false, err
	}
	sig, ok, err := functionSignatureFrag().TryParse(c)
	if err != nil || !ok {
		return nil, false, err
	}

	f := &ast.Function{Attrs: attrs, Sig: sig}
	if hasVis {
		f.Vis = &vis
	}
	if body, ok := TryParseGroup(c, token.Brace); ok {
		f.Body = &body
		return f, true, nil
	}
	if _, ok := TryParseOp(c, ";"); ok {
		return f, true, nil
	}
	return nil, false, expected(c, "`{` or `;`")
}
