// Package expand implements the token-to-token transformations built on the fragment parser
package expand

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/ast"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/parser"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/token"
)

// ReceiverName is the parameter name a receiver gets in a free function
const ReceiverName = "this"

// Options controls RetargetImpl
type Options struct {
	// Prefix is prepended to every generated function name
	Prefix string
	// SelfType replaces Self; the impl block's own type is used when nil
	SelfType ast.Type
	// Abi of the generated functions, "C" by default
	Abi string
}

// LowerError turns err into `::core::compile_error!("msg");` pointing at the error's span
func LowerError(err error) []token.TokenTree {
	var span token.Span
	msg := err.Error()
	var perr *parser.Error
	if errors.As(err, &perr) {
		msg = perr.Msg
		if perr.Span != nil {
			span = *perr.Span
		}
	}

	out := token.Op("::", span)
	out = append(out, token.NewIdent("core", span))
	out = append(out, token.Op("::", span)...)
	out = append(out,
		token.NewIdent("compile_error", span),
		token.NewPunct('!', token.Alone, span),
		token.NewGroup(token.Parenthesis, []token.TokenTree{
			token.NewLiteral(strconv.Quote(msg), span),
		}, span),
		token.NewPunct(';', token.Alone, span),
	)
	return out
}

// RetargetImpl turns every method of block into a free function forwarding to it.
// A receiver becomes an explicit parameter named `this` and Self is replaced by
// the concrete type.
func RetargetImpl(block *ast.ImplBlock, opts Options) ([]*ast.Function, error) {
	selfTy := opts.SelfType
	if selfTy == nil {
		selfTy = block.SelfTy
	}
	if _, isSelf := selfTy.(*ast.SelfType); isSelf {
		return nil, errors.New("can't retarget methods onto `Self`")
	}
	abi := opts.Abi
	if abi == "" {
		abi = "C"
	}

	var out []*ast.Function
	for _, method := range block.Functions() {
		if method.Sig.Async {
			return nil, errors.Errorf("can't export async function `%s`", method.Sig.Ident.Text)
		}
		out = append(out, retarget(method, selfTy, opts.Prefix, abi))
	}
	return out, nil
}

func retarget(method *ast.Function, selfTy ast.Type, prefix, abi string) *ast.Function {
	span := method.Sig.Ident.Span
	sig := method.Sig
	params := append([]ast.FunctionParam(nil), sig.Params.Params...)
	for i, param := range params {
		switch {
		case param.IsSelf:
			params[i] = ast.FunctionParam{
				Attrs: param.Attrs,
				Mut:   param.Mut,
				Ident: token.NewIdent(ReceiverName, param.Ident.Span),
				Type:  param.Type,
			}
		case param.Ident.IsIdent("_"):
			// the forwarding call needs a name for every argument
			params[i].Ident = token.NewIdent("arg"+strconv.Itoa(i), param.Ident.Span)
		}
	}
	sig.Params = ast.FunctionParams{Span: sig.Params.Span, Params: params}
	sig = sig.ReplaceSelf(selfTy)
	sig.Const = false
	sig.Abi = &ast.ExternAbi{Span: span, Abi: &token.TokenTree{
		Kind: token.KindLiteral, Text: strconv.Quote(abi), Span: span,
	}}
	sig.Ident = token.NewIdent(prefix+method.Sig.Ident.Text, span)

	// <SelfTy>::name(args)
	var call []token.TokenTree
	call = append(call, token.NewPunct('<', token.Alone, span))
	call = selfTy.AppendTo(call)
	call = append(call, token.NewPunct('>', token.Alone, span))
	call = append(call, token.Op("::", span)...)
	call = append(call, method.Sig.Ident)
	call = sig.Params.Args().AppendTo(call)

	body := token.NewGroup(token.Brace, call, span)
	return &ast.Function{
		Attrs: method.Attrs,
		Vis:   &ast.Visibility{Span: span},
		Sig:   sig,
		Body:  &body,
	}
}

// ExpandImpl parses tokens as an impl block and returns the block followed by
// its free-function forms. Failures are lowered to a compile error.
func ExpandImpl(tokens []token.TokenTree, opts Options) []token.TokenTree {
	block, err := parser.ParseTokens(parser.ImplBlock, tokens)
	if err != nil {
		return LowerError(err)
	}
	funcs, err := RetargetImpl(block, opts)
	if err != nil {
		return LowerError(errors.Wrap(err, "retargeting impl block"))
	}
	out := block.AppendTo(nil)
	for _, f := range funcs {
		out = f.AppendTo(out)
	}
	return out
}
