// Package ast defines the syntactic fragments recognized by the parser.
//
// Every node can be turned back into token trees with AppendTo; the output
// re-parses to an equal node.
package ast

import (
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/token"
)

// Attribute is an outer attribute, `#[...]`
type Attribute struct {
	Span   token.Span
	Tokens []token.TokenTree // contents of the brackets
}

// InnerAttribute is an inner attribute, `#![...]`
type InnerAttribute struct {
	Span   token.Span
	Tokens []token.TokenTree
}

// Visibility is `pub` with an optional restriction such as `(crate)`
type Visibility struct {
	Span        token.Span
	Restriction *token.TokenTree // parenthesized group, if any
}

// Lifetime is `'name`
type Lifetime struct {
	Span  token.Span
	Ident string
}

// ExternAbi is `extern` with an optional ABI string
type ExternAbi struct {
	Span token.Span
	Abi  *token.TokenTree // string literal as written
}

// PathSeg is one `::`-separated segment of a path
type PathSeg struct {
	Ident token.TokenTree
	// Turbofish is set when the generic args were written as `::<...>`
	Turbofish bool
	Args      *GenericArgs
}

// Path is a possibly global `a::b<T>::c` path
type Path struct {
	Leading bool
	Segs    []PathSeg
}

// IsIdent reports whether the path is the single plain identifier name
func (p Path) IsIdent(name string) bool {
	return !p.Leading && len(p.Segs) == 1 && p.Segs[0].Args == nil && p.Segs[0].Ident.IsIdent(name)
}

// GenericArg is either a lifetime or a type
type GenericArg struct {
	Lifetime *Lifetime
	Type     Type
}

// GenericArgs is `<arg, ...>` as used in paths
type GenericArgs struct {
	Span token.Span
	Args []GenericArg
}

// Generics is a declaration generic parameter list, kept as written
type Generics struct {
	Tokens []token.TokenTree // including the outer `<` and `>`
}

// FunctionParam is one parameter of a function signature
type FunctionParam struct {
	Attrs []Attribute
	Mut   bool
	// Ident is the parameter name; `self` for receivers and `_` for ignored params
	Ident token.TokenTree
	Type  Type
	// IsSelf marks a receiver; Explicit is set for `self: Type` receivers
	IsSelf   bool
	Explicit bool
}

// FunctionParams is the parenthesized parameter list of a signature
type FunctionParams struct {
	Span   token.Span
	Params []FunctionParam
}

// FunctionArgs is a parenthesized argument list of a call
type FunctionArgs struct {
	Span token.Span
	Args [][]token.TokenTree
}

// FunctionSignature is everything of a function declaration up to the body
type FunctionSignature struct {
	Const    bool
	Async    bool
	Unsafe   bool
	Abi      *ExternAbi
	Ident    token.TokenTree
	Generics *Generics
	Params   FunctionParams
	// ReturnType is nil when no return type was written
	ReturnType  Type
	WhereClause []token.TokenTree // including the `where` keyword
}

// Function is a function item with an optional body
type Function struct {
	Attrs []Attribute
	Vis   *Visibility
	Sig   FunctionSignature
	// Body is the brace group; nil when the declaration ends with `;`
	Body *token.TokenTree
}

// ConstItem is `const NAME: Type = expr;`
type ConstItem struct {
	Attrs []Attribute
	Vis   *Visibility
	Ident token.TokenTree
	Type  Type
	Value []token.TokenTree
}

// TypeAlias is `type Name<...> = Type;`
type TypeAlias struct {
	Attrs    []Attribute
	Vis      *Visibility
	Ident    token.TokenTree
	Generics *Generics
	Type     Type
}

// Item is one of the supported items
type Item interface {
	token.ToTokenTrees
	itemNode()
}

func (*ConstItem) itemNode() {}
func (*Function) itemNode()  {}
func (*TypeAlias) itemNode() {}

// ImplBlock is `impl<...> [Trait for] Type [where ...] { items }`
type ImplBlock struct {
	Attrs       []Attribute
	Unsafe      bool
	Generics    *Generics
	Trait       *Path
	SelfTy      Type
	WhereClause []token.TokenTree // including the `where` keyword
	InnerAttrs  []InnerAttribute
	Items       []Item
	Span        token.Span
}

// Functions returns the function items of the block
func (b *ImplBlock) Functions() []*Function {
	var out []*Function
	for _, item := range b.Items {
		if f, ok := item.(*Function); ok {
			out = append(out, f)
		}
	}
	return out
}

// Receiver returns the self parameter of the function, if it has one
func (f *Function) Receiver() *FunctionParam {
	if len(f.Sig.Params.Params) > 0 && f.Sig.Params.Params[0].IsSelf {
		return &f.Sig.Params.Params[0]
	}
	return nil
}

// Args builds the argument list forwarding every parameter by name
func (p FunctionParams) Args() FunctionArgs {
	args := FunctionArgs{Span: p.Span}
	for _, param := range p.Params {
		args.Args = append(args.Args, []token.TokenTree{param.Ident})
	}
	return args
}
