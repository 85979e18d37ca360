package ast

import (
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/token"
)

func punct(ch rune, span token.Span) token.TokenTree {
	return token.NewPunct(ch, token.Alone, span)
}

func ident(name string, span token.Span) token.TokenTree {
	return token.NewIdent(name, span)
}

func appendOp(dst []token.TokenTree, op string, span token.Span) []token.TokenTree {
	return append(dst, token.Op(op, span)...)
}

// AppendTo appends `#[...]`
func (a Attribute) AppendTo(dst []token.TokenTree) []token.TokenTree {
	dst = append(dst, punct('#', a.Span))
	return append(dst, token.NewGroup(token.Bracket, a.Tokens, a.Span))
}

// AppendTo appends `#![...]`
func (a InnerAttribute) AppendTo(dst []token.TokenTree) []token.TokenTree {
	dst = appendOp(dst, "#!", a.Span)
	return append(dst, token.NewGroup(token.Bracket, a.Tokens, a.Span))
}

func appendAttrs(dst []token.TokenTree, attrs []Attribute) []token.TokenTree {
	for _, attr := range attrs {
		dst = attr.AppendTo(dst)
	}
	return dst
}

// AppendTo appends `pub` and its restriction
func (v *Visibility) AppendTo(dst []token.TokenTree) []token.TokenTree {
	if v == nil {
		return dst
	}
	dst = append(dst, ident("pub", v.Span))
	if v.Restriction != nil {
		dst = append(dst, *v.Restriction)
	}
	return dst
}

// AppendTo appends `'name`
func (l Lifetime) AppendTo(dst []token.TokenTree) []token.TokenTree {
	return append(dst, token.NewPunct('\'', token.Joint, l.Span), ident(l.Ident, l.Span))
}

// AppendTo appends `extern "abi"`
func (e *ExternAbi) AppendTo(dst []token.TokenTree) []token.TokenTree {
	if e == nil {
		return dst
	}
	dst = append(dst, ident("extern", e.Span))
	if e.Abi != nil {
		dst = append(dst, *e.Abi)
	}
	return dst
}

// AppendTo appends the path with its generic arguments
func (p Path) AppendTo(dst []token.TokenTree) []token.TokenTree {
	for i, seg := range p.Segs {
		if i > 0 || p.Leading {
			dst = appendOp(dst, "::", seg.Ident.Span)
		}
		dst = append(dst, seg.Ident)
		if seg.Args != nil {
			if seg.Turbofish {
				dst = appendOp(dst, "::", seg.Args.Span)
			}
			dst = seg.Args.AppendTo(dst)
		}
	}
	return dst
}

// AppendTo appends a lifetime or a type
func (g GenericArg) AppendTo(dst []token.TokenTree) []token.TokenTree {
	if g.Lifetime != nil {
		return g.Lifetime.AppendTo(dst)
	}
	return g.Type.AppendTo(dst)
}

// AppendTo appends `<args>`
func (g GenericArgs) AppendTo(dst []token.TokenTree) []token.TokenTree {
	dst = append(dst, punct('<', g.Span))
	for i, arg := range g.Args {
		if i > 0 {
			dst = append(dst, punct(',', g.Span))
		}
		dst = arg.AppendTo(dst)
	}
	return append(dst, punct('>', g.Span))
}

// AppendTo appends the generic parameters as written
func (g *Generics) AppendTo(dst []token.TokenTree) []token.TokenTree {
	if g == nil {
		return dst
	}
	return append(dst, g.Tokens...)
}

// AppendTo appends `*const T`
func (t *PtrType) AppendTo(dst []token.TokenTree) []token.TokenTree {
	dst = append(dst, punct('*', t.Span), ident("const", t.Span))
	return t.Elem.AppendTo(dst)
}

// AppendTo appends `*mut T`
func (t *PtrMutType) AppendTo(dst []token.TokenTree) []token.TokenTree {
	dst = append(dst, punct('*', t.Span), ident("mut", t.Span))
	return t.Elem.AppendTo(dst)
}

// AppendTo appends `&'a T`
func (t *RefType) AppendTo(dst []token.TokenTree) []token.TokenTree {
	dst = append(dst, punct('&', t.Span))
	if t.Lifetime != nil {
		dst = t.Lifetime.AppendTo(dst)
	}
	return t.Elem.AppendTo(dst)
}

// AppendTo appends `&'a mut T`
func (t *RefMutType) AppendTo(dst []token.TokenTree) []token.TokenTree {
	dst = append(dst, punct('&', t.Span))
	if t.Lifetime != nil {
		dst = t.Lifetime.AppendTo(dst)
	}
	dst = append(dst, ident("mut", t.Span))
	return t.Elem.AppendTo(dst)
}

// AppendTo appends `(A, B)`; a single element keeps its trailing comma
func (t *TupleType) AppendTo(dst []token.TokenTree) []token.TokenTree {
	var inner []token.TokenTree
	for i, elem := range t.Elems {
		if i > 0 {
			inner = append(inner, punct(',', t.Span))
		}
		inner = elem.AppendTo(inner)
	}
	if len(t.Elems) == 1 {
		inner = append(inner, punct(',', t.Span))
	}
	return append(dst, token.NewGroup(token.Parenthesis, inner, t.Span))
}

// AppendTo appends `Self`
func (t *SelfType) AppendTo(dst []token.TokenTree) []token.TokenTree {
	return append(dst, ident("Self", t.Span))
}

// AppendTo appends the path
func (t *PathType) AppendTo(dst []token.TokenTree) []token.TokenTree {
	return t.Path.AppendTo(dst)
}

// AppendTo appends the type as written
func (t *OtherType) AppendTo(dst []token.TokenTree) []token.TokenTree {
	return append(dst, t.Tokens...)
}

// AppendTo appends the parameter; receivers use the `&'a mut self` shorthand
func (p FunctionParam) AppendTo(dst []token.TokenTree) []token.TokenTree {
	dst = appendAttrs(dst, p.Attrs)
	span := p.Ident.Span
	if p.IsSelf && !p.Explicit {
		switch t := p.Type.(type) {
		case *RefType:
			dst = append(dst, punct('&', t.Span))
			if t.Lifetime != nil {
				dst = t.Lifetime.AppendTo(dst)
			}
		case *RefMutType:
			dst = append(dst, punct('&', t.Span))
			if t.Lifetime != nil {
				dst = t.Lifetime.AppendTo(dst)
			}
			dst = append(dst, ident("mut", t.Span))
		default:
			if p.Mut {
				dst = append(dst, ident("mut", span))
			}
		}
		return append(dst, p.Ident)
	}
	if p.Mut {
		dst = append(dst, ident("mut", span))
	}
	dst = append(dst, p.Ident, punct(':', span))
	return p.Type.AppendTo(dst)
}

// AppendTo appends `(params)`
func (p FunctionParams) AppendTo(dst []token.TokenTree) []token.TokenTree {
	var inner []token.TokenTree
	for i, param := range p.Params {
		if i > 0 {
			inner = append(inner, punct(',', p.Span))
		}
		inner = param.AppendTo(inner)
	}
	return append(dst, token.NewGroup(token.Parenthesis, inner, p.Span))
}

// AppendTo appends `(args)`
func (a FunctionArgs) AppendTo(dst []token.TokenTree) []token.TokenTree {
	var inner []token.TokenTree
	for i, arg := range a.Args {
		if i > 0 {
			inner = append(inner, punct(',', a.Span))
		}
		inner = append(inner, arg...)
	}
	return append(dst, token.NewGroup(token.Parenthesis, inner, a.Span))
}

// AppendTo appends the signature without a body
func (s FunctionSignature) AppendTo(dst []token.TokenTree) []token.TokenTree {
	span := s.Ident.Span
	if s.Const {
		dst = append(dst, ident("const", span))
	}
	if s.Async {
		dst = append(dst, ident("async", span))
	}
	if s.Unsafe {
		dst = append(dst, ident("unsafe", span))
	}
	dst = s.Abi.AppendTo(dst)
	dst = append(dst, ident("fn", span), s.Ident)
	dst = s.Generics.AppendTo(dst)
	dst = s.Params.AppendTo(dst)
	if s.ReturnType != nil {
		dst = appendOp(dst, "->", span)
		dst = s.ReturnType.AppendTo(dst)
	}
	return append(dst, s.WhereClause...)
}

// AppendTo appends the function with its body or a trailing `;`
func (f *Function) AppendTo(dst []token.TokenTree) []token.TokenTree {
	dst = appendAttrs(dst, f.Attrs)
	dst = f.Vis.AppendTo(dst)
	dst = f.Sig.AppendTo(dst)
	if f.Body != nil {
		return append(dst, *f.Body)
	}
	return append(dst, punct(';', f.Sig.Ident.Span))
}

// AppendTo appends `const NAME: Type = value;`
func (c *ConstItem) AppendTo(dst []token.TokenTree) []token.TokenTree {
	span := c.Ident.Span
	dst = appendAttrs(dst, c.Attrs)
	dst = c.Vis.AppendTo(dst)
	dst = append(dst, ident("const", span), c.Ident, punct(':', span))
	dst = c.Type.AppendTo(dst)
	dst = append(dst, punct('=', span))
	dst = append(dst, c.Value...)
	return append(dst, punct(';', span))
}

// AppendTo appends `type Name = Type;`
func (t *TypeAlias) AppendTo(dst []token.TokenTree) []token.TokenTree {
	span := t.Ident.Span
	dst = appendAttrs(dst, t.Attrs)
	dst = t.Vis.AppendTo(dst)
	dst = append(dst, ident("type", span), t.Ident)
	dst = t.Generics.AppendTo(dst)
	dst = append(dst, punct('=', span))
	dst = t.Type.AppendTo(dst)
	return append(dst, punct(';', span))
}

// AppendTo appends the whole impl block
func (b *ImplBlock) AppendTo(dst []token.TokenTree) []token.TokenTree {
	dst = appendAttrs(dst, b.Attrs)
	if b.Unsafe {
		dst = append(dst, ident("unsafe", b.Span))
	}
	dst = append(dst, ident("impl", b.Span))
	dst = b.Generics.AppendTo(dst)
	if b.Trait != nil {
		dst = b.Trait.AppendTo(dst)
		dst = append(dst, ident("for", b.Span))
	}
	dst = b.SelfTy.AppendTo(dst)
	dst = append(dst, b.WhereClause...)
	var body []token.TokenTree
	for _, attr := range b.InnerAttrs {
		body = attr.AppendTo(body)
	}
	for _, item := range b.Items {
		body = item.AppendTo(body)
	}
	return append(dst, token.NewGroup(token.Brace, body, b.Span))
}
