package ast

import (
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/token"
)

// Type is a parsed type
type Type interface {
	token.ToTokenTrees
	typeNode()
}

// PtrType is `*const T`
type PtrType struct {
	Span token.Span
	Elem Type
}

// PtrMutType is `*mut T`
type PtrMutType struct {
	Span token.Span
	Elem Type
}

// RefType is `&'a T`
type RefType struct {
	Span     token.Span
	Lifetime *Lifetime
	Elem     Type
}

// RefMutType is `&'a mut T`
type RefMutType struct {
	Span     token.Span
	Lifetime *Lifetime
	Elem     Type
}

// TupleType is `(A, B)`; no elements is the unit type
type TupleType struct {
	Span  token.Span
	Elems []Type
}

// SelfType is the `Self` placeholder
type SelfType struct {
	Span token.Span
}

// PathType is a type named by a path
type PathType struct {
	Path Path
}

// OtherType is any other type syntax, kept as written
type OtherType struct {
	Tokens []token.TokenTree
}

func (*PtrType) typeNode()    {}
func (*PtrMutType) typeNode() {}
func (*RefType) typeNode()    {}
func (*RefMutType) typeNode() {}
func (*TupleType) typeNode()  {}
func (*SelfType) typeNode()   {}
func (*PathType) typeNode()   {}
func (*OtherType) typeNode()  {}

// Unit returns the `()` type
func Unit() *TupleType {
	return &TupleType{}
}

// IsUnit reports whether t is the unit type
func IsUnit(t Type) bool {
	tuple, ok := t.(*TupleType)
	return ok && len(tuple.Elems) == 0
}

// NamedType returns a path type for a single identifier
func NamedType(name string) *PathType {
	return &PathType{Path: Path{Segs: []PathSeg{{Ident: token.Ident(name)}}}}
}

// ReplaceSelf returns t with every Self placeholder replaced by with
func ReplaceSelf(t Type, with Type) Type {
	switch t := t.(type) {
	case nil:
		return nil
	case *SelfType:
		return with
	case *PtrType:
		return &PtrType{Span: t.Span, Elem: ReplaceSelf(t.Elem, with)}
	case *PtrMutType:
		return &PtrMutType{Span: t.Span, Elem: ReplaceSelf(t.Elem, with)}
	case *RefType:
		return &RefType{Span: t.Span, Lifetime: t.Lifetime, Elem: ReplaceSelf(t.Elem, with)}
	case *RefMutType:
		return &RefMutType{Span: t.Span, Lifetime: t.Lifetime, Elem: ReplaceSelf(t.Elem, with)}
	case *TupleType:
		elems := make([]Type, len(t.Elems))
		for i, elem := range t.Elems {
			elems[i] = ReplaceSelf(elem, with)
		}
		return &TupleType{Span: t.Span, Elems: elems}
	case *PathType:
		return &PathType{Path: t.Path.ReplaceSelf(with)}
	default:
		return t
	}
}

// ReplaceSelf replaces Self inside the generic arguments of every segment
func (p Path) ReplaceSelf(with Type) Path {
	segs := make([]PathSeg, len(p.Segs))
	for i, seg := range p.Segs {
		segs[i] = seg
		if seg.Args != nil {
			args := seg.Args.ReplaceSelf(with)
			segs[i].Args = &args
		}
	}
	return Path{Leading: p.Leading, Segs: segs}
}

// ReplaceSelf replaces Self inside every type argument
func (g GenericArgs) ReplaceSelf(with Type) GenericArgs {
	args := make([]GenericArg, len(g.Args))
	for i, arg := range g.Args {
		args[i] = arg
		if arg.Type != nil {
			args[i].Type = ReplaceSelf(arg.Type, with)
		}
	}
	return GenericArgs{Span: g.Span, Args: args}
}

// ReplaceSelf replaces Self in every parameter and the return type
func (s FunctionSignature) ReplaceSelf(with Type) FunctionSignature {
	params := make([]FunctionParam, len(s.Params.Params))
	for i, param := range s.Params.Params {
		params[i] = param
		params[i].Type = ReplaceSelf(param.Type, with)
	}
	s.Params = FunctionParams{Span: s.Params.Span, Params: params}
	s.ReturnType = ReplaceSelf(s.ReturnType, with)
	return s
}
