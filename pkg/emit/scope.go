package emit

import (
	"slices"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/pkg/errors"
)

// SymKind classifies a general symbol
type SymKind int

const (
	SymOther SymKind = iota
	SymStructAlias
	SymUnionAlias
)

// Sym is a Rust-level symbol. The type fields hold rendered Rust types and
// are empty when they don't apply.
type Sym struct {
	Ident      string
	Module     string
	Kind       SymKind
	AliasTy    string
	ValueTy    string
	EnumBaseTy string
}

// EmitStatus tracks whether a struct or union has been written
type EmitStatus int

const (
	NotEmitted EmitStatus = iota
	Requested
	Emitted
)

func (s EmitStatus) String() string {
	switch s {
	case NotEmitted:
		return "not emitted"
	case Requested:
		return "requested"
	case Emitted:
		return "emitted"
	default:
		return "unknown"
	}
}

// StructField is one field of a struct or union layout
type StructField struct {
	Ident string
	Ty    string
	Doc   string
}

// StructLayout is a known field layout
type StructLayout struct {
	Fields []StructField
}

// Equal reports whether both layouts declare the same fields in the same order
func (l *StructLayout) Equal(other *StructLayout) bool {
	if l == nil || other == nil {
		return l == other
	}
	return slices.Equal(l.Fields, other.Fields)
}

// StructSym describes a struct or union. A nil Layout means the fields were
// never seen.
type StructSym struct {
	Ident        string
	Module       string
	Doc          string
	Layout       *StructLayout
	EmitStatus   EmitStatus
	CanCopy      bool
	CanConstruct bool
	// Public makes a struct with a known layout `pub`. Opaque placeholders
	// are always `pub`.
	Public  bool
	IsUnion bool
}

// Advance moves the emit status forward; it never moves back
func (s *StructSym) Advance(status EmitStatus) {
	if status > s.EmitStatus {
		s.EmitStatus = status
	}
}

// merge folds a re-registration of the same struct into s
func (s *StructSym) merge(other *StructSym) error {
	if s.Public != other.Public {
		return errors.Wrapf(ErrInconsistentVisibility, "`%s`", s.Ident)
	}
	if s.CanCopy != other.CanCopy {
		return errors.Wrapf(ErrConflictingCanCopy, "`%s`", s.Ident)
	}
	if other.Doc != "" {
		if s.Doc != "" && s.Doc != other.Doc {
			return errors.Wrapf(ErrDocsAlreadyDefined, "`%s`", s.Ident)
		}
		s.Doc = other.Doc
	}
	if other.Layout != nil {
		if s.Layout == nil {
			s.Layout = other.Layout
		} else if !s.Layout.Equal(other.Layout) {
			return errors.Wrapf(ErrFieldsAlreadyDefined, "`%s`", s.Ident)
		}
	}
	s.CanConstruct = s.CanConstruct || other.CanConstruct
	s.Advance(other.EmitStatus)
	return nil
}

// Scope is one level of Rust-level symbol scoping
type Scope struct {
	parent     *Scope
	syms       *treemap.Map // string -> *Sym
	enumSyms   *treeset.Set // string
	structSyms *treemap.Map // string -> *StructSym
	unionSyms  *treemap.Map // string -> *StructSym
}

// NewScope creates a scope inside parent; parent may be nil
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:     parent,
		syms:       treemap.NewWith(utils.StringComparator),
		enumSyms:   treeset.NewWith(utils.StringComparator),
		structSyms: treemap.NewWith(utils.StringComparator),
		unionSyms:  treemap.NewWith(utils.StringComparator),
	}
}

// Parent returns the enclosing scope
func (s *Scope) Parent() *Scope {
	return s.parent
}

// RegisterSym adds sym to this scope. Registering the same symbol twice from
// the same module is allowed; anything else visible under the name is a conflict.
func (s *Scope) RegisterSym(sym Sym) error {
	if existing, ok := s.LookupSym(sym.Ident); ok {
		if *existing == sym {
			return nil
		}
		if existing.Module != sym.Module {
			return errors.Wrapf(ErrSymbolAlreadyDefined, "`%s` (defined in module `%s`)", sym.Ident, existing.Module)
		}
		return errors.Wrapf(ErrSymbolAlreadyDefined, "`%s`", sym.Ident)
	}
	s.syms.Put(sym.Ident, &sym)
	return nil
}

// LookupSym finds ident in this scope or its parents
func (s *Scope) LookupSym(ident string) (*Sym, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if v, ok := scope.syms.Get(ident); ok {
			return v.(*Sym), true
		}
	}
	return nil, false
}

// RegisterEnumSym records ident as an enum type
func (s *Scope) RegisterEnumSym(ident string) error {
	if s.enumSyms.Contains(ident) {
		return errors.Wrapf(ErrEnumAlreadyDefined, "`%s`", ident)
	}
	s.enumSyms.Add(ident)
	return nil
}

// IsEnum reports whether ident is a known enum type
func (s *Scope) IsEnum(ident string) bool {
	for scope := s; scope != nil; scope = scope.parent {
		if scope.enumSyms.Contains(ident) {
			return true
		}
	}
	return false
}

// RegisterStructSym records a struct or union, merging it with an existing
// registration in this scope. The registered symbol is returned.
func (s *Scope) RegisterStructSym(sym *StructSym) (*StructSym, error) {
	table, other, errDup := s.structSyms, s.unionSyms, ErrStructAlreadyDefined
	if sym.IsUnion {
		table, other, errDup = s.unionSyms, s.structSyms, ErrUnionAlreadyDefined
	}
	if _, ok := other.Get(sym.Ident); ok {
		return nil, errors.Wrapf(errDup, "`%s`", sym.Ident)
	}
	if v, ok := table.Get(sym.Ident); ok {
		existing := v.(*StructSym)
		if err := existing.merge(sym); err != nil {
			return nil, err
		}
		return existing, nil
	}
	table.Put(sym.Ident, sym)
	return sym, nil
}

// LookupStructSym finds a struct in this scope or its parents
func (s *Scope) LookupStructSym(ident string) (*StructSym, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if v, ok := scope.structSyms.Get(ident); ok {
			return v.(*StructSym), true
		}
	}
	return nil, false
}

// LookupUnionSym finds a union in this scope or its parents
func (s *Scope) LookupUnionSym(ident string) (*StructSym, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if v, ok := scope.unionSyms.Get(ident); ok {
			return v.(*StructSym), true
		}
	}
	return nil, false
}

// IsKnown reports whether ident names any symbol visible from s
func (s *Scope) IsKnown(ident string) bool {
	if _, ok := s.LookupSym(ident); ok {
		return true
	}
	if s.IsEnum(ident) {
		return true
	}
	if _, ok := s.LookupStructSym(ident); ok {
		return true
	}
	_, ok := s.LookupUnionSym(ident)
	return ok
}

// StructSyms returns the structs and unions registered in this scope,
// structs first, each in identifier order
func (s *Scope) StructSyms() []*StructSym {
	var out []*StructSym
	for _, table := range []*treemap.Map{s.structSyms, s.unionSyms} {
		for _, v := range table.Values() {
			out = append(out, v.(*StructSym))
		}
	}
	return out
}

// Include merges the symbols of other into s without overwriting entries s
// already has
func (s *Scope) Include(other *Scope) {
	it := other.syms.Iterator()
	for it.Next() {
		if _, ok := s.syms.Get(it.Key()); !ok {
			s.syms.Put(it.Key(), it.Value())
		}
	}
	s.enumSyms.Add(other.enumSyms.Values()...)
	for _, pair := range [][2]*treemap.Map{{s.structSyms, other.structSyms}, {s.unionSyms, other.unionSyms}} {
		dst, src := pair[0], pair[1]
		it := src.Iterator()
		for it.Next() {
			if _, ok := dst.Get(it.Key()); !ok {
				dst.Put(it.Key(), it.Value())
			}
		}
	}
}
