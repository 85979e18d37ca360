package emit

import (
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/pkg/errors"
)

// ValueKind tells what a define expands to
type ValueKind int

const (
	// ValueEmpty is a define with no replacement text
	ValueEmpty ValueKind = iota
	// ValueLiteral is a single literal such as `1` or `0x20`
	ValueLiteral
	// ValueExpr is any other replacement text
	ValueExpr
	// ValueTargetDependent marks a define whose state depends on the target platform
	ValueTargetDependent
)

func (k ValueKind) String() string {
	switch k {
	case ValueEmpty:
		return "empty"
	case ValueLiteral:
		return "literal"
	case ValueExpr:
		return "expr"
	case ValueTargetDependent:
		return "target dependent"
	default:
		return "unknown"
	}
}

// DefineValue is the replacement of a define
type DefineValue struct {
	Kind ValueKind
	Text string
}

func EmptyValue() DefineValue             { return DefineValue{Kind: ValueEmpty} }
func LiteralValue(text string) DefineValue { return DefineValue{Kind: ValueLiteral, Text: text} }
func ExprValue(text string) DefineValue    { return DefineValue{Kind: ValueExpr, Text: text} }
func TargetDependent() DefineValue         { return DefineValue{Kind: ValueTargetDependent} }

// Define is a recorded #define. Args is nil for object-like macros.
type Define struct {
	Args  []string
	Value DefineValue
}

// IsFunctionLike reports whether the define takes arguments
func (d Define) IsFunctionLike() bool {
	return d.Args != nil
}

// sameLiteral reports whether redefining d as other is a harmless repeat
func (d Define) sameLiteral(other Define) bool {
	if d.Value.Kind != ValueLiteral || other.Value.Kind != ValueLiteral || d.Value.Text != other.Value.Text {
		return false
	}
	if (d.Args == nil) != (other.Args == nil) || len(d.Args) != len(other.Args) {
		return false
	}
	for i := range d.Args {
		if d.Args[i] != other.Args[i] {
			return false
		}
	}
	return true
}

func (d Define) equal(other Define) bool {
	if d.Value != other.Value || (d.Args == nil) != (other.Args == nil) || len(d.Args) != len(other.Args) {
		return false
	}
	for i := range d.Args {
		if d.Args[i] != other.Args[i] {
			return false
		}
	}
	return true
}

func compareDefineIdent(a, b interface{}) int {
	x, y := a.(DefineIdent), b.(DefineIdent)
	return strings.Compare(string(x), string(y))
}

// PreProcState is one frame of preprocessor state. Lookups fall back to the
// parent frame unless this frame has an entry for the identifier.
type PreProcState struct {
	parent            *PreProcState
	defined           *treemap.Map // DefineIdent -> Define
	undefined         *treeset.Set // DefineIdent
	undefinedPrefixes []string
	targetDefines     *treemap.Map // DefineIdent -> cfg text
}

// NewPreProcState creates a frame on top of parent; parent may be nil
func NewPreProcState(parent *PreProcState) *PreProcState {
	return &PreProcState{
		parent:        parent,
		defined:       treemap.NewWith(compareDefineIdent),
		undefined:     treeset.NewWith(compareDefineIdent),
		targetDefines: treemap.NewWith(compareDefineIdent),
	}
}

// Parent returns the enclosing frame, or nil for the root
func (s *PreProcState) Parent() *PreProcState {
	return s.parent
}

func (s *PreProcState) root() *PreProcState {
	for s.parent != nil {
		s = s.parent
	}
	return s
}

func (s *PreProcState) localDefine(key DefineIdent) (Define, bool) {
	v, ok := s.defined.Get(key)
	if !ok {
		return Define{}, false
	}
	return v.(Define), true
}

func (s *PreProcState) locallyUndefined(key DefineIdent) bool {
	if s.undefined.Contains(key) {
		return true
	}
	for _, prefix := range s.undefinedPrefixes {
		if strings.HasPrefix(string(key), prefix) {
			return true
		}
	}
	return false
}

// recorded returns the nearest define for key without consulting target defines
func (s *PreProcState) recorded(key DefineIdent) (Define, bool) {
	for frame := s; frame != nil; frame = frame.parent {
		if d, ok := frame.localDefine(key); ok {
			return d, true
		}
		if frame.locallyUndefined(key) {
			return Define{}, false
		}
	}
	return Define{}, false
}

// Define records key. Redefining a define with the same literal is a no-op;
// any other redefinition fails unless the old value is target dependent.
func (s *PreProcState) Define(key DefineIdent, args []string, value DefineValue) error {
	d := Define{Args: args, Value: value}
	if old, ok := s.recorded(key); ok && old.Value.Kind != ValueTargetDependent {
		if old.sameLiteral(d) {
			return nil
		}
		return errors.Wrapf(ErrAlreadyDefined, "`%s`", key)
	}
	s.defined.Put(key, d)
	s.undefined.Remove(key)
	return nil
}

// Undefine marks key as not defined in this frame
func (s *PreProcState) Undefine(key DefineIdent) {
	s.defined.Remove(key)
	s.undefined.Add(key)
}

// UndefinePrefix marks every identifier starting with prefix as not defined
func (s *PreProcState) UndefinePrefix(prefix string) {
	s.undefinedPrefixes = append(s.undefinedPrefixes, prefix)
}

// Lookup finds the define for key. It returns nil without error when key is
// known to be undefined, and ErrUnknownDefine when no frame knows about key.
// A registered target define yields a target dependent value.
func (s *PreProcState) Lookup(key DefineIdent) (*Define, error) {
	for frame := s; frame != nil; frame = frame.parent {
		if d, ok := frame.localDefine(key); ok {
			return &d, nil
		}
		if frame.locallyUndefined(key) {
			return nil, nil
		}
		if _, ok := frame.targetDefines.Get(key); ok {
			return &Define{Value: TargetDependent()}, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownDefine, "`%s`", key)
}

// IsDefined reports whether key is defined, including target dependent defines
func (s *PreProcState) IsDefined(key DefineIdent) (bool, error) {
	d, err := s.Lookup(key)
	if err != nil {
		return false, err
	}
	return d != nil, nil
}

// IsDefinedIgnoreTarget is IsDefined except that a recorded target dependent
// value counts as not defined. Registered target defines still count as defined.
func (s *PreProcState) IsDefinedIgnoreTarget(key DefineIdent) (bool, error) {
	for frame := s; frame != nil; frame = frame.parent {
		if d, ok := frame.localDefine(key); ok {
			return d.Value.Kind != ValueTargetDependent, nil
		}
		if frame.locallyUndefined(key) {
			return false, nil
		}
		if _, ok := frame.targetDefines.Get(key); ok {
			return true, nil
		}
	}
	return false, errors.Wrapf(ErrUnknownDefine, "`%s`", key)
}

// RegisterTargetDefine maps key to the cfg text that holds on the targets
// where key is defined. Target defines live in the root frame; registering the
// same mapping again is a no-op.
func (s *PreProcState) RegisterTargetDefine(key DefineIdent, cfg string) error {
	root := s.root()
	if old, ok := root.targetDefines.Get(key); ok {
		if old.(string) == cfg {
			return nil
		}
		return errors.Wrapf(ErrAlreadyDefined, "target define `%s`", key)
	}
	root.targetDefines.Put(key, cfg)
	return nil
}

// TargetDefine returns the cfg text registered for key
func (s *PreProcState) TargetDefine(key DefineIdent) (string, bool) {
	v, ok := s.root().targetDefines.Get(key)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// RenderTargetDefine is the cfg leaf renderer for define identifiers
func (s *PreProcState) RenderTargetDefine(key DefineIdent) (string, error) {
	if cfg, ok := s.TargetDefine(key); ok {
		return cfg, nil
	}
	return "", errors.Wrapf(ErrUndefinedTargetDefine, "`%s`", key)
}

// Include copies the defines and undefines of other into s, overwriting
// whatever s had for the same identifiers
func (s *PreProcState) Include(other *PreProcState) error {
	it := other.defined.Iterator()
	for it.Next() {
		key, d := it.Key().(DefineIdent), it.Value().(Define)
		s.Undefine(key)
		if err := s.Define(key, d.Args, d.Value); err != nil {
			return err
		}
	}
	for _, key := range other.undefined.Values() {
		s.Undefine(key.(DefineIdent))
	}
	s.undefinedPrefixes = append(s.undefinedPrefixes, other.undefinedPrefixes...)
	return nil
}

// MergeTargetDependent folds the facts of child, a frame evaluated for one
// target-dependent branch, back into s. Anything the branch changed becomes
// target dependent in s; entries already target dependent stay that way.
func (s *PreProcState) MergeTargetDependent(child *PreProcState) {
	promote := func(key DefineIdent) {
		if d, ok := s.localDefine(key); ok && d.Value.Kind == ValueTargetDependent {
			return
		}
		s.defined.Put(key, Define{Value: TargetDependent()})
		s.undefined.Remove(key)
	}

	it := child.defined.Iterator()
	for it.Next() {
		key, d := it.Key().(DefineIdent), it.Value().(Define)
		if old, err := s.Lookup(key); err == nil && old != nil && old.equal(d) {
			continue
		}
		promote(key)
	}
	for _, v := range child.undefined.Values() {
		key := v.(DefineIdent)
		if old, err := s.Lookup(key); err == nil && old == nil {
			continue
		}
		promote(key)
	}
}

// DefineEntry is one row of a Dump
type DefineEntry struct {
	Key    DefineIdent
	Define *Define // nil when undefined
	Target string  // cfg text of a target define
}

// Dump lists the entries of this frame in identifier order: defines and
// undefines first, then target defines
func (s *PreProcState) Dump() []DefineEntry {
	var out []DefineEntry
	keys := treeset.NewWith(compareDefineIdent, s.defined.Keys()...)
	keys.Add(s.undefined.Values()...)
	for _, k := range keys.Values() {
		key := k.(DefineIdent)
		entry := DefineEntry{Key: key}
		if d, ok := s.localDefine(key); ok {
			entry.Define = &d
		}
		out = append(out, entry)
	}
	it := s.targetDefines.Iterator()
	for it.Next() {
		out = append(out, DefineEntry{Key: it.Key().(DefineIdent), Target: it.Value().(string)})
	}
	return out
}
