// Package emit implements the preprocessor-aware emission engine that writes
// cfg-gated Rust declarations.
package emit

import (
	"cmp"
	"fmt"
	"io"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
)

// DefineIdent is a C preprocessor identifier
type DefineIdent string

// Feature is a cargo feature name
type Feature string

type cfgKind int

const (
	cfgOne cfgKind = iota
	cfgNot
	cfgAll
	cfgAny
)

// Cfg is a boolean condition over leaves of type T. A nil *Cfg means no
// condition. Values are immutable; combinators return new values.
type Cfg[T cmp.Ordered] struct {
	kind  cfgKind
	leaf  T
	inner *Cfg[T]
	// set holds the operands of all/any, ordered and deduplicated by compareCfg
	set *treeset.Set
}

// One is the condition that leaf holds
func One[T cmp.Ordered](leaf T) *Cfg[T] {
	return &Cfg[T]{kind: cfgOne, leaf: leaf}
}

// Never is the condition that is always false. It renders as `any()`.
func Never[T cmp.Ordered]() *Cfg[T] {
	return &Cfg[T]{kind: cfgAny, set: treeset.NewWith(compareCfg[T])}
}

// IsNever reports whether c is the always false condition
func (c *Cfg[T]) IsNever() bool {
	return c != nil && c.kind == cfgAny && c.set.Size() == 0
}

// All is the conjunction of c and rhs
func (c *Cfg[T]) All(rhs *Cfg[T]) *Cfg[T] {
	if c == nil {
		return rhs
	}
	if rhs == nil {
		return c
	}
	return combine(cfgAll, c, rhs)
}

// Any is the disjunction of c and rhs
func (c *Cfg[T]) Any(rhs *Cfg[T]) *Cfg[T] {
	if c == nil || rhs == nil {
		return nil
	}
	return combine(cfgAny, c, rhs)
}

// Not negates c. Negating a negation unwraps it.
func (c *Cfg[T]) Not() *Cfg[T] {
	switch {
	case c == nil:
		return Never[T]()
	case c.kind == cfgNot:
		return c.inner
	}
	return &Cfg[T]{kind: cfgNot, inner: c}
}

// combine merges operands of the same kind into one set instead of nesting
func combine[T cmp.Ordered](kind cfgKind, lhs, rhs *Cfg[T]) *Cfg[T] {
	set := treeset.NewWith(compareCfg[T])
	for _, operand := range []*Cfg[T]{lhs, rhs} {
		if operand.kind == kind {
			set.Add(operand.set.Values()...)
		} else {
			set.Add(operand)
		}
	}
	if set.Size() == 1 {
		return set.Values()[0].(*Cfg[T])
	}
	return &Cfg[T]{kind: kind, set: set}
}

// Operands returns the operands of an all or any condition in canonical order
func (c *Cfg[T]) Operands() []*Cfg[T] {
	if c == nil || c.set == nil {
		return nil
	}
	values := c.set.Values()
	out := make([]*Cfg[T], len(values))
	for i, v := range values {
		out[i] = v.(*Cfg[T])
	}
	return out
}

// compareCfg orders conditions structurally: by kind, then by leaf, inner
// condition or operands
func compareCfg[T cmp.Ordered](a, b interface{}) int {
	x, y := a.(*Cfg[T]), b.(*Cfg[T])
	if x.kind != y.kind {
		return cmp.Compare(x.kind, y.kind)
	}
	switch x.kind {
	case cfgOne:
		return cmp.Compare(x.leaf, y.leaf)
	case cfgNot:
		return compareCfg[T](x.inner, y.inner)
	}
	xs, ys := x.set.Values(), y.set.Values()
	for i := 0; i < len(xs) && i < len(ys); i++ {
		if r := compareCfg[T](xs[i], ys[i]); r != 0 {
			return r
		}
	}
	return cmp.Compare(len(xs), len(ys))
}

// Equal reports whether two conditions are structurally equal
func (c *Cfg[T]) Equal(other *Cfg[T]) bool {
	if c == nil || other == nil {
		return c == other
	}
	return compareCfg[T](c, other) == 0
}

// Render prints the condition, using leaf to print each leaf. A nil condition renders as "".
func (c *Cfg[T]) Render(leaf func(T) (string, error)) (string, error) {
	if c == nil {
		return "", nil
	}
	var sb strings.Builder
	if err := c.render(&sb, leaf); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (c *Cfg[T]) render(sb *strings.Builder, leaf func(T) (string, error)) error {
	switch c.kind {
	case cfgOne:
		text, err := leaf(c.leaf)
		if err != nil {
			return err
		}
		sb.WriteString(text)
		return nil
	case cfgNot:
		sb.WriteString("not(")
		if err := c.inner.render(sb, leaf); err != nil {
			return err
		}
		sb.WriteString(")")
		return nil
	}

	if c.kind == cfgAll {
		sb.WriteString("all(")
	} else {
		sb.WriteString("any(")
	}
	for i, operand := range c.Operands() {
		if i > 0 {
			sb.WriteString(", ")
		}
		if err := operand.render(sb, leaf); err != nil {
			return err
		}
	}
	sb.WriteString(")")
	return nil
}

// String renders leaves with %v; meant for logs
func (c *Cfg[T]) String() string {
	s, _ := c.Render(func(leaf T) (string, error) {
		return fmt.Sprint(leaf), nil
	})
	return s
}

// EmitCfg writes `#[cfg(...)]` and a newline for c. Nothing is written for a nil condition.
func EmitCfg[T cmp.Ordered](w io.Writer, c *Cfg[T], leaf func(T) (string, error)) error {
	if c == nil {
		return nil
	}
	text, err := c.Render(leaf)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "#[cfg(%s)]\n", text)
	return err
}

// RenderFeature prints a feature leaf as `feature = "name"`
func RenderFeature(f Feature) (string, error) {
	return fmt.Sprintf("feature = %q", string(f)), nil
}
