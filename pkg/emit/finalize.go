package emit

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/utils"
)

// EmitStruct writes sym with its fields, or as an opaque placeholder when its
// layout is unknown. A struct that was already written is skipped.
func (c *EmitContext) EmitStruct(sym *StructSym) error {
	registered, err := c.RegisterStructSym(sym)
	if err != nil {
		return err
	}
	if registered.EmitStatus == Emitted {
		return nil
	}
	if registered.Layout == nil {
		return c.emitOpaque(registered)
	}

	fmt.Fprintln(c)
	c.emitDoc(registered.Doc)
	fmt.Fprintln(c, "#[repr(C)]")
	if registered.CanCopy {
		fmt.Fprintln(c, "#[derive(Clone, Copy)]")
	}
	fmt.Fprintf(c, "%s%s %s {\n", visibility(registered), structKeyword(registered), registered.Ident)
	dedent := c.IndentGuard()
	for _, field := range registered.Layout.Fields {
		c.emitDoc(field.Doc)
		fmt.Fprintf(c, "pub %s: %s,\n", field.Ident, field.Ty)
	}
	dedent()
	fmt.Fprintln(c, "}")

	return c.markEmitted(registered)
}

// emitOpaque writes a public zero-sized placeholder for a type whose fields
// are unknown
func (c *EmitContext) emitOpaque(sym *StructSym) error {
	fmt.Fprintln(c)
	handled, err := c.applyStructPatch(sym)
	if err != nil {
		return errors.Wrapf(err, "patching `%s`", sym.Ident)
	}
	if !handled {
		c.emitDoc(sym.Doc)
		fmt.Fprintln(c, "#[repr(C)]")
		fmt.Fprintf(c, "pub struct %s {\n", sym.Ident)
		dedent := c.IndentGuard()
		fmt.Fprintln(c, "_opaque: [u8; 0],")
		dedent()
		fmt.Fprintln(c, "}")
	}
	return c.markEmitted(sym)
}

func (c *EmitContext) markEmitted(sym *StructSym) error {
	sym.Advance(Emitted)
	if _, ok := c.inner.scope.LookupSym(sym.Ident); ok {
		return nil
	}
	kind := SymStructAlias
	if sym.IsUnion {
		kind = SymUnionAlias
	}
	return c.RegisterSym(Sym{Ident: sym.Ident, Module: sym.Module, Kind: kind})
}

// emitDoc writes doc as `///` lines; C comment markers are stripped first
func (c *EmitContext) emitDoc(doc string) {
	if utils.IsComment(doc) {
		doc = utils.CleanComment(doc)
	}
	if doc == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		if line == "" {
			fmt.Fprintln(c, "///")
		} else {
			fmt.Fprintf(c, "/// %s\n", line)
		}
	}
}

func visibility(sym *StructSym) string {
	if sym.Public {
		return "pub "
	}
	return ""
}

func structKeyword(sym *StructSym) string {
	if sym.IsUnion {
		return "union"
	}
	return "struct"
}

// Finalize completes the module. Every struct or union without a known layout
// that hasn't been written gets an opaque placeholder, then queued items are
// written even if some dependencies are still unknown, and the out-of-line
// output is appended. It may only be called once.
func (c *EmitContext) Finalize() error {
	inner := c.inner
	if inner.finalized {
		return ErrAlreadyFinalized
	}
	inner.finalized = true

	for _, sym := range c.structSyms() {
		if sym.Layout != nil || sym.EmitStatus == Emitted {
			continue
		}
		if err := c.emitOpaque(sym); err != nil {
			return err
		}
	}

	pending := inner.pending
	inner.pending = nil
	for _, p := range pending {
		for _, dep := range c.unresolved(p.deps) {
			inner.log.WithField("symbol", dep).Warn("emitting item with unresolved dependency")
		}
		if err := c.emitDeferred(p.item); err != nil {
			return err
		}
	}

	c.FlushOOLOutput()
	return nil
}
