package emit

// StructPatch replaces the default emission of a struct or union that has no
// known layout. It reports whether it wrote the item; when it didn't, the
// default opaque placeholder is emitted.
type StructPatch func(ctx *EmitContext, sym *StructSym) (bool, error)

// RegisterStructPatch installs patch for the struct or union named ident
func (c *EmitContext) RegisterStructPatch(ident string, patch StructPatch) {
	c.inner.structPatches[ident] = patch
}

func (c *EmitContext) applyStructPatch(sym *StructSym) (bool, error) {
	if !c.inner.patchesEnabled {
		return false, nil
	}
	patch, ok := c.inner.structPatches[sym.Ident]
	if !ok {
		return false, nil
	}
	c.Debugf("applying patch for `%s`", sym.Ident)
	return patch(c, sym)
}
