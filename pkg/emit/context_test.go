package emit

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, cfg *Config) *EmitContext {
	t.Helper()
	ctx, err := NewEmitContext("test", cfg)
	require.NoError(t, err)
	return ctx
}

// line emits text after using each dep
func line(text string, deps ...string) Emitter {
	return EmitFunc(func(ctx *EmitContext) error {
		for _, dep := range deps {
			if err := ctx.UseIdent(dep); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintln(ctx, text)
		return err
	})
}

func TestEmitDefineStateCfg(t *testing.T) {
	ctx := newTestContext(t, nil)
	require.NoError(t, ctx.PreProcState().RegisterTargetDefine("SDL_PLATFORM_WIN32", "any(doc, windows)"))
	require.NoError(t, ctx.EmitDefineStateCfg(One[DefineIdent]("SDL_PLATFORM_WIN32")))
	assert.Equal(t, "#[cfg(any(doc, windows))]\n", ctx.Output())

	err := ctx.EmitDefineStateCfg(One[DefineIdent]("SDL_PLATFORM_WIN32").All(One[DefineIdent]("NOT_A_TARGET")))
	assert.True(t, errors.Is(err, ErrUndefinedTargetDefine))
}

func TestEmitDefineStateCfgCombined(t *testing.T) {
	ctx := newTestContext(t, nil)
	cfg := One[DefineIdent]("SDL_PLATFORM_LINUX").Any(One[DefineIdent]("SDL_PLATFORM_ANDROID")).Not()
	require.NoError(t, ctx.EmitDefineStateCfg(cfg))
	assert.Equal(t, "#[cfg(not(any(any(doc, target_os = \"android\"), any(doc, target_os = \"linux\"))))]\n", ctx.Output())
}

func TestEmitFeatureCfg(t *testing.T) {
	ctx := newTestContext(t, nil)
	require.NoError(t, ctx.EmitFeatureCfg(One[Feature]("use-ash").All(One[Feature]("use-x11"))))
	require.NoError(t, ctx.EmitFeatureCfg(nil))
	assert.Equal(t, "#[cfg(all(feature = \"use-ash\", feature = \"use-x11\"))]\n", ctx.Output())
}

func TestDeferredEmissionOrder(t *testing.T) {
	ctx := newTestContext(t, nil)

	require.NoError(t, ctx.EmitWithDependencies(line("item A", "X")))
	assert.Equal(t, 1, ctx.PendingCount())
	assert.Empty(t, ctx.Output())

	require.NoError(t, ctx.EmitWithDependencies(line("item B")))
	assert.Equal(t, "item B\n", ctx.Output())

	require.NoError(t, ctx.RegisterSym(Sym{Ident: "X"}))
	assert.Equal(t, 0, ctx.PendingCount())
	assert.Equal(t, "item B\n", ctx.Output())

	ctx.FlushOOLOutput()
	assert.Equal(t, "item B\n\nitem A\n", ctx.Output())

	require.NoError(t, ctx.Finalize())
	assert.Equal(t, 1, strings.Count(ctx.Output(), "item A"))
	assert.Equal(t, 1, strings.Count(ctx.Output(), "item B"))
}

func TestDeferredEmissionQueueOrder(t *testing.T) {
	ctx := newTestContext(t, nil)
	require.NoError(t, ctx.EmitWithDependencies(line("first", "X", "Y")))
	require.NoError(t, ctx.EmitWithDependencies(line("second", "X")))
	require.NoError(t, ctx.EmitWithDependencies(line("third", "Y")))

	require.NoError(t, ctx.RegisterSym(Sym{Ident: "Y"}))
	assert.Equal(t, 2, ctx.PendingCount())
	require.NoError(t, ctx.RegisterEnumSym("X"))
	assert.Equal(t, 0, ctx.PendingCount())

	ctx.FlushOOLOutput()
	assert.Equal(t, "third\n\nfirst\n\nsecond\n", ctx.Output())
}

func TestEmitWithDependenciesError(t *testing.T) {
	ctx := newTestContext(t, nil)
	boom := errors.New("boom")
	err := ctx.EmitWithDependencies(EmitFunc(func(*EmitContext) error { return boom }))
	assert.Same(t, boom, err)
	assert.Equal(t, 0, ctx.PendingCount())

	// the collection guard was released
	restore := ctx.ExpectUnresolvedSymDependenciesGuard()
	restore()
}

func TestDependencyCollectionPanics(t *testing.T) {
	ctx := newTestContext(t, nil)
	assert.Panics(t, func() { ctx.EmitAfterUnresolvedSymDependencies(line("x")) })

	restore := ctx.ExpectUnresolvedSymDependenciesGuard()
	assert.Panics(t, func() { ctx.ExpectUnresolvedSymDependenciesGuard() })
	assert.False(t, ctx.EmitAfterUnresolvedSymDependencies(line("x")))
	restore()
}

func TestPopTopLevelScopePanics(t *testing.T) {
	ctx := newTestContext(t, nil)
	pop := ctx.ScopeGuard()
	require.NoError(t, ctx.RegisterSym(Sym{Ident: "Inner"}))
	assert.True(t, ctx.Scope().IsKnown("Inner"))
	pop()
	assert.False(t, ctx.Scope().IsKnown("Inner"))
	assert.PanicsWithValue(t, "popped top level scope", ctx.PopScope)
}

func TestUseIdent(t *testing.T) {
	ctx := newTestContext(t, nil)
	assert.NoError(t, ctx.UseIdent("Unknown"))

	sym, err := ctx.RegisterStructSym(&StructSym{Ident: "SDL_Window"})
	require.NoError(t, err)
	assert.Equal(t, "test", sym.Module)
	require.NoError(t, ctx.UseIdent("SDL_Window"))
	assert.Equal(t, Requested, sym.EmitStatus)

	strict := newTestContext(t, &Config{StrictSymbols: true})
	err = strict.UseIdent("Unknown")
	assert.True(t, errors.Is(err, ErrUndefinedSymbol))
	assert.Contains(t, err.Error(), "`Unknown`")
}

func TestGuards(t *testing.T) {
	ctx := newTestContext(t, nil)

	assert.False(t, ctx.IsPreprocEvalMode())
	outer := ctx.PreprocEvalModeGuard()
	inner := ctx.PreprocEvalModeGuard()
	inner()
	assert.True(t, ctx.IsPreprocEvalMode())
	outer()
	assert.False(t, ctx.IsPreprocEvalMode())

	assert.True(t, ctx.PatchesEnabled())
	restore := ctx.PatchesEnabledGuard(false)
	assert.False(t, ctx.PatchesEnabled())
	restore()
	assert.True(t, ctx.PatchesEnabled())

	restore = ctx.FunctionReturnTypeGuard("*mut SDL_Window")
	assert.Equal(t, "*mut SDL_Window", ctx.FunctionReturnType())
	restore()
	assert.Empty(t, ctx.FunctionReturnType())

	dedent := ctx.IndentGuard()
	fmt.Fprintln(ctx, "x")
	dedent()
	fmt.Fprintln(ctx, "y")
	assert.Equal(t, "    x\ny\n", ctx.Output())
}

func TestDebugGuard(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()
	level := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	defer logrus.SetLevel(level)

	ctx := newTestContext(t, nil)
	ctx.Debugf("hidden")
	assert.Empty(t, hook.AllEntries())

	restore := ctx.DebugGuard(true)
	ctx.Debugf("shown %d", 1)
	restore()
	ctx.Debugf("hidden again")

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "shown 1", hook.LastEntry().Message)
	assert.Equal(t, "test", hook.LastEntry().Data["module"])
}

func TestSubContextSharesState(t *testing.T) {
	ctx := newTestContext(t, nil)
	w := NewWriter()
	sub := ctx.SubContext(w)

	require.NoError(t, sub.RegisterSym(Sym{Ident: "Shared"}))
	assert.True(t, ctx.Scope().IsKnown("Shared"))
	fmt.Fprintln(sub, "elsewhere")
	assert.Empty(t, ctx.Output())
	assert.Equal(t, "elsewhere\n", w.String())
	assert.Same(t, w, sub.Writer())
	assert.Equal(t, "test", sub.Module())
}

func TestTargetDependentPreprocState(t *testing.T) {
	ctx := newTestContext(t, nil)
	root := ctx.PreProcState()

	err := ctx.WithTargetDependentPreprocState(func() error {
		assert.Same(t, root, ctx.PreProcState().Parent())
		ctx.PreProcState().Undefine("SDL_ASSERT_LEVEL")
		return ctx.PreProcState().Define("SDL_ASSERT_LEVEL", nil, LiteralValue("3"))
	})
	require.NoError(t, err)
	assert.Same(t, root, ctx.PreProcState())

	d, err := root.Lookup("SDL_ASSERT_LEVEL")
	require.NoError(t, err)
	assert.Equal(t, ValueTargetDependent, d.Value.Kind)

	failed := errors.New("failed")
	err = ctx.WithTargetDependentPreprocState(func() error {
		ctx.PreProcState().Undefine("__STDC__")
		return failed
	})
	assert.Same(t, failed, err)
	d, err = root.Lookup("__STDC__")
	require.NoError(t, err)
	assert.Equal(t, LiteralValue("1"), d.Value)
}

func TestFinalizeOpaqueStruct(t *testing.T) {
	ctx := newTestContext(t, nil)
	_, err := ctx.RegisterStructSym(&StructSym{Ident: "SDL_Window", Public: true})
	require.NoError(t, err)
	_, ok := ctx.Scope().LookupSym("SDL_Window")
	require.False(t, ok)

	require.NoError(t, ctx.Finalize())
	assert.Equal(t, "#[repr(C)]\npub struct SDL_Window {\n    _opaque: [u8; 0],\n}\n", ctx.Output())

	sym, ok := ctx.Scope().LookupSym("SDL_Window")
	require.True(t, ok)
	assert.Equal(t, SymStructAlias, sym.Kind)
	st, ok := ctx.Scope().LookupStructSym("SDL_Window")
	require.True(t, ok)
	assert.Equal(t, Emitted, st.EmitStatus)

	assert.True(t, errors.Is(ctx.Finalize(), ErrAlreadyFinalized))
	assert.Equal(t, 1, strings.Count(ctx.Output(), "pub struct SDL_Window"))
}

func TestFinalizeForcesPending(t *testing.T) {
	ctx := newTestContext(t, nil)
	require.NoError(t, ctx.EmitWithDependencies(line("pub type SDL_WindowID = u32;", "SDL_WindowIDRaw")))
	_, err := ctx.RegisterStructSym(&StructSym{Ident: "SDL_Renderer", Public: true, IsUnion: false, Doc: "A renderer."})
	require.NoError(t, err)

	hook := logtest.NewGlobal()
	defer hook.Reset()
	require.NoError(t, ctx.Finalize())

	assert.Equal(t, "/// A renderer.\n#[repr(C)]\npub struct SDL_Renderer {\n    _opaque: [u8; 0],\n}\n\npub type SDL_WindowID = u32;\n", ctx.Output())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "SDL_WindowIDRaw", hook.LastEntry().Data["symbol"])
}

func TestFinalizeStructPatch(t *testing.T) {
	ctx := newTestContext(t, nil)
	ctx.RegisterStructPatch("SDL_Thread", func(ctx *EmitContext, sym *StructSym) (bool, error) {
		_, err := fmt.Fprintf(ctx, "pub type %s = ::core::ffi::c_void;\n", sym.Ident)
		return true, err
	})
	ctx.RegisterStructPatch("SDL_Mutex", func(*EmitContext, *StructSym) (bool, error) {
		return false, nil
	})
	for _, ident := range []string{"SDL_Thread", "SDL_Mutex"} {
		_, err := ctx.RegisterStructSym(&StructSym{Ident: ident, Public: true})
		require.NoError(t, err)
	}

	require.NoError(t, ctx.Finalize())
	assert.Equal(t, "#[repr(C)]\npub struct SDL_Mutex {\n    _opaque: [u8; 0],\n}\n\npub type SDL_Thread = ::core::ffi::c_void;\n", ctx.Output())
	assert.True(t, ctx.Scope().IsKnown("SDL_Thread"))
}

func TestFinalizePatchesDisabled(t *testing.T) {
	ctx := newTestContext(t, nil)
	ctx.RegisterStructPatch("SDL_Thread", func(*EmitContext, *StructSym) (bool, error) {
		return false, errors.New("patch should not run")
	})
	_, err := ctx.RegisterStructSym(&StructSym{Ident: "SDL_Thread", Public: true})
	require.NoError(t, err)

	restore := ctx.PatchesEnabledGuard(false)
	defer restore()
	require.NoError(t, ctx.Finalize())
	assert.Contains(t, ctx.Output(), "pub struct SDL_Thread {")
}

func TestEmitStruct(t *testing.T) {
	ctx := newTestContext(t, nil)
	sym := &StructSym{
		Ident:   "SDL_Point",
		Doc:     "A point.",
		Public:  true,
		CanCopy: true,
		Layout: &StructLayout{Fields: []StructField{
			{Ident: "x", Ty: "::core::ffi::c_int"},
			{Ident: "y", Ty: "::core::ffi::c_int", Doc: "Vertical."},
		}},
	}
	require.NoError(t, ctx.EmitStruct(sym))
	require.NoError(t, ctx.EmitStruct(sym))
	require.NoError(t, ctx.Finalize())

	want := "/// A point.\n#[repr(C)]\n#[derive(Clone, Copy)]\npub struct SDL_Point {\n" +
		"    pub x: ::core::ffi::c_int,\n    /// Vertical.\n    pub y: ::core::ffi::c_int,\n}\n"
	assert.Equal(t, want, ctx.Output())

	alias, ok := ctx.Scope().LookupSym("SDL_Point")
	require.True(t, ok)
	assert.Equal(t, SymStructAlias, alias.Kind)
}

func TestEmitUnion(t *testing.T) {
	ctx := newTestContext(t, nil)
	require.NoError(t, ctx.EmitStruct(&StructSym{
		Ident:   "SDL_Event",
		Public:  true,
		IsUnion: true,
		Layout:  &StructLayout{Fields: []StructField{{Ident: "r#type", Ty: "::core::primitive::u32"}}},
	}))
	assert.Equal(t, "#[repr(C)]\npub union SDL_Event {\n    pub r#type: ::core::primitive::u32,\n}\n", ctx.Output())

	alias, ok := ctx.Scope().LookupSym("SDL_Event")
	require.True(t, ok)
	assert.Equal(t, SymUnionAlias, alias.Kind)
}

func TestEmitStructCDocComment(t *testing.T) {
	ctx := newTestContext(t, nil)
	_, err := ctx.RegisterStructSym(&StructSym{
		Ident:  "SDL_GPUDevice",
		Public: true,
		Doc:    "/**\n * An opaque handle representing the SDL_GPU context.\n *\n * \\since This struct is available since SDL 3.2.0.\n */",
	})
	require.NoError(t, err)
	require.NoError(t, ctx.Finalize())

	want := "/// An opaque handle representing the SDL_GPU context.\n///\n/// \\since This struct is available since SDL 3.2.0.\n" +
		"#[repr(C)]\npub struct SDL_GPUDevice {\n    _opaque: [u8; 0],\n}\n"
	assert.Equal(t, want, ctx.Output())
}

func TestDeferredItemRegistersOnce(t *testing.T) {
	ctx := newTestContext(t, nil)
	point := func() *StructSym {
		return &StructSym{
			Ident:  "SDL_Point",
			Public: true,
			Layout: &StructLayout{Fields: []StructField{{Ident: "x", Ty: "Later"}}},
		}
	}
	err := ctx.EmitWithDependencies(EmitFunc(func(ctx *EmitContext) error {
		if err := ctx.UseIdent("Later"); err != nil {
			return err
		}
		if err := ctx.RegisterEnumSym("SDL_Mode"); err != nil {
			return err
		}
		return ctx.EmitStruct(point())
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, ctx.PendingCount())
	assert.True(t, ctx.Scope().IsEnum("SDL_Mode"))

	require.NoError(t, ctx.RegisterSym(Sym{Ident: "Later"}))
	assert.Equal(t, 0, ctx.PendingCount())

	// the same struct arriving again is merged, not rejected
	require.NoError(t, ctx.EmitStruct(point()))
	require.NoError(t, ctx.Finalize())

	assert.Equal(t, "#[repr(C)]\npub struct SDL_Point {\n    pub x: Later,\n}\n", ctx.Output())
}

func TestFinalizeOpaqueInPoppedScope(t *testing.T) {
	ctx := newTestContext(t, nil)
	pop := ctx.ScopeGuard()
	_, err := ctx.RegisterStructSym(&StructSym{Ident: "SDL_Inner", Public: true})
	require.NoError(t, err)
	pop()
	_, err = ctx.RegisterStructSym(&StructSym{Ident: "SDL_Outer", Public: true})
	require.NoError(t, err)

	require.NoError(t, ctx.Finalize())
	assert.Equal(t, "#[repr(C)]\npub struct SDL_Outer {\n    _opaque: [u8; 0],\n}\n\n"+
		"#[repr(C)]\npub struct SDL_Inner {\n    _opaque: [u8; 0],\n}\n", ctx.Output())
}

func TestFinalizeOpaqueIsPublic(t *testing.T) {
	ctx := newTestContext(t, nil)
	_, err := ctx.RegisterStructSym(&StructSym{Ident: "SDL_Surface"})
	require.NoError(t, err)
	require.NoError(t, ctx.Finalize())
	assert.Equal(t, "#[repr(C)]\npub struct SDL_Surface {\n    _opaque: [u8; 0],\n}\n", ctx.Output())
}
