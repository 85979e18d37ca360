package emit

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Emitter writes one item through an EmitContext
type Emitter interface {
	Emit(ctx *EmitContext) error
}

// EmitFunc adapts a function to Emitter
type EmitFunc func(ctx *EmitContext) error

// Emit calls f
func (f EmitFunc) Emit(ctx *EmitContext) error {
	return f(ctx)
}

type pendingEmit struct {
	deps []string
	item Emitter
}

// moduleState is shared by every EmitContext of one module
type moduleState struct {
	module  string
	config  *Config
	preproc *PreProcState
	scope   *Scope

	pending         []*pendingEmit
	flushingPending bool
	ool             *Writer

	evalMode       int
	patchesEnabled bool
	debug          bool
	collecting     bool
	deps           []string
	returnType     string
	structPatches  map[string]StructPatch
	finalized      bool

	// structs and unions of scopes that were popped, in pop order
	poppedStructs []*StructSym

	log *logrus.Entry
}

// EmitContext writes the Rust translation of one module. Contexts made with
// SubContext write elsewhere but share the preprocessor state, the scopes and
// the pending queue.
type EmitContext struct {
	inner *moduleState
	w     *Writer
}

// NewEmitContext creates the top-level context of a module. The root
// preprocessor frame is bootstrapped and then configured from cfg.
func NewEmitContext(module string, cfg *Config) (*EmitContext, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	preproc := NewPreProcState(nil)
	if err := Bootstrap(preproc); err != nil {
		return nil, err
	}
	if err := cfg.Apply(preproc); err != nil {
		return nil, errors.Wrapf(err, "configuring module `%s`", module)
	}

	inner := &moduleState{
		module:         module,
		config:         cfg,
		preproc:        preproc,
		scope:          NewScope(nil),
		ool:            NewWriter(),
		patchesEnabled: true,
		debug:          cfg.Debug,
		structPatches:  make(map[string]StructPatch),
		log:            logrus.WithField("module", module),
	}
	return &EmitContext{inner: inner, w: NewWriter()}, nil
}

// SubContext returns a context writing to w that shares all other state with c
func (c *EmitContext) SubContext(w *Writer) *EmitContext {
	return &EmitContext{inner: c.inner, w: w}
}

// Module returns the module name
func (c *EmitContext) Module() string {
	return c.inner.module
}

func (c *EmitContext) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

// Writer returns the writer of this context
func (c *EmitContext) Writer() *Writer {
	return c.w
}

// Output returns everything written to this context
func (c *EmitContext) Output() string {
	return c.w.String()
}

// PreProcState returns the current preprocessor frame
func (c *EmitContext) PreProcState() *PreProcState {
	return c.inner.preproc
}

// Scope returns the current symbol scope
func (c *EmitContext) Scope() *Scope {
	return c.inner.scope
}

// structSyms returns every struct and union registered in this module: the
// open scopes from the root inward, then the popped ones
func (c *EmitContext) structSyms() []*StructSym {
	var chain []*Scope
	for scope := c.inner.scope; scope != nil; scope = scope.parent {
		chain = append(chain, scope)
	}
	var out []*StructSym
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].StructSyms()...)
	}
	return append(out, c.inner.poppedStructs...)
}

// PushScope enters a child scope
func (c *EmitContext) PushScope() {
	c.inner.scope = NewScope(c.inner.scope)
}

// PopScope leaves the current scope. Popping the top-level scope panics.
func (c *EmitContext) PopScope() {
	if c.inner.scope.parent == nil {
		panic("popped top level scope")
	}
	c.inner.poppedStructs = append(c.inner.poppedStructs, c.inner.scope.StructSyms()...)
	c.inner.scope = c.inner.scope.parent
}

// ScopeGuard enters a child scope until the returned func is called
func (c *EmitContext) ScopeGuard() func() {
	c.PushScope()
	return c.PopScope
}

// IndentGuard indents this context's output until the returned func is called
func (c *EmitContext) IndentGuard() func() {
	c.w.Indent()
	return c.w.Dedent
}

// PreprocEvalModeGuard marks that expressions are evaluated as preprocessor
// constants until the returned func is called. Guards nest.
func (c *EmitContext) PreprocEvalModeGuard() func() {
	c.inner.evalMode++
	return func() { c.inner.evalMode-- }
}

// IsPreprocEvalMode reports whether a PreprocEvalModeGuard is active
func (c *EmitContext) IsPreprocEvalMode() bool {
	return c.inner.evalMode > 0
}

// PatchesEnabledGuard sets whether patches may replace default emission
func (c *EmitContext) PatchesEnabledGuard(enabled bool) func() {
	prev := c.inner.patchesEnabled
	c.inner.patchesEnabled = enabled
	return func() { c.inner.patchesEnabled = prev }
}

// PatchesEnabled reports whether patches are applied
func (c *EmitContext) PatchesEnabled() bool {
	return c.inner.patchesEnabled
}

// DebugGuard turns debug logging on or off
func (c *EmitContext) DebugGuard(enabled bool) func() {
	prev := c.inner.debug
	c.inner.debug = enabled
	return func() { c.inner.debug = prev }
}

// Debugf logs at debug level while debug logging is on
func (c *EmitContext) Debugf(format string, args ...any) {
	if c.inner.debug {
		c.inner.log.Debugf(format, args...)
	}
}

// FunctionReturnTypeGuard records the return type of the function being emitted
func (c *EmitContext) FunctionReturnTypeGuard(ty string) func() {
	prev := c.inner.returnType
	c.inner.returnType = ty
	return func() { c.inner.returnType = prev }
}

// FunctionReturnType returns the return type of the function being emitted
func (c *EmitContext) FunctionReturnType() string {
	return c.inner.returnType
}

// ExpectUnresolvedSymDependenciesGuard collects the unknown identifiers used
// until the returned func is called. Nesting collections panics.
func (c *EmitContext) ExpectUnresolvedSymDependenciesGuard() func() {
	if c.inner.collecting {
		panic("already expecting unresolved sym dependencies")
	}
	c.inner.collecting = true
	c.inner.deps = nil
	return func() {
		c.inner.collecting = false
		c.inner.deps = nil
	}
}

// TargetDependentPreprocStateGuard evaluates in a fresh child preprocessor
// frame. The returned func restores the previous frame and returns the child,
// ready for MergeTargetDependentPreprocState.
func (c *EmitContext) TargetDependentPreprocStateGuard() func() *PreProcState {
	parent := c.inner.preproc
	child := NewPreProcState(parent)
	c.inner.preproc = child
	return func() *PreProcState {
		c.inner.preproc = parent
		return child
	}
}

// MergeTargetDependentPreprocState folds a child frame back into the current one
func (c *EmitContext) MergeTargetDependentPreprocState(child *PreProcState) {
	c.inner.preproc.MergeTargetDependent(child)
}

// WithTargetDependentPreprocState runs fn in a child preprocessor frame and
// merges the frame back when fn succeeds
func (c *EmitContext) WithTargetDependentPreprocState(fn func() error) error {
	pop := c.TargetDependentPreprocStateGuard()
	err := fn()
	child := pop()
	if err != nil {
		return err
	}
	c.MergeTargetDependentPreprocState(child)
	return nil
}

// UseIdent records a use of ident. An unknown ident becomes a dependency while
// dependencies are collected; otherwise it's accepted unless strict symbol
// resolution is configured.
func (c *EmitContext) UseIdent(ident string) error {
	scope := c.inner.scope
	if sym, ok := scope.LookupStructSym(ident); ok {
		sym.Advance(Requested)
	}
	if sym, ok := scope.LookupUnionSym(ident); ok {
		sym.Advance(Requested)
	}
	if scope.IsKnown(ident) {
		return nil
	}
	if c.inner.collecting {
		c.Debugf("deferring on unresolved symbol `%s`", ident)
		c.inner.deps = append(c.inner.deps, ident)
		return nil
	}
	if c.inner.config.StrictSymbols {
		return errors.Wrapf(ErrUndefinedSymbol, "`%s`", ident)
	}
	return nil
}

// RegisterSym adds sym to the current scope and emits pending items that were
// waiting for it. An empty Module is set to this context's module.
func (c *EmitContext) RegisterSym(sym Sym) error {
	if sym.Module == "" {
		sym.Module = c.inner.module
	}
	if err := c.inner.scope.RegisterSym(sym); err != nil {
		return err
	}
	c.Debugf("registered symbol `%s`", sym.Ident)
	return c.emitPending()
}

// RegisterEnumSym records an enum type in the current scope
func (c *EmitContext) RegisterEnumSym(ident string) error {
	if err := c.inner.scope.RegisterEnumSym(ident); err != nil {
		return err
	}
	return c.emitPending()
}

// RegisterStructSym records a struct or union in the current scope and
// returns the registered symbol
func (c *EmitContext) RegisterStructSym(sym *StructSym) (*StructSym, error) {
	if sym.Module == "" {
		sym.Module = c.inner.module
	}
	registered, err := c.inner.scope.RegisterStructSym(sym)
	if err != nil {
		return nil, err
	}
	return registered, c.emitPending()
}

// EmitAfterUnresolvedSymDependencies queues item if the current dependency
// collection found unknown identifiers and reports whether it did. A queued
// item is run again once its dependencies are known, so it must not register
// symbols. Calling it outside of a collection panics.
func (c *EmitContext) EmitAfterUnresolvedSymDependencies(item Emitter) bool {
	if !c.inner.collecting {
		panic("unresolved sym dependencies used outside of an expecting context")
	}
	deps := c.unresolved(c.inner.deps)
	c.inner.deps = nil
	if len(deps) == 0 {
		return false
	}
	c.Debugf("queueing item until %v are defined", deps)
	c.inner.pending = append(c.inner.pending, &pendingEmit{deps: deps, item: item})
	return true
}

// EmitWithDependencies emits item once and writes its text now, or holds the
// text back until every unknown identifier it used has been registered. Held
// text is written to the out-of-line output. Registrations made by item take
// effect immediately either way.
func (c *EmitContext) EmitWithDependencies(item Emitter) error {
	tmp := NewWriter()
	restore := c.ExpectUnresolvedSymDependenciesGuard()
	if err := item.Emit(c.SubContext(tmp)); err != nil {
		restore()
		return err
	}
	deferred := c.EmitAfterUnresolvedSymDependencies(bufferedText(tmp.String()))
	restore()
	if deferred {
		return nil
	}
	_, err := c.w.WriteString(tmp.String())
	return err
}

// bufferedText replays text that was already emitted
func bufferedText(text string) Emitter {
	return EmitFunc(func(ctx *EmitContext) error {
		_, err := ctx.Writer().WriteString(text)
		return err
	})
}

// unresolved returns the distinct idents of deps that are still unknown
func (c *EmitContext) unresolved(deps []string) []string {
	var out []string
	seen := make(map[string]bool, len(deps))
	for _, dep := range deps {
		if seen[dep] || c.inner.scope.IsKnown(dep) {
			continue
		}
		seen[dep] = true
		out = append(out, dep)
	}
	return out
}

// PendingCount returns the number of queued items
func (c *EmitContext) PendingCount() int {
	return len(c.inner.pending)
}

// emitPending writes every queued item whose dependencies are now all known,
// in queue order
func (c *EmitContext) emitPending() error {
	inner := c.inner
	if inner.flushingPending {
		// the outer loop rescans after each batch
		return nil
	}
	inner.flushingPending = true
	defer func() { inner.flushingPending = false }()

	for {
		var ready, waiting []*pendingEmit
		for _, p := range inner.pending {
			p.deps = c.unresolved(p.deps)
			if len(p.deps) == 0 {
				ready = append(ready, p)
			} else {
				waiting = append(waiting, p)
			}
		}
		inner.pending = waiting
		if len(ready) == 0 {
			return nil
		}
		for _, p := range ready {
			if err := c.emitDeferred(p.item); err != nil {
				return err
			}
		}
	}
}

// emitDeferred writes a queued item to the out-of-line output, outside of any
// dependency collection in progress
func (c *EmitContext) emitDeferred(item Emitter) error {
	inner := c.inner
	collecting, deps := inner.collecting, inner.deps
	inner.collecting, inner.deps = false, nil
	defer func() { inner.collecting, inner.deps = collecting, deps }()

	fmt.Fprintln(inner.ool)
	return item.Emit(c.SubContext(inner.ool))
}

// FlushOOLOutput appends the out-of-line output to this context's output
func (c *EmitContext) FlushOOLOutput() {
	if c.inner.ool.Empty() {
		return
	}
	fmt.Fprintln(c.w)
	c.w.WriteString(c.inner.ool.Take())
}

// EmitDefineStateCfg writes `#[cfg(...)]` for a condition over target defines
func (c *EmitContext) EmitDefineStateCfg(cfg *Cfg[DefineIdent]) error {
	return EmitCfg(c, cfg, c.inner.preproc.RenderTargetDefine)
}

// EmitFeatureCfg writes `#[cfg(...)]` for a condition over cargo features
func (c *EmitContext) EmitFeatureCfg(cfg *Cfg[Feature]) error {
	return EmitCfg(c, cfg, RenderFeature)
}
