package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/ast"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/formatter"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/parser"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/token"
)

func TestLowerError(t *testing.T) {
	_, err := parser.ParseString(parser.Type, "Foo<Bar")
	require.Error(t, err)

	out := LowerError(err)
	assert.Equal(t, "::core::compile_error!(\"unterminated `<`\");", formatter.Format(out))

	var compileErr token.TokenTree
	for _, tt := range out {
		if tt.IsIdent("compile_error") {
			compileErr = tt
		}
	}
	assert.Equal(t, 1, compileErr.Span.Line)
	assert.Equal(t, 4, compileErr.Span.Column)
}

func TestLowerPlainError(t *testing.T) {
	out := LowerError(assert.AnError)
	assert.Contains(t, formatter.Format(out), "compile_error!(")
	assert.True(t, out[len(out)-1].IsPunct(';'))
}

func parseImpl(t *testing.T, src string) *ast.ImplBlock {
	t.Helper()
	block, err := parser.ParseString(parser.ImplBlock, src)
	require.NoError(t, err)
	return block
}

func TestRetargetImpl(t *testing.T) {
	block := parseImpl(t, `impl Window {
    pub fn new(w: i32, h: i32) -> Self { todo!() }
    pub fn size(&self) -> (i32, i32) { (0, 0) }
    pub fn resize(&mut self, _: i32) -> Option<&mut Self> { None }
    pub fn into_raw(self: Box<Self>) -> *mut Self { todo!() }
}`)

	funcs, err := RetargetImpl(block, Options{Prefix: "SDL_Window_"})
	require.NoError(t, err)
	require.Len(t, funcs, 4)

	tests := []struct {
		name     string
		expected string
	}{
		{"new", `pub extern "C" fn SDL_Window_new(w: i32, h: i32) -> Window { <Window> ::new(w, h) }`},
		{"size", `pub extern "C" fn SDL_Window_size(this: &Window) -> (i32, i32) { <Window> ::size(this) }`},
		{"resize", `pub extern "C" fn SDL_Window_resize(this: &mut Window, arg1: i32) -> Option< &mut Window> { <Window> ::resize(this, arg1) }`},
		{"into_raw", `pub extern "C" fn SDL_Window_into_raw(this: Box<Window>) -> *mut Window { <Window> ::into_raw(this) }`},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatter.Format(token.Collect(funcs[i])))
		})
	}
}

func TestRetargetedFunctionsReparse(t *testing.T) {
	block := parseImpl(t, `impl<'a> Surface<'a> { fn pixels(&'a self, y: usize) -> &'a [u8] { &[] } }`)
	funcs, err := RetargetImpl(block, Options{Prefix: "surface_"})
	require.NoError(t, err)
	require.Len(t, funcs, 1)

	printed := formatter.Format(token.Collect(funcs[0]))
	f, err := parser.ParseString(parser.Function, printed)
	require.NoError(t, err)
	assert.Equal(t, "surface_pixels", f.Sig.Ident.Text)
	assert.Nil(t, f.Receiver())

	ref, ok := f.Sig.Params.Params[0].Type.(*ast.RefType)
	require.True(t, ok)
	assert.IsType(t, &ast.PathType{}, ref.Elem)
}

func TestRetargetImplOptions(t *testing.T) {
	block := parseImpl(t, "impl Self { fn f(&self) {} }")

	_, err := RetargetImpl(block, Options{})
	require.Error(t, err)

	funcs, err := RetargetImpl(block, Options{SelfType: ast.NamedType("Renderer"), Abi: "system"})
	require.NoError(t, err)
	require.Len(t, funcs, 1)
	assert.Equal(t, `pub extern "system" fn f(this: &Renderer) { <Renderer> ::f(this) }`,
		formatter.Format(token.Collect(funcs[0])))
}

func TestRetargetRejectsAsync(t *testing.T) {
	block := parseImpl(t, "impl Foo { async fn f(&self) {} }")
	_, err := RetargetImpl(block, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "async")
}

func TestExpandImpl(t *testing.T) {
	tokens, err := token.Tokenize("impl Foo { fn get(&self) -> u8 { 0 } }")
	require.NoError(t, err)

	out := ExpandImpl(tokens, Options{Prefix: "Foo_"})
	printed := formatter.Format(out)
	assert.Contains(t, printed, "impl Foo {")
	assert.Contains(t, printed, `pub extern "C" fn Foo_get(this: &Foo) -> u8`)

	broken, err := token.Tokenize("impl Foo { fn get(&x) {} }")
	require.NoError(t, err)
	out = ExpandImpl(broken, Options{})
	assert.Equal(t, "::core::compile_error!(\"expected `self` after `&`\");", formatter.Format(out))
}
