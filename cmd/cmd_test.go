package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/ast"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/emit"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/formatter"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/parser"
)

func TestParseFragment(t *testing.T) {
	tests := []struct {
		fragment string
		src      string
		want     string
	}{
		{"type", "&'a mut Vec<T>", "&'a mut Vec<T>"},
		{"params", "(&mut self, x: i32)", "(&mut self, x: i32)"},
		{"const", "pub const A: u32 = 1;", "pub const A: u32 = 1;"},
		{"impl", "impl Foo { fn f(self) {} }", "impl Foo { fn f(self) {} }"},
	}
	for _, tt := range tests {
		t.Run(tt.fragment, func(t *testing.T) {
			node, err := parseFragment(tt.fragment, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, formatter.Format(node.AppendTo(nil)))
		})
	}

	_, err := parseFragment("nope", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown fragment")

	_, err = parseFragment("type", "Foo<Bar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated `<`")
}

func TestFragmentNamesSorted(t *testing.T) {
	names := fragmentNames()
	assert.Len(t, names, len(fragmentParsers))
	assert.IsIncreasing(t, names)
}

func TestRenderCfg(t *testing.T) {
	tests := []struct {
		name    string
		idents  []string
		feature bool
		anyOf   bool
		negate  bool
		want    string
	}{
		{"target define", []string{"SDL_PLATFORM_WIN32"}, false, false, false, "#[cfg(any(doc, windows))]\n"},
		{"any", []string{"__LP64__", "_WIN64"}, false, true, false,
			"#[cfg(any(all(windows, target_pointer_width = \"64\"), target_pointer_width = \"64\"))]\n"},
		{"features", []string{"use-b", "use-a"}, true, false, true,
			"#[cfg(not(all(feature = \"use-a\", feature = \"use-b\")))]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := renderCfg(emit.DefaultConfig(), tt.idents, tt.feature, tt.anyOf, tt.negate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	_, err := renderCfg(emit.DefaultConfig(), []string{"NOT_A_TARGET"}, false, false, false)
	assert.ErrorIs(t, err, emit.ErrUndefinedTargetDefine)
}

func TestBuildCfgEmpty(t *testing.T) {
	assert.Nil(t, buildCfg[emit.Feature](nil, false, false))
	assert.True(t, buildCfg[emit.Feature](nil, false, true).IsNever())
}

func TestEmitOpaque(t *testing.T) {
	out, err := emitOpaque(emit.DefaultConfig(), "video", []string{"SDL_Window"}, false)
	require.NoError(t, err)
	assert.Equal(t, "#[repr(C)]\npub struct SDL_Window {\n    _opaque: [u8; 0],\n}\n", out)

	_, err = emitOpaque(emit.DefaultConfig(), "video", []string{"SDL_Window", "SDL_Window"}, false)
	assert.NoError(t, err)
}

func TestDescribeDefine(t *testing.T) {
	lit := emit.Define{Value: emit.LiteralValue("1")}
	empty := emit.Define{Value: emit.EmptyValue()}
	tests := []struct {
		entry emit.DefineEntry
		want  string
	}{
		{emit.DefineEntry{Key: "__STDC__", Define: &lit}, "__STDC__ = 1 (literal)"},
		{emit.DefineEntry{Key: "SDL_MAIN_NOIMPL", Define: &empty}, "SDL_MAIN_NOIMPL (empty)"},
		{emit.DefineEntry{Key: "__cplusplus"}, "__cplusplus (undefined)"},
		{emit.DefineEntry{Key: "_WIN32", Target: "windows"}, "_WIN32 -> #[cfg(windows)]"},
	}
	for _, tt := range tests {
		t.Run(string(tt.entry.Key), func(t *testing.T) {
			assert.Equal(t, tt.want, describeDefine(tt.entry))
		})
	}
}

func TestFindMethod(t *testing.T) {
	block, err := parser.ParseString(parser.ImplBlock, "impl Foo { const X: u8 = 1; fn a() {} fn b(&self) {} }")
	require.NoError(t, err)

	index, f := findMethod(block, "b")
	require.NotNil(t, f)
	assert.Equal(t, 1, index)
	assert.NotNil(t, f.Receiver())

	_, f = findMethod(block, "c")
	assert.Nil(t, f)
}

func TestExpandOptions(t *testing.T) {
	cmd := expandCmd
	require.NoError(t, cmd.Flags().Set("prefix", "SDL_"))
	require.NoError(t, cmd.Flags().Set("self-type", "Window"))
	defer func() {
		cmd.Flags().Set("prefix", "")
		cmd.Flags().Set("self-type", "")
	}()

	opts, err := expandOptions(cmd)
	require.NoError(t, err)
	assert.Equal(t, "SDL_", opts.Prefix)
	assert.Equal(t, "C", opts.Abi)
	_, ok := opts.SelfType.(*ast.PathType)
	assert.True(t, ok)

	require.NoError(t, cmd.Flags().Set("self-type", "Foo<"))
	_, err = expandOptions(cmd)
	assert.Error(t, err)
}

func TestReadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "impl.rs")
	require.NoError(t, os.WriteFile(path, []byte("impl Foo {}"), 0o644))

	name, content, err := readSource([]string{path})
	require.NoError(t, err)
	assert.Equal(t, path, name)
	assert.Equal(t, "impl Foo {}", string(content))

	_, _, err = readSource([]string{filepath.Join(t.TempDir(), "missing.rs")})
	assert.Error(t, err)
}
