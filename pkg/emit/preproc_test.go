package emit

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineIdempotent(t *testing.T) {
	s := NewPreProcState(nil)
	require.NoError(t, s.Define("K", nil, LiteralValue("1")))
	require.NoError(t, s.Define("K", nil, LiteralValue("1")))

	d, err := s.Lookup("K")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, LiteralValue("1"), d.Value)

	err = s.Define("K", nil, LiteralValue("2"))
	assert.True(t, errors.Is(err, ErrAlreadyDefined))
	assert.Contains(t, err.Error(), "already defined")

	d, err = s.Lookup("K")
	require.NoError(t, err)
	assert.Equal(t, LiteralValue("1"), d.Value)
}

func TestDefineConflicts(t *testing.T) {
	s := NewPreProcState(nil)
	require.NoError(t, s.Define("E", nil, ExprValue("A + B")))
	assert.True(t, errors.Is(s.Define("E", nil, ExprValue("A + B")), ErrAlreadyDefined))

	require.NoError(t, s.Define("F", []string{"x"}, LiteralValue("1")))
	assert.True(t, errors.Is(s.Define("F", nil, LiteralValue("1")), ErrAlreadyDefined))

	require.NoError(t, s.Define("T", nil, TargetDependent()))
	assert.NoError(t, s.Define("T", nil, LiteralValue("1")))
}

func TestLookupClosedWorld(t *testing.T) {
	s := NewPreProcState(nil)
	child := NewPreProcState(s)

	_, err := child.Lookup("NOPE")
	assert.True(t, errors.Is(err, ErrUnknownDefine))
	assert.Contains(t, err.Error(), "unknown define")

	s.Undefine("NOPE")
	d, err := child.Lookup("NOPE")
	require.NoError(t, err)
	assert.Nil(t, d)

	defined, err := child.IsDefined("NOPE")
	require.NoError(t, err)
	assert.False(t, defined)
}

func TestChildFrameShadowing(t *testing.T) {
	parent := NewPreProcState(nil)
	require.NoError(t, parent.Define("A", nil, LiteralValue("1")))
	child := NewPreProcState(parent)
	assert.Same(t, parent, child.Parent())

	d, err := child.Lookup("A")
	require.NoError(t, err)
	require.NotNil(t, d)

	child.Undefine("A")
	d, err = child.Lookup("A")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = parent.Lookup("A")
	require.NoError(t, err)
	assert.NotNil(t, d)

	require.NoError(t, child.Define("A", nil, LiteralValue("2")))
	d, err = child.Lookup("A")
	require.NoError(t, err)
	assert.Equal(t, LiteralValue("2"), d.Value)
}

func TestUndefinePrefix(t *testing.T) {
	s := NewPreProcState(nil)
	s.UndefinePrefix("__ARM_")
	d, err := s.Lookup("__ARM_NEON")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = s.Lookup("__ARM")
	assert.True(t, errors.Is(err, ErrUnknownDefine))
}

func TestTargetDefines(t *testing.T) {
	s := NewPreProcState(nil)
	child := NewPreProcState(s)
	require.NoError(t, child.RegisterTargetDefine("SDL_PLATFORM_WIN32", "any(doc, windows)"))
	require.NoError(t, s.RegisterTargetDefine("SDL_PLATFORM_WIN32", "any(doc, windows)"))
	assert.True(t, errors.Is(s.RegisterTargetDefine("SDL_PLATFORM_WIN32", "windows"), ErrAlreadyDefined))

	d, err := child.Lookup("SDL_PLATFORM_WIN32")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, ValueTargetDependent, d.Value.Kind)

	defined, err := child.IsDefined("SDL_PLATFORM_WIN32")
	require.NoError(t, err)
	assert.True(t, defined)

	defined, err = child.IsDefinedIgnoreTarget("SDL_PLATFORM_WIN32")
	require.NoError(t, err)
	assert.True(t, defined)

	cfg, err := child.RenderTargetDefine("SDL_PLATFORM_WIN32")
	require.NoError(t, err)
	assert.Equal(t, "any(doc, windows)", cfg)

	_, err = child.RenderTargetDefine("SDL_PLATFORM_MACOS")
	assert.True(t, errors.Is(err, ErrUndefinedTargetDefine))
}

func TestIsDefinedIgnoreTarget(t *testing.T) {
	s := NewPreProcState(nil)
	require.NoError(t, s.Define("MAYBE", nil, TargetDependent()))
	require.NoError(t, s.Define("YES", nil, EmptyValue()))
	s.Undefine("NO")

	tests := []struct {
		key  DefineIdent
		want bool
	}{
		{"MAYBE", false},
		{"YES", true},
		{"NO", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got, err := s.IsDefinedIgnoreTarget(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	defined, err := s.IsDefined("MAYBE")
	require.NoError(t, err)
	assert.True(t, defined)

	_, err = s.IsDefinedIgnoreTarget("UNKNOWN")
	assert.True(t, errors.Is(err, ErrUnknownDefine))
}

func TestInclude(t *testing.T) {
	s := NewPreProcState(nil)
	require.NoError(t, s.Define("A", nil, LiteralValue("1")))
	require.NoError(t, s.Define("B", nil, LiteralValue("1")))

	other := NewPreProcState(nil)
	require.NoError(t, other.Define("A", nil, LiteralValue("2")))
	other.Undefine("B")
	other.UndefinePrefix("__SSE")

	require.NoError(t, s.Include(other))

	d, err := s.Lookup("A")
	require.NoError(t, err)
	assert.Equal(t, LiteralValue("2"), d.Value)

	d, err = s.Lookup("B")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = s.Lookup("__SSE2__")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestMergeTargetDependent(t *testing.T) {
	parent := NewPreProcState(nil)
	require.NoError(t, parent.Define("SAME", nil, LiteralValue("1")))
	require.NoError(t, parent.Define("CHANGED", nil, LiteralValue("1")))
	require.NoError(t, parent.Define("REMOVED", nil, EmptyValue()))
	require.NoError(t, parent.Define("ALREADY", nil, TargetDependent()))
	parent.Undefine("STILL_UNDEF")

	child := NewPreProcState(parent)
	require.NoError(t, child.Define("SAME", nil, LiteralValue("1")))
	child.Undefine("CHANGED")
	require.NoError(t, child.Define("CHANGED", nil, LiteralValue("2")))
	child.Undefine("REMOVED")
	child.Undefine("STILL_UNDEF")
	require.NoError(t, child.Define("ALREADY", nil, LiteralValue("3")))
	require.NoError(t, child.Define("NEW", nil, EmptyValue()))

	parent.MergeTargetDependent(child)

	tests := []struct {
		key  DefineIdent
		want *DefineValue
	}{
		{"SAME", &DefineValue{Kind: ValueLiteral, Text: "1"}},
		{"CHANGED", &DefineValue{Kind: ValueTargetDependent}},
		{"REMOVED", &DefineValue{Kind: ValueTargetDependent}},
		{"ALREADY", &DefineValue{Kind: ValueTargetDependent}},
		{"NEW", &DefineValue{Kind: ValueTargetDependent}},
		{"STILL_UNDEF", nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			d, err := parent.Lookup(tt.key)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, d)
				return
			}
			require.NotNil(t, d)
			assert.Equal(t, *tt.want, d.Value)
		})
	}
}

func TestBootstrap(t *testing.T) {
	s := NewPreProcState(nil)
	require.NoError(t, Bootstrap(s))

	d, err := s.Lookup("__STDC_VERSION__")
	require.NoError(t, err)
	assert.Equal(t, LiteralValue("201112L"), d.Value)

	for _, key := range []DefineIdent{"__cplusplus", "SDL_PLATFORM_VITA", "__ARM_NEON", "__AVX2__"} {
		d, err := s.Lookup(key)
		require.NoError(t, err, key)
		assert.Nil(t, d, key)
	}

	cfg, err := s.RenderTargetDefine("SDL_PLATFORM_WIN32")
	require.NoError(t, err)
	assert.Equal(t, "any(doc, windows)", cfg)

	_, err = s.Lookup("SOMETHING_ELSE")
	assert.True(t, errors.Is(err, ErrUnknownDefine))
}

func TestDump(t *testing.T) {
	s := NewPreProcState(nil)
	require.NoError(t, s.Define("B", nil, LiteralValue("1")))
	s.Undefine("A")
	require.NoError(t, s.RegisterTargetDefine("C", "unix"))

	entries := s.Dump()
	require.Len(t, entries, 3)
	assert.Equal(t, DefineIdent("A"), entries[0].Key)
	assert.Nil(t, entries[0].Define)
	assert.Equal(t, DefineIdent("B"), entries[1].Key)
	require.NotNil(t, entries[1].Define)
	assert.Equal(t, "1", entries[1].Define.Value.Text)
	assert.Equal(t, DefineEntry{Key: "C", Target: "unix"}, entries[2])
}
