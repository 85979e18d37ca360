package emit

import (
	"github.com/pkg/errors"
)

type bootstrapDefine struct {
	key   DefineIdent
	value DefineValue
}

type bootstrapTarget struct {
	key DefineIdent
	cfg string
}

// Identifiers with a fixed value for every generated binding
var bootstrapDefines = []bootstrapDefine{
	{"__STDC__", LiteralValue("1")},
	{"__STDC_HOSTED__", LiteralValue("1")},
	{"__STDC_VERSION__", LiteralValue("201112L")},
	{"__STDC_WANT_LIB_EXT1__", LiteralValue("1")},
	{"SDL_DISABLE_ANALYZE_MACROS", EmptyValue()},
	{"SDL_DISABLE_OLD_NAMES", EmptyValue()},
	{"SDL_FUNCTION_POINTER_IS_VOID_POINTER", EmptyValue()},
	{"SDL_MAIN_NOIMPL", EmptyValue()},
	{"SDL_ASSERT_LEVEL", LiteralValue("2")},
	{"SDL_LIL_ENDIAN", LiteralValue("1234")},
	{"SDL_BIG_ENDIAN", LiteralValue("4321")},
}

// Identifiers whose definedness follows the compilation target. `doc` keeps
// every platform's items visible in generated documentation.
var bootstrapTargets = []bootstrapTarget{
	{"SDL_PLATFORM_WIN32", "any(doc, windows)"},
	{"SDL_PLATFORM_WINDOWS", "any(doc, windows)"},
	{"SDL_PLATFORM_WINGDK", `any(doc, all(windows, feature = "target-gdk"))`},
	{"SDL_PLATFORM_GDK", `any(doc, all(windows, feature = "target-gdk"))`},
	{"SDL_PLATFORM_CYGWIN", `any(doc, all(windows, target_env = "cygwin"))`},
	{"SDL_PLATFORM_APPLE", `any(doc, target_vendor = "apple")`},
	{"SDL_PLATFORM_MACOS", `any(doc, target_os = "macos")`},
	{"SDL_PLATFORM_IOS", `any(doc, target_os = "ios", target_os = "tvos", target_os = "visionos")`},
	{"SDL_PLATFORM_TVOS", `any(doc, target_os = "tvos")`},
	{"SDL_PLATFORM_VISIONOS", `any(doc, target_os = "visionos")`},
	{"SDL_PLATFORM_ANDROID", `any(doc, target_os = "android")`},
	{"SDL_PLATFORM_LINUX", `any(doc, target_os = "linux")`},
	{"SDL_PLATFORM_UNIX", "any(doc, unix)"},
	{"SDL_PLATFORM_FREEBSD", `any(doc, target_os = "freebsd")`},
	{"SDL_PLATFORM_NETBSD", `any(doc, target_os = "netbsd")`},
	{"SDL_PLATFORM_OPENBSD", `any(doc, target_os = "openbsd")`},
	{"SDL_PLATFORM_BSDI", `any(doc, target_os = "bsdi")`},
	{"SDL_PLATFORM_HAIKU", `any(doc, target_os = "haiku")`},
	{"SDL_PLATFORM_HPUX", `any(doc, target_os = "hpux")`},
	{"SDL_PLATFORM_SOLARIS", `any(doc, target_os = "solaris")`},
	{"SDL_PLATFORM_EMSCRIPTEN", `any(doc, target_os = "emscripten")`},
	{"_WIN32", "windows"},
	{"_WIN64", `all(windows, target_pointer_width = "64")`},
	{"__WIN32__", "windows"},
	{"_MSC_VER", `all(windows, target_env = "msvc")`},
	{"__MINGW32__", `all(windows, target_env = "gnu")`},
	{"__MINGW64__", `all(windows, target_env = "gnu", target_pointer_width = "64")`},
	{"__APPLE__", `target_vendor = "apple"`},
	{"__ANDROID__", `target_os = "android"`},
	{"__linux__", `target_os = "linux"`},
	{"__unix__", "unix"},
	{"__EMSCRIPTEN__", `target_os = "emscripten"`},
	{"__LP64__", `target_pointer_width = "64"`},
	{"_LP64", `target_pointer_width = "64"`},
	{"__x86_64__", `target_arch = "x86_64"`},
	{"_M_X64", `all(windows, target_arch = "x86_64")`},
	{"__i386__", `target_arch = "x86"`},
	{"_M_IX86", `all(windows, target_arch = "x86")`},
	{"__aarch64__", `target_arch = "aarch64"`},
	{"_M_ARM64", `all(windows, target_arch = "aarch64")`},
	{"__arm__", `target_arch = "arm"`},
	{"__riscv", `any(target_arch = "riscv32", target_arch = "riscv64")`},
	{"__powerpc64__", `target_arch = "powerpc64"`},
	{"__loongarch64", `target_arch = "loongarch64"`},
	{"SDL_SSE_INTRINSICS", `all(any(target_arch = "x86", target_arch = "x86_64"), target_feature = "sse")`},
	{"SDL_SSE2_INTRINSICS", `all(any(target_arch = "x86", target_arch = "x86_64"), target_feature = "sse2")`},
	{"SDL_NEON_INTRINSICS", `all(any(target_arch = "arm", target_arch = "aarch64"), target_feature = "neon")`},
	{"SDL_WIKI_DOCUMENTATION_SECTION", "doc"},
}

// Identifiers that are never defined when generating bindings
var bootstrapUndefined = []DefineIdent{
	"__cplusplus",
	"__OBJC__",
	"__clang_analyzer__",
	"__INTEL_COMPILER",
	"__WATCOMC__",
	"__DMC__",
	"__BORLANDC__",
	"__OS2__",
	"__SYMBIAN32__",
	"__VITA__",
	"__3DS__",
	"__PSP__",
	"__PS2__",
	"__NGAGE__",
	"__riscos__",
	"SDL_PLATFORM_3DS",
	"SDL_PLATFORM_VITA",
	"SDL_PLATFORM_PSP",
	"SDL_PLATFORM_PS2",
	"SDL_PLATFORM_NGAGE",
	"SDL_PLATFORM_RISCOS",
	"SDL_PLATFORM_OS2",
	"SDL_PLATFORM_QNXNTO",
	"SDL_PLATFORM_XBOXONE",
	"SDL_PLATFORM_XBOXSERIES",
	"SDL_PLATFORM_WINRT",
	"SDL_NOLONGLONG",
	"SDL_DEFINE_STDBOOL",
	"SDL_INCLUDE_STDBOOL_H",
	"SDL_SLOW_MEMCPY",
	"SDL_SLOW_MEMMOVE",
	"SDL_SLOW_MEMSET",
	"SDL_MAIN_USE_CALLBACKS",
	"SDL_MAIN_HANDLED",
	"SDL_ASSERT_DISABLED",
}

// Identifier families that are never defined
var bootstrapUndefinedPrefixes = []string{
	"__ARM_",
	"__SSE",
	"__AVX",
	"__MMX__",
	"__ALTIVEC__",
	"__LASX",
	"__LSX",
	"__has_",
}

// Bootstrap seeds a root frame with the fixed classification of identifiers
// the SDL headers test
func Bootstrap(s *PreProcState) error {
	for _, d := range bootstrapDefines {
		if err := s.Define(d.key, nil, d.value); err != nil {
			return errors.Wrap(err, "bootstrapping defines")
		}
	}
	for _, t := range bootstrapTargets {
		if err := s.RegisterTargetDefine(t.key, t.cfg); err != nil {
			return errors.Wrap(err, "bootstrapping target defines")
		}
	}
	for _, key := range bootstrapUndefined {
		s.Undefine(key)
	}
	for _, prefix := range bootstrapUndefinedPrefixes {
		s.UndefinePrefix(prefix)
	}
	return nil
}
