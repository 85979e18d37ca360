package emit

import (
	"os"
	"regexp"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/utils"
)

// ConfigFileName is the configuration file looked up by the CLI
const ConfigFileName = ".sdl3gen.yaml"

var literalRegex = regexp.MustCompile(`^(?:[0-9][0-9A-Za-z_.]*|'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*")$`)

// Config extends the bootstrapped preprocessor state of every module
type Config struct {
	// TargetDefines maps identifiers to the cfg text holding where they're defined
	TargetDefines map[string]string `yaml:"target_defines,omitempty"`
	// Defines maps identifiers to their replacement text
	Defines           map[string]string `yaml:"defines,omitempty"`
	Undefined         []string          `yaml:"undefined,omitempty"`
	UndefinedPrefixes []string          `yaml:"undefined_prefixes,omitempty"`
	// StrictSymbols makes the use of an unknown identifier an error
	StrictSymbols bool `yaml:"strict_symbols,omitempty"`
	Debug         bool `yaml:"debug,omitempty"`
}

// DefaultConfig returns a config that adds nothing to the bootstrap
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig reads a YAML config. A missing file yields the default config.
func LoadConfig(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	cfg, err := ParseConfig(content)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return cfg, nil
}

// ParseConfig decodes and validates a YAML config
func ParseConfig(content []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.UnmarshalStrict(content, cfg); err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every configured name is a C identifier
func (c *Config) Validate() error {
	check := func(section, name string) error {
		if !utils.IsValidIdentifier(name) {
			return errors.Wrapf(ErrInvalidConfig, "%s: `%s` is not an identifier", section, name)
		}
		return nil
	}
	for _, name := range sortedKeys(c.TargetDefines) {
		if err := check("target_defines", name); err != nil {
			return err
		}
		if c.TargetDefines[name] == "" {
			return errors.Wrapf(ErrInvalidConfig, "target_defines: `%s` has no cfg", name)
		}
	}
	for _, name := range sortedKeys(c.Defines) {
		if err := check("defines", name); err != nil {
			return err
		}
	}
	for _, name := range c.Undefined {
		if err := check("undefined", name); err != nil {
			return err
		}
	}
	for _, prefix := range c.UndefinedPrefixes {
		if prefix == "" {
			return errors.Wrap(ErrInvalidConfig, "undefined_prefixes: empty prefix")
		}
	}
	return nil
}

// Apply adds the configured state to s
func (c *Config) Apply(s *PreProcState) error {
	for _, name := range sortedKeys(c.TargetDefines) {
		if err := s.RegisterTargetDefine(DefineIdent(name), c.TargetDefines[name]); err != nil {
			return err
		}
	}
	// configured defines replace bootstrapped ones
	for _, name := range sortedKeys(c.Defines) {
		s.Undefine(DefineIdent(name))
		if err := s.Define(DefineIdent(name), nil, ClassifyValue(c.Defines[name])); err != nil {
			return err
		}
	}
	for _, name := range c.Undefined {
		s.Undefine(DefineIdent(name))
	}
	for _, prefix := range c.UndefinedPrefixes {
		s.UndefinePrefix(prefix)
	}
	return nil
}

// ClassifyValue turns replacement text into a define value
func ClassifyValue(text string) DefineValue {
	switch {
	case text == "":
		return EmptyValue()
	case literalRegex.MatchString(text):
		return LiteralValue(text)
	default:
		return ExprValue(text)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
