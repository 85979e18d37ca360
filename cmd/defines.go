package cmd

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/emit"
)

var definesCmd = &cobra.Command{
	Use:   "defines",
	Short: "Show the preprocessor state every module starts from",
	Long: `Print the bootstrapped preprocessor state, extended by the configuration
file: fixed defines, undefined identifiers and target defines with their cfg.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := emit.NewEmitContext("defines", genConfig)
		if err != nil {
			return fmt.Errorf("failed to create emit context: %w", err)
		}
		entries := ctx.PreProcState().Dump()

		if format, _ := cmd.Flags().GetString("format"); format == "json" {
			return outputDefinesJSON(entries)
		}
		for _, entry := range entries {
			fmt.Println(describeDefine(entry))
		}
		return nil
	},
}

func describeDefine(entry emit.DefineEntry) string {
	switch {
	case entry.Target != "":
		return fmt.Sprintf("%s -> #[cfg(%s)]", entry.Key, entry.Target)
	case entry.Define == nil:
		return fmt.Sprintf("%s (undefined)", entry.Key)
	case entry.Define.Value.Text == "":
		return fmt.Sprintf("%s (%s)", entry.Key, entry.Define.Value.Kind)
	default:
		return fmt.Sprintf("%s = %s (%s)", entry.Key, entry.Define.Value.Text, entry.Define.Value.Kind)
	}
}

func outputDefinesJSON(entries []emit.DefineEntry) error {
	type JSONDefine struct {
		Name    string `json:"name"`
		Defined bool   `json:"defined"`
		Kind    string `json:"kind,omitempty"`
		Value   string `json:"value,omitempty"`
		Cfg     string `json:"cfg,omitempty"`
	}

	var out []JSONDefine
	for _, entry := range entries {
		jd := JSONDefine{Name: string(entry.Key), Cfg: entry.Target}
		if entry.Define != nil {
			jd.Defined = true
			jd.Kind = entry.Define.Value.Kind.String()
			jd.Value = entry.Define.Value.Text
		}
		if entry.Target != "" {
			jd.Defined = true
			jd.Kind = emit.ValueTargetDependent.String()
		}
		out = append(out, jd)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// buildCfg combines leaves with all (or any) and optionally negates the result
func buildCfg[T cmp.Ordered](leaves []T, anyOf, negate bool) *emit.Cfg[T] {
	var c *emit.Cfg[T]
	for i, leaf := range leaves {
		one := emit.One(leaf)
		switch {
		case i == 0:
			c = one
		case anyOf:
			c = c.Any(one)
		default:
			c = c.All(one)
		}
	}
	if negate {
		c = c.Not()
	}
	return c
}

// renderCfg emits the cfg attribute for idents, read as target defines or as
// features
func renderCfg(cfg *emit.Config, idents []string, feature, anyOf, negate bool) (string, error) {
	ctx, err := emit.NewEmitContext("cfg", cfg)
	if err != nil {
		return "", err
	}
	if feature {
		leaves := make([]emit.Feature, len(idents))
		for i, ident := range idents {
			leaves[i] = emit.Feature(ident)
		}
		err = ctx.EmitFeatureCfg(buildCfg(leaves, anyOf, negate))
	} else {
		leaves := make([]emit.DefineIdent, len(idents))
		for i, ident := range idents {
			leaves[i] = emit.DefineIdent(ident)
		}
		err = ctx.EmitDefineStateCfg(buildCfg(leaves, anyOf, negate))
	}
	if err != nil {
		return "", err
	}
	return ctx.Output(), nil
}

var cfgCmd = &cobra.Command{
	Use:   "cfg [ident...]",
	Short: "Render the cfg attribute for a condition",
	Long: `Render #[cfg(...)] for the conjunction of the given target defines, or of
cargo features with --feature. Use --any for a disjunction and --not to negate.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		feature, _ := cmd.Flags().GetBool("feature")
		anyOf, _ := cmd.Flags().GetBool("any")
		negate, _ := cmd.Flags().GetBool("not")

		out, err := renderCfg(genConfig, args, feature, anyOf, negate)
		if err != nil {
			return fmt.Errorf("failed to render cfg: %w", err)
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	definesCmd.Flags().StringP("format", "f", "human", "Output format (human, json)")

	cfgCmd.Flags().Bool("feature", false, "Treat arguments as cargo features")
	cfgCmd.Flags().Bool("any", false, "Combine with any() instead of all()")
	cfgCmd.Flags().Bool("not", false, "Negate the condition")
}
