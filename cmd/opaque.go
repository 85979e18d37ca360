package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/emit"
)

// emitOpaque registers idents as layout-less types of module and returns the
// finalized output
func emitOpaque(cfg *emit.Config, module string, idents []string, union bool) (string, error) {
	ctx, err := emit.NewEmitContext(module, cfg)
	if err != nil {
		return "", err
	}
	for _, ident := range idents {
		if _, err := ctx.RegisterStructSym(&emit.StructSym{Ident: ident, Public: true, IsUnion: union}); err != nil {
			return "", err
		}
	}
	if err := ctx.Finalize(); err != nil {
		return "", err
	}
	return ctx.Output(), nil
}

var opaqueCmd = &cobra.Command{
	Use:   "opaque [ident...]",
	Short: "Emit opaque placeholder types",
	Long: `Emit the #[repr(C)] zero-sized placeholder generated for structs and unions
whose fields are never declared in the headers.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		module, _ := cmd.Flags().GetString("module")
		union, _ := cmd.Flags().GetBool("union")

		out, err := emitOpaque(genConfig, module, args, union)
		if err != nil {
			return fmt.Errorf("failed to emit opaque types: %w", err)
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	opaqueCmd.Flags().StringP("module", "m", "opaque", "Module the types belong to")
	opaqueCmd.Flags().Bool("union", false, "Register the types as unions")
}
