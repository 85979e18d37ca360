package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/ast"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/expand"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/formatter"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/parser"
)

// findMethod returns the function of block named name
func findMethod(block *ast.ImplBlock, name string) (int, *ast.Function) {
	for i, f := range block.Functions() {
		if f.Sig.Ident.Text == name {
			return i, f
		}
	}
	return -1, nil
}

var extractCmd = &cobra.Command{
	Use:   "extract [file] [method]",
	Short: "Extract one method of an impl block",
	Long: `Extract a single method from an impl block. With --free, the method is
printed as the exported free function the expand command would generate for it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, content, err := readSource(args[:1])
		if err != nil {
			return err
		}
		method := args[1]

		block, err := parser.ParseString(parser.ImplBlock, string(content))
		if err != nil {
			return fmt.Errorf("failed to parse impl block in %s: %w", filename, err)
		}

		index, f := findMethod(block, method)
		if f == nil {
			return fmt.Errorf("method not found: %s", method)
		}

		if free, _ := cmd.Flags().GetBool("free"); free {
			opts, err := expandOptions(cmd)
			if err != nil {
				return err
			}
			funcs, err := expand.RetargetImpl(block, opts)
			if err != nil {
				return fmt.Errorf("failed to retarget %s: %w", method, err)
			}
			f = funcs[index]
		}

		fmt.Println(formatter.NewPretty().Format(f.AppendTo(nil)))
		return nil
	},
}

func init() {
	extractCmd.Flags().Bool("free", false, "Print the exported free function form")
	addExpandFlags(extractCmd)
}
