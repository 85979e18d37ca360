package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/expand"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/formatter"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/parser"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/token"
)

func addExpandFlags(cmd *cobra.Command) {
	cmd.Flags().String("prefix", "", "Prefix for generated function names")
	cmd.Flags().String("self-type", "", "Concrete type replacing Self (default: the impl type)")
	cmd.Flags().String("abi", "C", "ABI of generated functions")
}

// expandOptions builds expand.Options from the flags added by addExpandFlags
func expandOptions(cmd *cobra.Command) (expand.Options, error) {
	prefix, _ := cmd.Flags().GetString("prefix")
	selfType, _ := cmd.Flags().GetString("self-type")
	abi, _ := cmd.Flags().GetString("abi")

	opts := expand.Options{Prefix: prefix, Abi: abi}
	if selfType != "" {
		ty, err := parser.ParseString(parser.Type, selfType)
		if err != nil {
			return opts, fmt.Errorf("invalid --self-type %q: %w", selfType, err)
		}
		opts.SelfType = ty
	}
	return opts, nil
}

var expandCmd = &cobra.Command{
	Use:   "expand [file]",
	Short: "Expand an impl block into exported free functions",
	Long: `Read an impl block from a file (or stdin) and print it followed by one
extern function per method that forwards to it. Parse failures are printed as a
compile_error! invocation, the way a macro reports them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, content, err := readSource(args)
		if err != nil {
			return err
		}
		opts, err := expandOptions(cmd)
		if err != nil {
			return err
		}

		tokens, err := token.Tokenize(string(content))
		if err != nil {
			return fmt.Errorf("failed to tokenize %s: %w", filename, err)
		}

		fmt.Println(formatter.NewPretty().Format(expand.ExpandImpl(tokens, opts)))
		return nil
	},
}

func init() {
	addExpandFlags(expandCmd)
}
