package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/formatter"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/token"
)

var formatCmd = &cobra.Command{
	Use:   "format [file]",
	Short: "Tokenize Rust source and print it back",
	Long: `Tokenize a file (or stdin) into token trees and print them with the
formatter used for generated code. With --pretty, items are split over lines
and brace groups are indented.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, content, err := readSource(args)
		if err != nil {
			return err
		}

		tokens, err := token.Tokenize(string(content))
		if err != nil {
			return fmt.Errorf("failed to tokenize %s: %w", filename, err)
		}

		f := formatter.New()
		if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
			f = formatter.NewPretty()
		}
		fmt.Println(f.Format(tokens))
		return nil
	},
}

func init() {
	formatCmd.Flags().BoolP("pretty", "p", false, "Split items over lines and indent brace groups")
}
