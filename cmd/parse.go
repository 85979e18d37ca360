package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/expand"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/formatter"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/parser"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/token"
)

// fragmentParser parses a whole token stream as one kind of fragment
type fragmentParser func(tokens []token.TokenTree) (token.ToTokenTrees, error)

func parseWith[T token.ToTokenTrees](f parser.Fragment[T]) fragmentParser {
	return func(tokens []token.TokenTree) (token.ToTokenTrees, error) {
		value, err := parser.ParseTokens(f, tokens)
		if err != nil {
			return nil, err
		}
		return value, nil
	}
}

var fragmentParsers = map[string]fragmentParser{
	"type":         parseWith(parser.Type),
	"path":         parseWith(parser.Path),
	"lifetime":     parseWith(parser.Lifetime),
	"generic-args": parseWith(parser.GenericArgs),
	"attribute":    parseWith(parser.Attribute),
	"params":       parseWith(parser.FunctionParams),
	"args":         parseWith(parser.FunctionArgs),
	"signature":    parseWith(parser.FunctionSignature),
	"function":     parseWith(parser.Function),
	"const":        parseWith(parser.ConstItem),
	"type-alias":   parseWith(parser.TypeAlias),
	"item":         parseWith(parser.Item),
	"impl":         parseWith(parser.ImplBlock),
}

func fragmentNames() []string {
	names := make([]string, 0, len(fragmentParsers))
	for name := range fragmentParsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseFragment tokenizes src and parses it as the named fragment
func parseFragment(name, src string) (token.ToTokenTrees, error) {
	parse, ok := fragmentParsers[name]
	if !ok {
		return nil, fmt.Errorf("unknown fragment %q (expected one of %s)", name, strings.Join(fragmentNames(), ", "))
	}
	tokens, err := token.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return parse(tokens)
}

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Rust token fragment and print it back",
	Long: `Parse a file (or stdin) as one fragment kind and print the fragment as it
re-serializes. The output can be in JSON format for further processing or
human-readable format.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, content, err := readSource(args)
		if err != nil {
			return err
		}

		kind, _ := cmd.Flags().GetString("fragment")
		format, _ := cmd.Flags().GetString("format")
		lower, _ := cmd.Flags().GetBool("lower-errors")

		node, err := parseFragment(kind, string(content))
		if err != nil {
			if lower {
				fmt.Println(formatter.Format(expand.LowerError(err)))
				return nil
			}
			return fmt.Errorf("failed to parse %s as %s: %w", filename, kind, err)
		}

		switch format {
		case "json":
			return outputJSON(filename, kind, node)
		default:
			return outputHuman(filename, kind, node)
		}
	},
}

func init() {
	parseCmd.Flags().StringP("fragment", "F", "item", "Fragment kind ("+strings.Join(fragmentNames(), ", ")+")")
	parseCmd.Flags().StringP("format", "f", "human", "Output format (human, json)")
	parseCmd.Flags().Bool("lower-errors", false, "Print parse errors as a compile_error! invocation")
}

func outputJSON(filename, kind string, node token.ToTokenTrees) error {
	tokens := node.AppendTo(nil)
	output := map[string]interface{}{
		"filename": filename,
		"fragment": kind,
		"node":     fmt.Sprintf("%T", node),
		"tokens":   len(tokens),
		"source":   formatter.Format(tokens),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func outputHuman(filename, kind string, node token.ToTokenTrees) error {
	tokens := node.AppendTo(nil)
	fmt.Printf("Parsed %s: %s (%T)\n", filename, kind, node)
	fmt.Printf("=====================================\n\n")
	fmt.Println(formatter.NewPretty().Format(tokens))
	fmt.Printf("\nTokens: %d\n", len(tokens))
	return nil
}
