package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/emit"
)

// Version information
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	configPath string
	debugLog   bool

	// genConfig is loaded before any command runs
	genConfig = emit.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "sdl3gen",
	Short: "Fragment parser and cfg-aware Rust emitter for SDL3 bindings",
	Long: `sdl3gen is the core of the SDL3 Rust binding generator. It parses Rust
token fragments (types, signatures, impl blocks), expands impl blocks into
exported free functions, and emits cfg-gated Rust declarations from the
preprocessor state of the SDL headers.`,
	Version:       getVersionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := emit.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", configPath, err)
		}
		if debugLog {
			cfg.Debug = true
		}
		if cfg.Debug {
			logrus.SetLevel(logrus.DebugLevel)
		}
		genConfig = cfg
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sdl3gen %s\n", getVersionString())
		fmt.Printf("  Version: %s\n", version)
		fmt.Printf("  Commit:  %s\n", commit)
		fmt.Printf("  Date:    %s\n", date)
	},
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (%s)", version, commit)
	}
	return version
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func Execute() error {
	return rootCmd.Execute()
}

// readSource reads the file named by the first argument, or stdin when there
// is none or it is "-"
func readSource(args []string) (string, []byte, error) {
	if len(args) == 0 || args[0] == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return "<stdin>", content, nil
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return args[0], content, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", emit.ConfigFileName, "Generator configuration file")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(definesCmd)
	rootCmd.AddCommand(cfgCmd)
	rootCmd.AddCommand(opaqueCmd)
	rootCmd.AddCommand(versionCmd)
}
