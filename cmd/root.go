package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agentic-research/mdsql/internal/config"
	"github.com/spf13/cobra"
)

var configPath string

// optionFlags are the global boolean flags that override config values.
var optionFlags = []struct {
	name  string
	usage string
}{
	{"gfm", "Enable GitHub Flavored Markdown (tables, strikethrough, task lists, autolinks)"},
	{"footnotes", "Enable footnotes"},
	{"front-matter", "Parse YAML (---) and TOML (+++) front matter"},
	{"math", "Parse $inline$ and $$block$$ math"},
	{"unsafe-html", "Render raw HTML in md_to_html output"},
	{"hard-wraps", "Render soft line breaks as <br> in md_to_html output"},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	for _, f := range optionFlags {
		rootCmd.PersistentFlags().Bool(f.name, false, f.usage)
	}
}

var rootCmd = &cobra.Command{
	Use:           "mdsql",
	Short:         "Query Markdown syntax trees with SQL",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadOptions merges the config file, MDSQL_* environment and any flags the
// user set, in that order.
func loadOptions(cmd *cobra.Command) (config.Options, error) {
	opts, err := config.Load(configPath)
	if err != nil {
		return opts, err
	}
	flags := cmd.Flags()
	for _, f := range optionFlags {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetBool(f.name)
		if err != nil {
			return opts, err
		}
		if err := opts.Set(strings.ReplaceAll(f.name, "-", "_"), v); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// readInput reads the named file, or stdin for "-" or no argument.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
