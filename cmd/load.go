package cmd

import (
	"fmt"

	"github.com/agentic-research/mdsql/internal/corpus"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loadCmd)
}

var loadCmd = &cobra.Command{
	Use:   "load <dir> <output.db>",
	Short: "Store the Markdown files under a directory in a documents table",
	Long: `Walks <dir> for .md, .markdown and .mdx files and writes them to
documents(path, content, size, mtime) in <output.db>. Query them with:

  mdsql query --db <output.db> "SELECT d.path, a.* FROM documents d, md_ast(d.content) a"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, output := args[0], args[1]

		w, err := corpus.NewWriter(output)
		if err != nil {
			return err
		}

		stats, err := corpus.Load(osfs.New(source), "/", w)
		if err != nil {
			_ = w.Close() // keep what was committed
			return err
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("close %s: %w", output, err)
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d documents into %s (%d skipped)\n", stats.Loaded, output, stats.Skipped)
		return err
	},
}
