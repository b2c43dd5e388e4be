package cmd

import (
	"fmt"

	"github.com/agentic-research/mdsql/internal/markdown"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(htmlCmd)
}

var htmlCmd = &cobra.Command{
	Use:   "html [file|-]",
	Short: "Render Markdown as HTML, as md_to_html does",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		html, err := markdown.New(opts).RenderHTML(text)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
		return err
	},
}
