package main

import (
	"github.com/spf13/cobra"

	"github.com/dgallion1/mdquery/internal/outline"
)

func newOutlineCmd(a *app) *cobra.Command {
	var (
		asJSON   bool
		maxDepth int
		backend  string
	)
	cmd := &cobra.Command{
		Use:   "outline FILE",
		Short: "List the headings of FILE with their query addresses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.parserOptions(backend)
			if err != nil {
				return err
			}
			doc, err := a.loadDocument(args[0], cmd.InOrStdin(), opts)
			if err != nil {
				return err
			}

			entries := outline.Build(doc, doc.Tree(), outline.Options{MaxDepth: maxDepth})
			if asJSON {
				return outline.RenderJSON(cmd.OutOrStdout(), doc.Title, entries)
			}
			return outline.Render(cmd.OutOrStdout(), doc.Title, entries)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the outline as JSON")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Limit the outline depth (0 = unlimited)")
	cmd.Flags().StringVar(&backend, "parser", "", "Markdown parser: goldmark or treesitter")
	return cmd
}
