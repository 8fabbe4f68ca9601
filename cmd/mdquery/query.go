package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/dgallion1/mdquery/internal/extract"
	"github.com/dgallion1/mdquery/internal/watch"
)

const watchDebounce = 200 * time.Millisecond

type queryFlags struct {
	format  string
	output  string
	watch   bool
	backend string
}

func newQueryCmd(a *app) *cobra.Command {
	var f queryFlags
	cmd := &cobra.Command{
		Use:   "query FILE QUERY",
		Short: "Print the sections of FILE selected by QUERY",
		Long: `Print the sections of FILE selected by QUERY. FILE may be "-" to read
markdown from stdin.

Indices are 1-based. "1.2" is the second child of the first top-level
section; "1..3" selects three siblings; "1..2.3" selects the third of
the combined children of sections 1 and 2. Overlapping selections are
printed once, in document order.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, args[0], args[1], f)
		},
	}
	cmd.Flags().StringVar(&f.format, "format", "raw", "Output format: raw, json or render")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write output to FILE instead of stdout")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "Re-run the query whenever FILE changes")
	cmd.Flags().StringVar(&f.backend, "parser", "", "Markdown parser: goldmark or treesitter")
	return cmd
}

func (a *app) runQuery(cmd *cobra.Command, path, q string, f queryFlags) error {
	switch f.format {
	case "raw", "json", "render":
	default:
		return fmt.Errorf("unknown format %q (want raw, json or render)", f.format)
	}
	if f.watch && path == "-" {
		return fmt.Errorf("--watch needs a file, not stdin")
	}
	opts, err := a.parserOptions(f.backend)
	if err != nil {
		return err
	}

	once := func() error {
		doc, err := a.loadDocument(path, cmd.InOrStdin(), opts)
		if err != nil {
			return err
		}
		res, err := extract.Extract(doc, q, extract.Options{})
		if err != nil {
			return err
		}

		if f.output == "" {
			return writeResult(cmd.OutOrStdout(), res, doc.Source, f.format)
		}
		file, err := os.Create(f.output)
		if err != nil {
			return err
		}
		return writeAndClose(file, func(w io.Writer) error {
			return writeResult(w, res, doc.Source, f.format)
		})
	}

	if !f.watch {
		return once()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watch.Watch(ctx, path, watchDebounce, a.log, once)
}

// writeAndClose runs write against wc and closes it. A close error is
// returned when the write itself succeeded.
func writeAndClose(wc io.WriteCloser, write func(io.Writer) error) error {
	if err := write(wc); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func writeResult(w io.Writer, res *extract.Result, src []byte, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*extract.Result
			Content string `json:"content"`
		}{res, string(res.Bytes(src))})
	case "render":
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			return fmt.Errorf("create renderer: %w", err)
		}
		rendered, err := renderer.Render(string(res.Bytes(src)))
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		_, err = io.WriteString(w, rendered)
		return err
	default:
		_, err := res.WriteTo(w, src)
		return err
	}
}
