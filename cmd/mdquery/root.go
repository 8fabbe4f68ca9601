package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgallion1/mdquery/internal/config"
	"github.com/dgallion1/mdquery/internal/doctree"
	"github.com/dgallion1/mdquery/internal/logging"
	"github.com/dgallion1/mdquery/internal/parser"
	"github.com/dgallion1/mdquery/internal/version"
)

// app holds state shared by the subcommands.
type app struct {
	cfgFile  string
	logLevel string

	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "mdquery",
		Short: "Extract sections of markdown documents by index path",
		Long: `mdquery addresses document sections by their position in the heading
tree and prints exactly those sections.

Queries are comma-separated selectors of dot-separated indices, where
each index may be a range:

  mdquery query README.md 1.3.2,1.3.4..5,2

Use "mdquery outline FILE" to list the addresses of every heading.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(a.cfgFile)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.LogLevel = a.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			a.cfg = cfg

			log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	root.Version = version.Version
	root.SetVersionTemplate(fmt.Sprintf("mdquery %s\n", version.String()))

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(newQueryCmd(a), newOutlineCmd(a), newServeCmd(a))
	return root
}

// parserOptions returns parser options, with backend overriding the
// configured markdown backend when set.
func (a *app) parserOptions(backend string) (parser.Options, error) {
	if backend == "" {
		backend = a.cfg.Parser
	}
	if !parser.ValidBackend(backend) {
		return parser.Options{}, fmt.Errorf("unknown parser %q (want %s or %s)", backend, parser.BackendGoldmark, parser.BackendTreeSitter)
	}
	return parser.Options{Backend: backend, FallbackPdftotext: a.cfg.PDFFallbackPdftotext}, nil
}

// loadDocument parses path, or stdin as markdown when path is "-".
func (a *app) loadDocument(path string, stdin io.Reader, opts parser.Options) (*doctree.Document, error) {
	if path == "-" {
		p, err := parser.Markdown(opts.Backend)
		if err != nil {
			return nil, err
		}
		return p.Parse(stdin, "stdin.md")
	}

	p, err := parser.ForFile(path, opts)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := p.Parse(f, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	a.log.Debug("parsed document",
		zap.String("file", path),
		zap.Int("headings", len(doc.Markers)),
		zap.Int("bytes", len(doc.Source)),
	)
	return doc, nil
}
