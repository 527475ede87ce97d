package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/csgen/internal/config"
)

// RootOptions holds global flags for all commands and the configuration
// loaded from them.
type RootOptions struct {
	ConfigFile string
	Verbose    bool
	Format     string // "text" | "json" | "yaml"

	// Config is set by the root PersistentPreRunE.
	Config *config.Config

	// Logger is set by the root PersistentPreRunE.
	Logger *slog.Logger

	// Overrides replaces production collaborators (for testing).
	Overrides *RuntimeOverrides
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{config.FormatText, config.FormatJSON, config.FormatYAML}

// NewRootCommand creates the root command for the csgen CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csgen",
		Short: "csgen - completeness statement generator",
		Long: `Generate completeness statements for a knowledge graph.

A completeness statement template has a hole. csgen fills the hole with
every instance of a class, as found on a SPARQL endpoint, and renders each
statement as a SPARQL CONSTRUCT query.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigFile, "config", "", "config file (default csgen.yaml in the working directory)")
	pf.String("endpoint", "", "SPARQL endpoint URL")
	pf.Duration("timeout", 0, "timeout for one endpoint request")
	pf.String("db", "", "run history database")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", config.FormatText, "output format (text|json|yaml)")

	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewRandomCommand(opts))
	cmd.AddCommand(NewTemplateCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// load reads configuration, applies it to opts, and installs the logger
// in the command context.
func (opts *RootOptions) load(cmd *cobra.Command) error {
	if opts.Format != "" && !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	loaded, err := config.Load(opts.ConfigFile, cmd.Flags())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	opts.Config = loaded.Config
	// Commands run on their own have no --format flag; keep the preset format.
	if opts.Format == "" || cmd.Flags().Lookup("format") != nil {
		opts.Format = loaded.Format
	}
	opts.Verbose = opts.Verbose || loaded.Verbose

	opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
	if loaded.File != "" {
		opts.Logger.Debug("loaded config file", "path", loaded.File)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(config.WithLogger(ctx, opts.Logger))
	return nil
}

// ensureLoaded loads configuration for commands run without the root
// command (for testing).
func (opts *RootOptions) ensureLoaded(cmd *cobra.Command) error {
	if opts.Config != nil {
		return nil
	}
	return opts.load(cmd)
}

// formatter returns an output formatter bound to cmd's writers.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
