package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/csgen/internal/engine"
)

// GenerateOptions holds flags for the generate and random commands.
type GenerateOptions struct {
	*RootOptions
	Classes []string
	Save    bool
	Random  bool
}

// StatementOutput is one generated statement.
type StatementOutput struct {
	ID         string   `json:"id" yaml:"id"`
	Resource   string   `json:"resource" yaml:"resource"`
	Query      string   `json:"query" yaml:"query"`
	Predicates []string `json:"predicates" yaml:"predicates"`
}

// BatchOutput is one generated batch.
type BatchOutput struct {
	RunID        string            `json:"run_id" yaml:"run_id"`
	Seq          int64             `json:"seq" yaml:"seq"`
	Class        string            `json:"class" yaml:"class"`
	Template     string            `json:"template" yaml:"template"`
	TemplateHash string            `json:"template_hash" yaml:"template_hash"`
	Saved        bool              `json:"saved" yaml:"saved"`
	Statements   []StatementOutput `json:"statements" yaml:"statements"`
}

// GenerateResult is the output of the generate and random commands.
type GenerateResult struct {
	Batches []BatchOutput `json:"batches" yaml:"batches"`
}

// RenderText prints one query per line. Batch headers are comments so the
// output stays a valid sequence of queries.
func (r GenerateResult) RenderText(w io.Writer) error {
	for _, b := range r.Batches {
		fmt.Fprintf(w, "# %s %s (%d statements, run %s)\n", b.Template, b.Class, len(b.Statements), b.RunID)
		for _, s := range b.Statements {
			fmt.Fprintln(w, s.Query)
		}
	}
	return nil
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate --class <iri> [--class <iri>...]",
		Short: "Generate completeness statements for classes",
		Long: `Generate completeness statements for every instance of one or more classes.

Each class is resolved against the SPARQL endpoint, up to --limit instances.
The template is instantiated once per instance and every statement is
printed as a SPARQL CONSTRUCT query. With --save the batches are recorded
in the run history database.

Exit codes:
  0 - Statements generated
  1 - Endpoint or database failure
  2 - Command error (bad flags, unknown template, invalid limit)

Examples:
  csgen generate --class http://dbpedia.org/ontology/Band
  csgen generate --class http://dbpedia.org/ontology/Band --limit 10 --save
  csgen generate --class http://dbpedia.org/ontology/Band --template ./templates.yaml#members`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Classes, "class", nil, "class IRI to resolve (repeatable)")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "record batches in the run history database")
	addGenerationFlags(cmd)
	cmd.Flags().Int("limit", 0, "maximum instances per class (0 uses the configured limit)")
	cmd.Flags().Int("concurrency", 0, "classes resolved at once")

	return cmd
}

// NewRandomCommand creates the random command.
func NewRandomCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts, Random: true}

	cmd := &cobra.Command{
		Use:   "random --class <iri>",
		Short: "Generate a statement for one random instance of a class",
		Long: `Generate a single completeness statement for a uniformly chosen
instance of a class.

Examples:
  csgen random --class http://dbpedia.org/ontology/Band
  csgen random --class http://dbpedia.org/ontology/Band --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.Classes) > 1 {
				return NewExitError(ExitCommandError, "random accepts a single --class")
			}
			return runGenerate(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Classes, "class", nil, "class IRI to resolve")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "record the batch in the run history database")
	addGenerationFlags(cmd)

	return cmd
}

// addGenerationFlags adds the flags that map onto configuration keys.
// Their values are read back through config.Load.
func addGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().String("template", "", "template name, file, or file#name")
	cmd.Flags().String("sentinel", "", "sentinel marking template holes in IRIs")
	cmd.Flags().Bool("substitute-condition", false, "substitute holes in the condition too")
}

func runGenerate(opts *GenerateOptions, cmd *cobra.Command) error {
	if err := opts.ensureLoaded(cmd); err != nil {
		return err
	}
	out := opts.formatter(cmd)
	cfg := opts.Config
	logger := opts.Logger

	if len(opts.Classes) == 0 {
		return NewExitError(ExitCommandError, "at least one --class is required")
	}

	tmpl, err := loadTemplate(cfg, "")
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeTemplate, "failed to load template", err)
	}
	logger.Debug("template loaded", "name", tmpl.Name, "source", tmpl.Source)

	ctx, stop := signalContext(cmd)
	defer stop()

	rt, err := newRuntime(ctx, cfg, opts.Save, opts.Overrides, logger)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer rt.Close(logger)

	reqs := make([]engine.Request, len(opts.Classes))
	for i, class := range opts.Classes {
		reqs[i] = engine.Request{
			Class:        class,
			Limit:        cfg.Limit,
			Random:       opts.Random,
			Template:     tmpl.Statement(),
			TemplateName: tmpl.Name,
		}
	}

	batches, err := rt.generator.GenerateAll(ctx, reqs)
	if err != nil {
		return failGeneration(out, err)
	}

	result := GenerateResult{Batches: make([]BatchOutput, len(batches))}
	for i, b := range batches {
		result.Batches[i] = batchOutput(b, opts.Save)
	}
	return out.Success(result)
}

// failGeneration maps a generation error onto an exit code.
func failGeneration(out *OutputFormatter, err error) error {
	var genErr *engine.GenerationError
	if errors.As(err, &genErr) {
		switch genErr.Code {
		case engine.ErrCodeInvalidRequest:
			return out.fail(ExitCommandError, ErrCodeGeneric, "invalid request", err)
		case engine.ErrCodeResolution:
			return out.fail(ExitFailure, ErrCodeResolution, "failed to resolve resources", err)
		case engine.ErrCodePersist:
			return out.fail(ExitFailure, ErrCodeStore, "failed to record batch", err)
		}
	}
	return out.fail(ExitFailure, ErrCodeGeneric, "generation failed", err)
}

func batchOutput(b *engine.Batch, saved bool) BatchOutput {
	out := BatchOutput{
		RunID:        b.RunID,
		Seq:          b.Seq,
		Class:        b.Class,
		Template:     b.TemplateName,
		TemplateHash: b.TemplateHash,
		Saved:        saved,
		Statements:   make([]StatementOutput, len(b.Statements)),
	}
	for i, stmt := range b.Statements {
		out.Statements[i] = StatementOutput{
			ID:         stmt.ID(),
			Resource:   b.Resources[i],
			Query:      stmt.ToQueryString(),
			Predicates: stmt.UniquePredicateList(),
		}
	}
	return out
}
