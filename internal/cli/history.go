package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/csgen/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Last      int
	Class     string
	Statement string
}

// RunSummary is one recorded run.
type RunSummary struct {
	ID             string    `json:"id" yaml:"id"`
	Seq            int64     `json:"seq" yaml:"seq"`
	Class          string    `json:"class" yaml:"class"`
	Template       string    `json:"template" yaml:"template"`
	TemplateHash   string    `json:"template_hash" yaml:"template_hash"`
	Endpoint       string    `json:"endpoint" yaml:"endpoint"`
	Limit          int       `json:"limit" yaml:"limit"`
	ResourceCount  int       `json:"resource_count" yaml:"resource_count"`
	StatementCount int       `json:"statement_count" yaml:"statement_count"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
}

// HistoryList is the output of history without arguments.
type HistoryList struct {
	Runs []RunSummary `json:"runs" yaml:"runs"`
}

// RenderText prints the runs as a table.
func (h HistoryList) RenderText(w io.Writer) error {
	if len(h.Runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	rows := make([][]string, len(h.Runs))
	for i, r := range h.Runs {
		rows[i] = []string{
			strconv.FormatInt(r.Seq, 10),
			r.ID,
			r.Template,
			r.Class,
			statementCount(r.StatementCount),
			r.CreatedAt.Format(time.RFC3339),
		}
	}
	renderTable(w, []string{"SEQ", "RUN", "TEMPLATE", "CLASS", "STATEMENTS", "CREATED"}, rows)
	return nil
}

// RunDetail is the output of history <run-id> and history --statement.
type RunDetail struct {
	Run        *RunSummary       `json:"run,omitempty" yaml:"run,omitempty"`
	Statements []StoredStatement `json:"statements" yaml:"statements"`
}

// StoredStatement is one recorded statement.
type StoredStatement struct {
	ID       string `json:"id" yaml:"id"`
	RunID    string `json:"run_id" yaml:"run_id"`
	Position int    `json:"position" yaml:"position"`
	Resource string `json:"resource" yaml:"resource"`
	Query    string `json:"query" yaml:"query"`
}

// RenderText prints the run header and its statements.
func (d RunDetail) RenderText(w io.Writer) error {
	if r := d.Run; r != nil {
		fmt.Fprintf(w, "Run: %s (seq %d)\n", r.ID, r.Seq)
		fmt.Fprintf(w, "Template: %s %s\n", r.Template, r.TemplateHash)
		fmt.Fprintf(w, "Class: %s\n", r.Class)
		fmt.Fprintf(w, "Endpoint: %s\n", r.Endpoint)
		fmt.Fprintf(w, "Resources: %d (limit %d)\n", r.ResourceCount, r.Limit)
		fmt.Fprintf(w, "Statements: %s\n", statementCount(r.StatementCount))
		fmt.Fprintf(w, "Created: %s\n", r.CreatedAt.Format(time.RFC3339))
		fmt.Fprintln(w)
	}

	rows := make([][]string, len(d.Statements))
	for i, s := range d.Statements {
		rows[i] = []string{s.RunID, strconv.Itoa(s.Position), s.Resource, s.ID}
	}
	if len(rows) > 0 {
		renderTable(w, []string{"RUN", "POS", "RESOURCE", "ID"}, rows)
	}
	return nil
}

func statementCount(n int) string {
	if n == 0 {
		return color.YellowString("%d", n)
	}
	return color.GreenString("%d", n)
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs",
		Long: `Show the runs recorded with generate --save.

Without arguments the runs are listed oldest first. With a run ID the run
and its statements are shown. With --statement every stored occurrence of
a statement ID is shown.

Examples:
  csgen history
  csgen history --last 5
  csgen history --class http://dbpedia.org/ontology/Band
  csgen history 0193a5b0-7c1a-7def-8123-456789abcdef
  csgen history --statement 3f2a...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Last, "last", 0, "only list the most recent runs")
	cmd.Flags().StringVar(&opts.Class, "class", "", "only list runs for this class IRI")
	cmd.Flags().StringVar(&opts.Statement, "statement", "", "find a statement by ID")

	return cmd
}

func runHistory(opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	if err := opts.ensureLoaded(cmd); err != nil {
		return err
	}
	out := opts.formatter(cmd)
	ctx := cmd.Context()
	logger := opts.Logger

	if len(args) == 1 && opts.Statement != "" {
		return NewExitError(ExitCommandError, "run ID and --statement are mutually exclusive")
	}

	st, err := openStore(ctx, opts.Config.Database, logger)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	switch {
	case opts.Statement != "":
		records, err := st.FindStatement(ctx, opts.Statement)
		if err != nil {
			return out.fail(ExitFailure, ErrCodeStore, "failed to find statement", err)
		}
		if len(records) == 0 {
			return out.fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("statement not found: %s", opts.Statement), nil)
		}
		return out.Success(RunDetail{Statements: storedStatements(records)})

	case len(args) == 1:
		run, err := st.ReadRun(ctx, args[0])
		if errors.Is(err, store.ErrRunNotFound) {
			return out.fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("run not found: %s", args[0]), nil)
		}
		if err != nil {
			return out.fail(ExitFailure, ErrCodeStore, "failed to read run", err)
		}
		records, err := st.ReadStatements(ctx, run.ID)
		if err != nil {
			return out.fail(ExitFailure, ErrCodeStore, "failed to read statements", err)
		}
		summary := runSummary(run)
		return out.Success(RunDetail{Run: &summary, Statements: storedStatements(records)})

	default:
		runs, err := st.ListRuns(ctx, store.RunFilter{Class: opts.Class, Last: opts.Last})
		if err != nil {
			return out.fail(ExitFailure, ErrCodeStore, "failed to list runs", err)
		}
		list := HistoryList{Runs: make([]RunSummary, len(runs))}
		for i, r := range runs {
			list.Runs[i] = runSummary(r)
		}
		return out.Success(list)
	}
}

func runSummary(r store.Run) RunSummary {
	return RunSummary{
		ID:             r.ID,
		Seq:            r.Seq,
		Class:          r.Class,
		Template:       r.TemplateName,
		TemplateHash:   r.TemplateHash,
		Endpoint:       r.Endpoint,
		Limit:          r.Limit,
		ResourceCount:  r.ResourceCount,
		StatementCount: r.StatementCount,
		CreatedAt:      r.CreatedAt,
	}
}

func storedStatements(records []store.StatementRecord) []StoredStatement {
	out := make([]StoredStatement, len(records))
	for i, rec := range records {
		out[i] = StoredStatement{
			ID:       rec.ID(),
			RunID:    rec.RunID,
			Position: rec.Position,
			Resource: rec.Resource,
			Query:    rec.Statement.ToQueryString(),
		}
	}
	return out
}
