package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/csgen/internal/compiler"
)

// TemplateSummary describes one template.
type TemplateSummary struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Source      string `json:"source" yaml:"source"`
	Pattern     int    `json:"pattern" yaml:"pattern"`
	Condition   int    `json:"condition" yaml:"condition"`
}

// TemplateList is the output of template list.
type TemplateList struct {
	Templates []TemplateSummary `json:"templates" yaml:"templates"`
}

// RenderText prints the templates as a table.
func (l TemplateList) RenderText(w io.Writer) error {
	rows := make([][]string, len(l.Templates))
	for i, t := range l.Templates {
		rows[i] = []string{t.Name, t.Source, strconv.Itoa(t.Pattern), strconv.Itoa(t.Condition), t.Description}
	}
	renderTable(w, []string{"NAME", "SOURCE", "PATTERN", "CONDITION", "DESCRIPTION"}, rows)
	return nil
}

// TemplateDetail is the output of template show.
type TemplateDetail struct {
	TemplateSummary `yaml:",inline"`
	Hash            string   `json:"hash" yaml:"hash"`
	Placeholders    int      `json:"placeholders" yaml:"placeholders"`
	Predicates      []string `json:"predicates" yaml:"predicates"`
	Query           string   `json:"query" yaml:"query"`
}

// RenderText prints the template header and its query.
func (d TemplateDetail) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "Template: %s (%s)\n", d.Name, d.Source)
	if d.Description != "" {
		fmt.Fprintf(w, "  %s\n", d.Description)
	}
	fmt.Fprintf(w, "Hash: %s\n", d.Hash)
	fmt.Fprintf(w, "Triples: %d pattern, %d condition\n", d.Pattern, d.Condition)
	fmt.Fprintf(w, "Placeholders: %d\n", d.Placeholders)
	fmt.Fprintln(w)
	fmt.Fprintln(w, d.Query)
	return nil
}

// ValidationResult is the output of template validate.
type ValidationResult struct {
	Valid     bool                       `json:"valid" yaml:"valid"`
	Templates int                        `json:"templates" yaml:"templates"`
	Issues    []compiler.ValidationError `json:"issues" yaml:"issues"`
}

// RenderText prints one line per issue and a summary.
func (r ValidationResult) RenderText(w io.Writer) error {
	for _, issue := range r.Issues {
		if issue.Warning {
			fmt.Fprintf(w, "%s %s\n", color.YellowString("!"), issue.Error())
			continue
		}
		fmt.Fprintf(w, "%s %s\n", color.RedString("✗"), issue.Error())
	}
	if r.Valid {
		fmt.Fprintf(w, "%s %d template(s) valid\n", color.GreenString("✓"), r.Templates)
	}
	return nil
}

// NewTemplateCommand creates the template command group.
func NewTemplateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Inspect and validate statement templates",
		Long: `Inspect and validate completeness statement templates.

A template reference is the name of a builtin template, a .cue/.yaml file
(its first template), or file#name.`,
	}

	cmd.AddCommand(newTemplateListCommand(rootOpts))
	cmd.AddCommand(newTemplateShowCommand(rootOpts))
	cmd.AddCommand(newTemplateValidateCommand(rootOpts))
	return cmd
}

func newTemplateListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [file...]",
		Short: "List templates",
		Long: `List the templates in the given files, or the builtin templates.

Examples:
  csgen template list
  csgen template list ./templates.yaml --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.ensureLoaded(cmd); err != nil {
				return err
			}
			out := opts.formatter(cmd)

			templates, err := loadTemplates(opts, args)
			if err != nil {
				return out.fail(ExitCommandError, ErrCodeTemplate, "failed to load templates", err)
			}

			list := TemplateList{Templates: make([]TemplateSummary, len(templates))}
			for i, t := range templates {
				list.Templates[i] = summarize(t)
			}
			return out.Success(list)
		},
	}
}

func newTemplateShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [ref]",
		Short: "Show a template and its CONSTRUCT query",
		Long: `Show a template and the CONSTRUCT query it renders to, holes included.
Without a reference the configured template is shown.

Examples:
  csgen template show songs-by-artist
  csgen template show ./templates.yaml#members --format yaml`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.ensureLoaded(cmd); err != nil {
				return err
			}
			out := opts.formatter(cmd)

			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			t, err := loadTemplate(opts.Config, ref)
			if err != nil {
				return out.fail(ExitCommandError, ErrCodeTemplate, "failed to load template", err)
			}

			hash, err := t.Hash()
			if err != nil {
				return out.fail(ExitFailure, ErrCodeGeneric, "failed to hash template", err)
			}
			stmt := t.Statement()
			return out.Success(TemplateDetail{
				TemplateSummary: summarize(t),
				Hash:            hash,
				Placeholders:    newInstantiator(opts.Config).CountPlaceholders(stmt),
				Predicates:      stmt.UniquePredicateList(),
				Query:           stmt.ToQueryString(),
			})
		},
	}
}

func newTemplateValidateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate templates",
		Long: `Validate the templates in the given files, or the builtin templates.

Every template is checked and every problem reported. Warnings do not fail
validation.

Exit codes:
  0 - All templates valid
  1 - Validation errors found
  2 - Command error (unreadable or malformed file)

Examples:
  csgen template validate
  csgen template validate ./templates.cue ./more.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.ensureLoaded(cmd); err != nil {
				return err
			}
			out := opts.formatter(cmd)

			templates, err := loadTemplates(opts, args)
			if err != nil {
				return out.fail(ExitCommandError, ErrCodeTemplate, "failed to load templates", err)
			}

			issues := compiler.ValidateAll(templates)
			result := ValidationResult{
				Valid:     !compiler.HasErrors(issues),
				Templates: len(templates),
				Issues:    issues,
			}
			if result.Issues == nil {
				result.Issues = []compiler.ValidationError{}
			}
			out.VerboseLog("validated %d template(s), %d issue(s)", len(templates), len(issues))

			if err := out.Success(result); err != nil {
				return err
			}
			if !result.Valid {
				return NewExitError(ExitFailure, "template validation failed")
			}
			return nil
		},
	}
}

// loadTemplates compiles every template in files, or the builtins when
// files is empty.
func loadTemplates(opts *RootOptions, files []string) ([]*compiler.Template, error) {
	loader := compiler.NewLoader(opts.Config.Sentinel)
	if len(files) == 0 {
		return loader.Builtins()
	}

	var templates []*compiler.Template
	for _, f := range files {
		ts, err := loader.LoadFile(f)
		if err != nil {
			return nil, err
		}
		templates = append(templates, ts...)
	}
	return templates, nil
}

func summarize(t *compiler.Template) TemplateSummary {
	return TemplateSummary{
		Name:        t.Name,
		Description: t.Description,
		Source:      t.Source,
		Pattern:     len(t.Pattern),
		Condition:   len(t.Condition),
	}
}
