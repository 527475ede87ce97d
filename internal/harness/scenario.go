package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultClass is the class recorded for scenario runs that do not name one.
const DefaultClass = "http://www.w3.org/2002/07/owl#Thing"

// Scenario defines a template test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Template is the template under test.
	Template TemplateRef `yaml:"template"`

	// Class is recorded with the run. Defaults to DefaultClass.
	Class string `yaml:"class,omitempty"`

	// Resources are substituted into the template, in order.
	// An empty list is allowed and must produce no statements.
	Resources []string `yaml:"resources"`

	// SubstituteCondition keeps and substitutes the template condition.
	SubstituteCondition bool `yaml:"substitute_condition,omitempty"`

	// Sentinel overrides the hole marker for legacy templates.
	Sentinel string `yaml:"sentinel,omitempty"`

	// Expect is shorthand for the common assertions.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate the produced statements.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// RunID is an optional fixed run ID.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// dir is the directory template paths are resolved against.
	dir string
}

// TemplateRef is either a reference (builtin name, file, or file#name) or
// an inline template mapping.
type TemplateRef struct {
	Ref    string
	Inline *yaml.Node
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *TemplateRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		r.Ref = node.Value
		return nil
	case yaml.MappingNode:
		r.Inline = node
		return nil
	default:
		return fmt.Errorf("line %d: template must be a reference or a mapping", node.Line)
	}
}

// IsZero reports whether no template was given.
func (r TemplateRef) IsZero() bool {
	return r.Ref == "" && r.Inline == nil
}

// ExpectClause lists expected properties of the output.
type ExpectClause struct {
	// Count is the expected number of statements.
	Count *int `yaml:"count,omitempty"`

	// Contains are substrings every query must contain.
	Contains []string `yaml:"contains,omitempty"`

	// Predicates is the expected predicate list of every statement.
	Predicates []string `yaml:"predicates,omitempty"`
}

// Assertion validates the produced statements.
type Assertion struct {
	// Type specifies the assertion type:
	// - "statement_count": Count statements were produced
	// - "query_contains": a query contains Text
	// - "predicates": every statement lists exactly Predicates
	// - "no_placeholders": no template hole survived
	// - "parses": every query parses with matching triple counts
	// - "stored": every statement is in the store
	Type string `yaml:"type"`

	// Count is the expected number of statements (statement_count).
	Count int `yaml:"count,omitempty"`

	// Text is the expected substring (query_contains).
	Text string `yaml:"text,omitempty"`

	// Index selects one statement (query_contains). Nil means any.
	Index *int `yaml:"index,omitempty"`

	// All requires every query to contain Text (query_contains).
	All bool `yaml:"all,omitempty"`

	// Predicates is the expected sorted predicate list (predicates).
	Predicates []string `yaml:"predicates,omitempty"`
}

// Assertion type constants.
const (
	AssertStatementCount = "statement_count"
	AssertQueryContains  = "query_contains"
	AssertPredicates     = "predicates"
	AssertNoPlaceholders = "no_placeholders"
	AssertParses         = "parses"
	AssertStored         = "stored"
)

// LoadScenario reads and parses a scenario YAML file. Template paths are
// resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	scenario.dir = filepath.Dir(path)
	return scenario, nil
}

// ParseScenario parses a scenario from YAML. Template paths are resolved
// against the working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Template.IsZero() {
		return fmt.Errorf("template is required")
	}

	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or assertions is required")
	}

	if s.Expect != nil && s.Expect.Count != nil && *s.Expect.Count < 0 {
		return fmt.Errorf("expect.count must be non-negative")
	}

	for i, res := range s.Resources {
		if res == "" {
			return fmt.Errorf("resources[%d]: must not be empty", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStatementCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for statement_count", index)
		}
	case AssertQueryContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for query_contains", index)
		}
		if a.Index != nil && *a.Index < 0 {
			return fmt.Errorf("assertions[%d]: index must be non-negative for query_contains", index)
		}
	case AssertPredicates:
		if len(a.Predicates) == 0 {
			return fmt.Errorf("assertions[%d]: predicates list is required for predicates", index)
		}
	case AssertNoPlaceholders, AssertParses, AssertStored:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// allAssertions expands the expect clause and appends the explicit
// assertions.
func (s *Scenario) allAssertions() []Assertion {
	var out []Assertion
	if e := s.Expect; e != nil {
		if e.Count != nil {
			out = append(out, Assertion{Type: AssertStatementCount, Count: *e.Count})
		}
		for _, text := range e.Contains {
			out = append(out, Assertion{Type: AssertQueryContains, Text: text, All: true})
		}
		if len(e.Predicates) > 0 {
			out = append(out, Assertion{Type: AssertPredicates, Predicates: e.Predicates})
		}
	}
	return append(out, s.Assertions...)
}
