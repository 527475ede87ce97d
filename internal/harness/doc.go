// Package harness runs template scenarios: a template, a fixed list of
// resources, and the statements they are expected to produce.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: songs_by_queen
//	description: "songs-by-artist instantiated for Queen"
//	template: songs-by-artist          # builtin name, file, or file#name
//	resources:
//	  - http://dbpedia.org/resource/Queen
//	substitute_condition: false
//	expect:
//	  count: 1
//	  contains:
//	    - "<http://dbpedia.org/ontology/artist> <http://dbpedia.org/resource/Queen>"
//	  predicates:
//	    - http://dbpedia.org/ontology/artist
//	    - http://www.w3.org/1999/02/22-rdf-syntax-ns#type
//	assertions:
//	  - type: no_placeholders
//	  - type: parses
//
// The template may also be written inline as a mapping with pattern,
// condition, and prefixes, in the same form as a YAML template file.
//
// # Assertion Types
//
//   - statement_count: exactly Count statements were produced
//   - query_contains: a query (Index, or any when unset) contains Text
//   - predicates: every statement lists exactly Predicates
//   - no_placeholders: no statement still contains a template hole
//   - parses: every query parses back with the same triple counts
//   - stored: every statement can be found in the store by its ID
//
// The expect block is shorthand for statement_count, query_contains, and
// predicates assertions.
//
// # Deterministic Testing
//
// Scenarios run through the real generation engine against a static
// resolver, with a fixed run ID, a frozen wall clock, and an in-memory
// SQLite store, so the same scenario always produces identical output for
// golden file comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/songs.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
