package compiler

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// CompileYAML compiles every template under the top-level "templates"
// mapping of a YAML source, in document order.
//
//	templates:
//	  songs-by-artist:
//	    pattern:
//	      - ["?x", "rdf:type", "dbo:Song"]
//	      - {s: "?x", p: "dbo:artist", o: "dbr:___TEMPLATE___"}
func (l *Loader) CompileYAML(filename string, src []byte) ([]*Template, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error(), File: filename}
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, &CompileError{Field: "templates", Message: "document must be a mapping", File: filename}
	}

	templatesNode := mappingValue(doc.Content[0], "templates")
	if templatesNode == nil {
		return nil, &CompileError{Field: "templates", Message: "no templates declared", File: filename}
	}
	if templatesNode.Kind != yaml.MappingNode {
		return nil, yamlError(filename, "", "templates", templatesNode, "must be a mapping of name to template")
	}

	var templates []*Template
	for i := 0; i+1 < len(templatesNode.Content); i += 2 {
		name := templatesNode.Content[i].Value
		raw, err := parseYAMLTemplate(filename, name, templatesNode.Content[i+1])
		if err != nil {
			return nil, err
		}
		t, err := l.build(raw, filename)
		if err != nil {
			if ce, ok := err.(*CompileError); ok && ce.Line == 0 {
				ce.Line = templatesNode.Content[i].Line
			}
			return nil, err
		}
		templates = append(templates, t)
	}
	if len(templates) == 0 {
		return nil, &CompileError{Field: "template", Message: "no templates declared", File: filename}
	}
	return templates, nil
}

// CompileYAMLNode compiles a single template mapping, as embedded in
// another YAML document.
func (l *Loader) CompileYAMLNode(filename, name string, node *yaml.Node) (*Template, error) {
	raw, err := parseYAMLTemplate(filename, name, node)
	if err != nil {
		return nil, err
	}
	t, err := l.build(raw, filename)
	if err != nil {
		if ce, ok := err.(*CompileError); ok && ce.Line == 0 {
			ce.Line = node.Line
		}
		return nil, err
	}
	return t, nil
}

func parseYAMLTemplate(filename, name string, node *yaml.Node) (rawTemplate, error) {
	raw := rawTemplate{name: name}
	if node.Kind != yaml.MappingNode {
		return raw, yamlError(filename, name, "template", node, "must be a mapping")
	}

	if desc := mappingValue(node, "description"); desc != nil {
		if err := desc.Decode(&raw.description); err != nil {
			return raw, yamlError(filename, name, "description", desc, err.Error())
		}
	}
	if prefixes := mappingValue(node, "prefixes"); prefixes != nil {
		if err := prefixes.Decode(&raw.prefixes); err != nil {
			return raw, yamlError(filename, name, "prefixes", prefixes, err.Error())
		}
	}

	pattern := mappingValue(node, "pattern")
	if pattern == nil {
		return raw, yamlError(filename, name, "pattern", node, "pattern is required")
	}
	var err error
	if raw.pattern, err = parseYAMLTriples(filename, name, "pattern", pattern); err != nil {
		return raw, err
	}
	if condition := mappingValue(node, "condition"); condition != nil {
		if raw.condition, err = parseYAMLTriples(filename, name, "condition", condition); err != nil {
			return raw, err
		}
	}
	return raw, nil
}

func parseYAMLTriples(filename, template, field string, node *yaml.Node) ([]rawTriple, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, yamlError(filename, template, field, node, "must be a list of triples")
	}

	triples := make([]rawTriple, 0, len(node.Content))
	for i, item := range node.Content {
		rt := rawTriple{at: func(f, msg string) *CompileError {
			return yamlError(filename, template, f, item, msg)
		}}

		switch item.Kind {
		case yaml.SequenceNode:
			if len(item.Content) != 3 {
				return nil, rt.at(fmt.Sprintf("%s[%d]", field, i), fmt.Sprintf("triple must have 3 terms, found %d", len(item.Content)))
			}
			for j, term := range item.Content {
				rt.terms[j] = term.Value
			}
		case yaml.MappingNode:
			for j, key := range positionNames {
				term := mappingValue(item, key)
				if term == nil {
					return nil, rt.at(fieldPath(field, i, j), "term is required")
				}
				rt.terms[j] = term.Value
			}
		default:
			return nil, rt.at(fmt.Sprintf("%s[%d]", field, i), "triple must be a list or a mapping with s, p, o")
		}
		triples = append(triples, rt)
	}
	return triples, nil
}

// mappingValue returns the value node for key, or nil.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func yamlError(filename, template, field string, node *yaml.Node, msg string) *CompileError {
	return &CompileError{
		Template: template,
		Field:    field,
		Message:  msg,
		File:     filename,
		Line:     node.Line,
	}
}
