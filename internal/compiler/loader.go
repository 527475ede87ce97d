package compiler

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed templates/builtin.cue
var builtinSource []byte

// BuiltinSource names templates compiled from the embedded file.
const BuiltinSource = "builtin"

// DefaultTemplate is the template used when none is configured.
const DefaultTemplate = "songs-by-artist"

// LoadFile compiles the templates in a .cue, .yaml or .yml file.
func (l *Loader) LoadFile(path string) ([]*Template, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return l.CompileCUE(path, src)
	case ".yaml", ".yml":
		return l.CompileYAML(path, src)
	default:
		return nil, &CompileError{Field: "file", Message: "unsupported template file extension (want .cue, .yaml or .yml)", File: path}
	}
}

// Builtins compiles the embedded templates.
func (l *Loader) Builtins() ([]*Template, error) {
	templates, err := l.CompileCUE(BuiltinSource, builtinSource)
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		t.Source = BuiltinSource
	}
	return templates, nil
}

// Builtin returns the embedded template called name.
func (l *Loader) Builtin(name string) (*Template, error) {
	templates, err := l.Builtins()
	if err != nil {
		return nil, err
	}
	return pick(templates, name, BuiltinSource)
}

// Resolve finds a template by reference. A reference is either the name of
// a builtin template, a file path (its first template), or "path#name".
func (l *Loader) Resolve(ref string) (*Template, error) {
	if ref == "" {
		ref = DefaultTemplate
	}

	path, name, _ := strings.Cut(ref, "#")
	if _, err := os.Stat(path); err != nil {
		if name == "" && os.IsNotExist(err) {
			return l.Builtin(ref)
		}
		return nil, fmt.Errorf("template %q: %w", ref, err)
	}

	templates, err := l.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return templates[0], nil
	}
	return pick(templates, name, path)
}

func pick(templates []*Template, name, source string) (*Template, error) {
	names := make([]string, 0, len(templates))
	for _, t := range templates {
		if t.Name == name {
			return t, nil
		}
		names = append(names, t.Name)
	}
	return nil, &CompileError{
		Template: name,
		Field:    "template",
		Message:  fmt.Sprintf("not found in %s (have %s)", source, strings.Join(names, ", ")),
	}
}
