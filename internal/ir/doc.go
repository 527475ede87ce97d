// Package ir provides the RDF term and triple-pattern types shared by every
// other csgen package.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the term model the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Term is a sealed union: Variable, IRI, Literal, Placeholder
//   - Terms are immutable values; patterns are copied, never shared
//   - Literal lexical forms are stored already quoted and never re-escaped
//   - Placeholder is the only substitution point a template should carry;
//     sentinel IRIs are promoted to Placeholders at load time
//   - Content hashes use canonical JSON (sorted keys, NFC strings)
package ir
