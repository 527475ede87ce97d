package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for a future algorithm change.
const (
	DomainStatement = "csgen/statement/v1"
	DomainTemplate  = "csgen/template/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StatementHash computes the content-addressed ID of a completeness
// statement from its pattern and condition. Triple order is significant.
func StatementHash(pattern, condition Pattern) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"pattern":   pattern,
		"condition": condition,
	})
	if err != nil {
		return "", fmt.Errorf("StatementHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainStatement, canonical), nil
}

// TemplateHash computes the ID of a named template. Two templates with
// the same triples but different names hash differently.
func TemplateHash(name string, pattern, condition Pattern) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"name":      name,
		"pattern":   pattern,
		"condition": condition,
	})
	if err != nil {
		return "", fmt.Errorf("TemplateHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTemplate, canonical), nil
}

// MustStatementHash is like StatementHash but panics on error.
// Term values are always strings, so this only panics on a nil term or a
// foreign Term implementation.
func MustStatementHash(pattern, condition Pattern) string {
	id, err := StatementHash(pattern, condition)
	if err != nil {
		panic(err)
	}
	return id
}
