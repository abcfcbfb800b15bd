// Package id generates the prefixed random identifiers used for sessions and requests.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Known prefixes.
const (
	PrefixSession = "sess"
	PrefixRequest = "req"
)

// nanoidLength is the go-nanoid default.
const nanoidLength = 21

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "sess-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// HasPrefix reports whether s looks like an ID produced by Generate(prefix).
// Used to reject forged or truncated identifiers before they reach storage keys.
func HasPrefix(s, prefix string) bool {
	rest, ok := strings.CutPrefix(s, prefix+"-")
	if !ok || len(rest) != nanoidLength {
		return false
	}
	for _, c := range rest {
		if !isURLSafe(c) {
			return false
		}
	}
	return true
}

func isURLSafe(c rune) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '-'
}
