// Package edgekey derives order-independent identities for undirected edges.
package edgekey

import "strings"

// Separator joins the two endpoint ids inside a key.
const Separator = "||"

// Key returns the canonical key of the undirected edge (a, b). Ids are
// compared as raw strings, never parsed as numbers.
func Key(a, b string) string {
	if a <= b {
		return a + Separator + b
	}
	return b + Separator + a
}

// Split returns the endpoints encoded in a key, lexically smaller first.
func Split(key string) (string, string, bool) {
	a, b, ok := strings.Cut(key, Separator)
	if !ok {
		return "", "", false
	}
	return a, b, true
}
