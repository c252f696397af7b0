// Package utils provides small generic helpers shared across the ledger packages.
package utils

import (
	"regexp"
	"strings"
)

// Map applies f to every element of items.
func Map[A any, B any](items []A, f func(A, uint64) B) []B {
	out := make([]B, len(items))
	for i, item := range items {
		out[i] = f(item, uint64(i))
	}
	return out
}

var notSnake = regexp.MustCompile(`[^a-zA-Z0-9]+`)
var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// SnakeCase converts CamelCase, kebab-case and dotted names to snake_case.
func SnakeCase(s string) string {
	s = camelBoundary.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(notSnake.ReplaceAllString(s, "_"))
}
