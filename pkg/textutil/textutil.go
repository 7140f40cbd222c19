// Package textutil provides the small string transforms shared by the
// semantic label builder and the context assembler.
package textutil

import "strings"

// Truncate shortens s to at most max runes, appending an ellipsis when it
// does; when max is below 3 the result is the ellipsis itself cut to max.
// Strings already at or under the limit are returned unchanged.
func Truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	if max < 3 {
		return "..."[:max]
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// CapitalizeFirst upper-cases the first Unicode code point of s and leaves
// the rest untouched.
func CapitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

// HumanizeSnake turns a snake_case identifier into a lowercase phrase.
//
//	HumanizeSnake("product_clicked") == "product clicked"
func HumanizeSnake(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", " "))
}

// HyphensToSnake replaces hyphens with underscores, preserving case.
// Used to turn PostHog's data-ph-capture-attribute-* attribute names into
// context keys.
func HyphensToSnake(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}
