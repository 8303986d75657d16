// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil holds the pure text helpers shared by retrieval,
// extraction, and the quality gates.
package textutil

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLen is the exclusive lower bound on token length.
const minTokenLen = 2

// TokenSet is an unordered set of tokens.
type TokenSet map[string]struct{}

// Tokenize lowercases s, turns every non-alphanumeric rune into a space,
// and keeps the tokens longer than two runes.
func Tokenize(s string) TokenSet {
	set := make(TokenSet)
	for _, tok := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if utf8.RuneCountInString(tok) > minTokenLen {
			set[tok] = struct{}{}
		}
	}
	return set
}

// TokenizeAll returns the union of the token sets of every input.
func TokenizeAll(parts ...string) TokenSet {
	set := make(TokenSet)
	for _, p := range parts {
		set.Add(Tokenize(p))
	}
	return set
}

// Add merges other into s.
func (s TokenSet) Add(other TokenSet) {
	for tok := range other {
		s[tok] = struct{}{}
	}
}

// Has reports membership.
func (s TokenSet) Has(tok string) bool {
	_, ok := s[tok]
	return ok
}

// Sorted returns the tokens in ascending order.
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for tok := range s {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// Overlap counts the distinct tokens present in both sets.
func Overlap(a, b TokenSet) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if b.Has(tok) {
			n++
		}
	}
	return n
}

// CollapseWhitespace replaces every run of whitespace with one space and
// trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n runes and trims trailing whitespace.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:n]), unicode.IsSpace)
}

// ContainsAny reports whether text contains any phrase, case-insensitively.
func ContainsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Round rounds f to the given number of decimal places.
func Round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
