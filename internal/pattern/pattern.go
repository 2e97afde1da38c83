// Package pattern provides ban-list entry matching for executable paths.
// Entries are shell globs ("*", "?", "[...]" with "[!...]" negation) that
// treat the path as a flat string: a "*" crosses "/" freely, the way
// fnmatch(3) behaves with zero flags. Entries without glob metacharacters
// compare literally.
package pattern

import (
	"strings"

	"github.com/gobwas/glob"
)

// PatternType indicates the type of a compiled entry.
type PatternType int

const (
	// PatternTypeGlob is a wildcard entry (e.g., "SteamApp*").
	PatternTypeGlob PatternType = iota
	// PatternTypeLiteral is an exact path match.
	PatternTypeLiteral
)

// String returns the string representation of a PatternType.
func (t PatternType) String() string {
	switch t {
	case PatternTypeGlob:
		return "glob"
	case PatternTypeLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Pattern represents a compiled ban-list entry.
type Pattern struct {
	Raw      string      // Original entry string
	Type     PatternType // Type of entry
	compiled glob.Glob   // nil for literal entries
}

// Compile compiles one entry. It never fails: an entry whose glob syntax
// does not compile degrades to a literal match instead of being dropped,
// mirroring how fnmatch treats malformed patterns.
func Compile(s string) *Pattern {
	if !isGlobPattern(s) {
		return &Pattern{Raw: s, Type: PatternTypeLiteral}
	}
	g, err := glob.Compile(s)
	if err != nil {
		return &Pattern{Raw: s, Type: PatternTypeLiteral}
	}
	return &Pattern{Raw: s, Type: PatternTypeGlob, compiled: g}
}

// Check reports whether the entry's glob syntax is well formed. The shim
// matches malformed entries literally either way; this exists so editing
// tools can warn.
func Check(s string) error {
	if !isGlobPattern(s) {
		return nil
	}
	_, err := glob.Compile(s)
	return err
}

// isGlobPattern checks if a string contains glob special characters.
func isGlobPattern(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// Match checks if the input string matches the entry.
func (p *Pattern) Match(s string) bool {
	if p.Type == PatternTypeGlob {
		return p.compiled.Match(s)
	}
	return s == p.Raw
}

// String returns the original entry string.
func (p *Pattern) String() string {
	return p.Raw
}

// Set is an ordered collection of entries. A Set is immutable once built;
// the ban list swaps whole sets rather than mutating one in place.
type Set struct {
	patterns []*Pattern
}

// NewSet compiles entry strings into a Set, preserving order.
func NewSet(entries []string) *Set {
	s := &Set{patterns: make([]*Pattern, 0, len(entries))}
	for _, e := range entries {
		s.patterns = append(s.patterns, Compile(e))
	}
	return s
}

// MatchFirst returns the first entry matching the input, in file order.
// Order cannot change the verdict, but callers report which entry won.
func (s *Set) MatchFirst(input string) (string, bool) {
	return s.MatchFirstOf(input)
}

// MatchFirstOf returns the first entry matching any of the inputs. Each
// entry is tried against every input before the next entry is considered,
// so "first" still means file order even when a candidate has several
// forms.
func (s *Set) MatchFirstOf(inputs ...string) (string, bool) {
	for _, p := range s.patterns {
		for _, in := range inputs {
			if p.Match(in) {
				return p.Raw, true
			}
		}
	}
	return "", false
}

// MatchAny returns true if any entry in the set matches the input.
func (s *Set) MatchAny(input string) bool {
	_, ok := s.MatchFirst(input)
	return ok
}

// Strings returns the original entry strings in file order.
func (s *Set) Strings() []string {
	out := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		out[i] = p.Raw
	}
	return out
}

// Patterns returns the compiled entries in file order.
func (s *Set) Patterns() []*Pattern {
	out := make([]*Pattern, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// Len returns the number of entries in the set.
func (s *Set) Len() int {
	return len(s.patterns)
}
