package routeguard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPattern is returned when a protected-route pattern cannot be compiled
var ErrInvalidPattern = errors.New("invalid route pattern")

// segmentKind describes how a single pattern segment matches a path segment
type segmentKind int

const (
	segmentLiteral segmentKind = iota
	segmentParam               // :name, exactly one non-empty segment
	segmentZeroOrMore          // :name*, trailing only
	segmentOneOrMore           // :name+, trailing only
)

type segment struct {
	kind  segmentKind
	value string // literal text or parameter name
}

// Pattern is a compiled protected-route pattern such as "/dashboard/:path*"
type Pattern struct {
	raw      string
	segments []segment
}

// String returns the pattern as it was configured
func (p Pattern) String() string {
	return p.raw
}

// CompilePattern parses a glob-style path pattern.
//
// Supported syntax:
//
//	/dashboard            the prefix and every sub-path
//	/dashboard/:path*     same as above, written explicitly
//	/dashboard/:path+     sub-paths only, not /dashboard itself
//	/orgs/:id/settings    :id matches exactly one segment
func CompilePattern(raw string) (Pattern, error) {
	if raw == "" || raw[0] != '/' {
		return Pattern{}, fmt.Errorf("%w: %q must start with /", ErrInvalidPattern, raw)
	}

	parts := strings.Split(raw[1:], "/")
	// "/" protects everything
	if len(parts) == 1 && parts[0] == "" {
		return Pattern{raw: raw}, nil
	}

	segments := make([]segment, 0, len(parts))
	for i, part := range parts {
		last := i == len(parts)-1
		if part == "" {
			// a trailing slash in the pattern adds nothing to the prefix
			if last {
				break
			}
			return Pattern{}, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPattern, raw)
		}

		if !strings.HasPrefix(part, ":") {
			if strings.ContainsAny(part, "*+") {
				return Pattern{}, fmt.Errorf("%w: %q uses a wildcard outside a parameter", ErrInvalidPattern, raw)
			}
			segments = append(segments, segment{kind: segmentLiteral, value: part})
			continue
		}

		name := part[1:]
		kind := segmentParam
		switch {
		case strings.HasSuffix(name, "*"):
			kind = segmentZeroOrMore
			name = strings.TrimSuffix(name, "*")
		case strings.HasSuffix(name, "+"):
			kind = segmentOneOrMore
			name = strings.TrimSuffix(name, "+")
		}
		if name == "" || strings.ContainsAny(name, "*+:") {
			return Pattern{}, fmt.Errorf("%w: %q has an invalid parameter name", ErrInvalidPattern, raw)
		}
		if kind != segmentParam && !last {
			return Pattern{}, fmt.Errorf("%w: %q wildcard must be the last segment", ErrInvalidPattern, raw)
		}
		segments = append(segments, segment{kind: kind, value: name})
	}

	return Pattern{raw: raw, segments: segments}, nil
}

// Match reports whether path falls under the pattern.
// Matching is case-sensitive and trailing slashes are not normalized.
func (p Pattern) Match(path string) bool {
	if path == "" || path[0] != '/' {
		return false
	}
	parts := strings.Split(path[1:], "/")

	for i, seg := range p.segments {
		switch seg.kind {
		case segmentZeroOrMore:
			return true
		case segmentOneOrMore:
			return hasNonEmpty(parts[i:])
		}

		if i >= len(parts) {
			return false
		}
		switch seg.kind {
		case segmentLiteral:
			if parts[i] != seg.value {
				return false
			}
		case segmentParam:
			if parts[i] == "" {
				return false
			}
		}
	}

	// Every segment matched: the path is the prefix itself or one of its sub-paths
	return true
}

func hasNonEmpty(parts []string) bool {
	for _, part := range parts {
		if part != "" {
			return true
		}
	}
	return false
}

// Matcher classifies request paths against an ordered set of protected patterns.
// A Matcher is immutable once built and safe for concurrent use.
type Matcher struct {
	patterns []Pattern
}

// NewMatcher compiles the given patterns in order
func NewMatcher(patterns ...string) (*Matcher, error) {
	compiled := make([]Pattern, 0, len(patterns))
	for _, raw := range patterns {
		p, err := CompilePattern(strings.TrimSpace(raw))
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, p)
	}
	return &Matcher{patterns: compiled}, nil
}

// MustNewMatcher is like NewMatcher but panics on an invalid pattern
func MustNewMatcher(patterns ...string) *Matcher {
	m, err := NewMatcher(patterns...)
	if err != nil {
		panic(err)
	}
	return m
}

// IsProtected reports whether path matches any configured pattern
func (m *Matcher) IsProtected(path string) bool {
	_, ok := m.MatchedPattern(path)
	return ok
}

// MatchedPattern returns the first pattern that matches path
func (m *Matcher) MatchedPattern(path string) (Pattern, bool) {
	for _, p := range m.patterns {
		if p.Match(path) {
			return p, true
		}
	}
	return Pattern{}, false
}

// Patterns returns the configured patterns in order
func (m *Matcher) Patterns() []string {
	out := make([]string, len(m.patterns))
	for i, p := range m.patterns {
		out[i] = p.raw
	}
	return out
}
