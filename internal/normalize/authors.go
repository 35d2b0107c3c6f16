// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import "strings"

// CorrespondingMarker flags the corresponding author in the provider's
// author string.
const CorrespondingMarker = "✉"

// ParseAuthors splits a comma-separated author string into names. The
// corresponding marker is stripped and truncation markers ("...", "…")
// are dropped.
func ParseAuthors(raw string) []string {
	parts := strings.Split(raw, ",")
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(strings.ReplaceAll(p, CorrespondingMarker, ""))
		if name == "" || isTruncation(name) {
			continue
		}
		authors = append(authors, name)
	}
	return authors
}

// HasCorrespondingMarker reports whether the raw author string carries the
// corresponding-author marker.
func HasCorrespondingMarker(raw string) bool {
	return strings.Contains(raw, CorrespondingMarker)
}

// MatchesAlias reports whether name contains any alias, ignoring case.
func MatchesAlias(name string, aliases []string) bool {
	lower := strings.ToLower(name)
	for _, a := range aliases {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" && strings.Contains(lower, a) {
			return true
		}
	}
	return false
}

// DefaultAliases derives identity aliases from a profile name: the full
// name and its last token (the surname as it appears in abbreviated
// author lists such as "R Smith").
func DefaultAliases(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	fields := strings.Fields(name)
	if len(fields) == 1 {
		return []string{name}
	}
	return []string{name, fields[len(fields)-1]}
}

func isTruncation(s string) bool {
	return s == "..." || s == "…" || strings.Trim(s, ".…") == ""
}
