// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"encoding/json"
	"time"

	"github.com/marchanero/scholar-engine/pkg/types"
)

// document is a decoded artifact with its top-level fields left raw so each
// layer's shape can be probed without a dedicated type per file.
type document map[string]json.RawMessage

func (d document) field(path ...string) (json.RawMessage, bool) {
	cur := d
	for i, key := range path {
		raw, ok := cur[key]
		if !ok || string(raw) == "null" {
			return nil, false
		}
		if i == len(path)-1 {
			return raw, true
		}
		var next document
		if err := json.Unmarshal(raw, &next); err != nil {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

func (d document) list(path ...string) ([]json.RawMessage, bool) {
	raw, ok := d.field(path...)
	if !ok {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (d document) str(path ...string) string {
	raw, ok := d.field(path...)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (d document) number(path ...string) (int, bool) {
	raw, ok := d.field(path...)
	if !ok {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return int(n), true
}

func (d document) stamp() string {
	return d.str("lastUpdated")
}

func (d document) lastUpdated() (time.Time, bool) {
	s := d.stamp()
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (d document) metrics() (types.KeyMetrics, bool) {
	raw, ok := d.field("metrics")
	if !ok {
		return types.KeyMetrics{}, false
	}
	var m types.KeyMetrics
	if err := json.Unmarshal(raw, &m); err != nil {
		return types.KeyMetrics{}, false
	}
	return m, true
}

func (d document) hasMetrics() bool {
	if _, ok := d.metrics(); ok {
		return true
	}
	_, ok := d.number("author", "reportedMetrics", "citations")
	return ok
}

// hasAuthor accepts the author block of the basic and detailed layers, the
// summary's authorProfile, or the pagination layer's provenance.
func (d document) hasAuthor() bool {
	return d.str("author", "name") != "" ||
		d.str("authorProfile", "name") != "" ||
		d.str("provenance", "authorId") != ""
}

// publicationLists are probed in order for a record count.
var publicationLists = [][]string{
	{"allPublications"},
	{"publications"},
	{"researchImpact", "topPublications"},
}

func (d document) hasPublications() bool {
	n, ok := d.publicationCount()
	return ok && n > 0
}

func (d document) publicationCount() (int, bool) {
	for _, path := range publicationLists {
		if items, ok := d.list(path...); ok {
			return len(items), true
		}
	}
	return d.number("pagination", "totalPublications")
}

// records falls back to the number of top-level keys for layers without a
// publication list.
func (d document) records() int {
	if n, ok := d.publicationCount(); ok {
		return n
	}
	return len(d)
}
