// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Field extractors over free-form citation strings. Each is pure and
// reports whether it found a value.

var (
	doiRe = regexp.MustCompile(`10\.\d{4,9}/[^\s"<>]+`)

	pageRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bpages?\s+(\d+\s*[-–]\s*\d+)`),
		regexp.MustCompile(`(?i)\bpp?\.\s*(\d+\s*[-–]\s*\d+)`),
		regexp.MustCompile(`(\d+\s*[-–]\s*\d+)`),
	}

	volumeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bvol(?:ume)?\.?\s*(\d+)`),
		regexp.MustCompile(`(\d+)\s*\(\d{1,3}\)`),
	}

	issueRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:issue|number|no\.)\s*(\d+)`),
		regexp.MustCompile(`\d+\s*\((\d{1,3})\)`),
	}

	yearHintRe = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	dashRe     = regexp.MustCompile(`\s*[-–]\s*`)
)

// ExtractDOI returns the first DOI in s, without trailing punctuation.
func ExtractDOI(s string) (string, bool) {
	m := doiRe.FindString(s)
	m = strings.TrimRight(m, ".,;)]")
	return m, m != ""
}

// ExtractPages returns a page range such as "45-67".
func ExtractPages(s string) (string, bool) {
	for _, re := range pageRes {
		if m := re.FindStringSubmatch(s); m != nil {
			return dashRe.ReplaceAllString(m[1], "-"), true
		}
	}
	return "", false
}

// ExtractVolume returns the volume number.
func ExtractVolume(s string) (string, bool) {
	return firstGroup(volumeRes, s)
}

// ExtractIssue returns the issue number.
func ExtractIssue(s string) (string, bool) {
	return firstGroup(issueRes, s)
}

// ExtractYearHint returns the first 19xx or 20xx year embedded in s.
func ExtractYearHint(s string) (int, bool) {
	m := yearHintRe.FindString(s)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	return y, err == nil
}

func firstGroup(res []*regexp.Regexp, s string) (string, bool) {
	for _, re := range res {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
	}
	return "", false
}
