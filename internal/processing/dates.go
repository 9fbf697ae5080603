package processing

import (
	"regexp"
	"strings"
	"time"
)

var publishedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

var (
	isoDate  = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	usDate   = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
	longDate = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
)

// ParsePublished parses a provider-supplied timestamp in any of the
// commonly seen layouts.
func ParsePublished(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// ExtractDate recovers a date written inside free text. ISO dates win over
// US slash dates, which win over spelled-out month dates.
func ExtractDate(text string) (time.Time, bool) {
	if m := isoDate.FindString(text); m != "" {
		if ts, err := time.Parse("2006-01-02", m); err == nil {
			return ts.UTC(), true
		}
	}
	if m := usDate.FindString(text); m != "" {
		if ts, err := time.Parse("1/2/2006", m); err == nil {
			return ts.UTC(), true
		}
	}
	if m := longDate.FindStringSubmatch(text); m != nil {
		month := strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
		if ts, err := time.Parse("January 2 2006", month+" "+m[2]+" "+m[3]); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// FreshnessDate estimates a date from freshness wording when no explicit
// date is present. Unrecognized text lands within the last week.
func FreshnessDate(text string, now time.Time) time.Time {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "today"),
		strings.Contains(lower, "breaking"),
		strings.Contains(lower, "just now"),
		strings.Contains(lower, "hours ago"):
		return now
	case strings.Contains(lower, "yesterday"):
		return now.AddDate(0, 0, -1)
	case strings.Contains(lower, "this week"),
		strings.Contains(lower, "days ago"):
		return now.AddDate(0, 0, -3)
	default:
		return now.AddDate(0, 0, -7)
	}
}
