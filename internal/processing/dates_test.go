package processing_test

import (
	"testing"
	"time"

	"github.com/Avinav1299/RealityCheck-sub000/internal/processing"
	"github.com/stretchr/testify/require"
)

func TestParsePublished(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{name: "rfc3339", raw: "2024-03-05T10:30:00Z", want: time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC), ok: true},
		{name: "date only", raw: "2024-03-05", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "space separated", raw: "2024-03-05 10:30:00", want: time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC), ok: true},
		{name: "rfc1123z", raw: "Tue, 05 Mar 2024 10:30:00 +0000", want: time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC), ok: true},
		{name: "garbage", raw: "soon", ok: false},
		{name: "empty", raw: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := processing.ParsePublished(tt.raw)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			}
		})
	}
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
		ok   bool
	}{
		{name: "iso", text: "incident reported 2024-01-05 downtown", want: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "us slash", text: "filed on 1/5/2024 in court", want: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "long month", text: "published January 5, 2024 by the desk", want: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "ordinal suffix", text: "on March 3rd, 2023 the vote passed", want: time.Date(2023, 3, 3, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "lowercase month", text: "updated january 5, 2024", want: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "iso wins over month", text: "2023-12-31 recap of January 5, 2024", want: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "none", text: "sometime soon", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := processing.ExtractDate(tt.text)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			}
		})
	}
}

func TestFreshnessDate(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{name: "today", text: "breaking update today", want: now},
		{name: "hours ago", text: "posted 3 hours ago", want: now},
		{name: "yesterday", text: "as of yesterday", want: now.AddDate(0, 0, -1)},
		{name: "this week", text: "earlier this week", want: now.AddDate(0, 0, -3)},
		{name: "days ago", text: "two days ago", want: now.AddDate(0, 0, -3)},
		{name: "default last week", text: "no hints here", want: now.AddDate(0, 0, -7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.FreshnessDate(tt.text, now))
		})
	}
}
