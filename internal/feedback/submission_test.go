package feedback

import (
	"errors"
	"net/http"
	"testing"

	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/apierr"
)

func TestParseSubmissionHelpfulTruthySet(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"yes", true},
		{"YES", true},
		{"true", true},
		{"True", true},
		{"t", true},
		{"T", true},
		{"1", true},
		{"no", false},
		{"false", false},
		{"0", false},
		{"maybe", false},
		{"", false},
	}
	for _, tc := range cases {
		body := "url=https%3A%2F%2Fexample.com%2Fdocs&helpful=" + tc.value
		sub, err := ParseSubmission(body, nil)
		if err != nil {
			t.Fatalf("helpful=%q: unexpected error: %v", tc.value, err)
		}
		if sub.Helpful != tc.want {
			t.Fatalf("helpful=%q: got %v want %v", tc.value, sub.Helpful, tc.want)
		}
	}
}

func TestParseSubmissionHelpfulAbsentIsFalse(t *testing.T) {
	sub, err := ParseSubmission("url=https%3A%2F%2Fexample.com", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Helpful {
		t.Fatalf("absent helpful should coerce to false")
	}
}

func TestParseSubmissionDropsUnknownFields(t *testing.T) {
	body := "url=https%3A%2F%2Fexample.com&helpful=yes&evil=1&admin=true&reason=missing"
	sub, err := ParseSubmission(body, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	props := sub.props()
	for _, key := range []string{"evil", "admin"} {
		if _, ok := props[key]; ok {
			t.Fatalf("unknown field %q leaked into props", key)
		}
	}
	if props["reason"] != "missing" {
		t.Fatalf("whitelisted field dropped: %v", props["reason"])
	}
}

func TestParseSubmissionHeaders(t *testing.T) {
	header := http.Header{}
	header.Set("User-Agent", "Mozilla/5.0")
	header.Set("Referer", "https://example.com/docs")

	sub, err := ParseSubmission("url=https%3A%2F%2Fexample.com", header)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.UserAgent != "Mozilla/5.0" || sub.Referer != "https://example.com/docs" {
		t.Fatalf("headers not attached: %+v", sub)
	}

	// Missing headers are absent values, not errors.
	sub, err = ParseSubmission("url=https%3A%2F%2Fexample.com", http.Header{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.UserAgent != "" || sub.Referer != "" {
		t.Fatalf("expected empty header fields, got %+v", sub)
	}
	if _, ok := sub.props()["referer"]; ok {
		t.Fatalf("absent referer should not be persisted")
	}
}

func TestParseSubmissionMissingURL(t *testing.T) {
	_, err := ParseSubmission("helpful=yes&reason=whatever", nil)
	if err == nil {
		t.Fatalf("expected error for missing url")
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected apierr.Error, got %T", err)
	}
	if ae.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", ae.Status)
	}
}

func TestSubmissionPropsNeverCarryTimestamp(t *testing.T) {
	sub, err := ParseSubmission("url=https%3A%2F%2Fexample.com&timestamp=2020-01-01T00%3A00%3A00Z", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sub.props()["timestamp"]; ok {
		t.Fatalf("timestamp must be server-assigned, never client-supplied")
	}
}
