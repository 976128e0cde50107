package feedback

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/apierr"
)

// Submission is one decoded "was this page helpful" form post. Fields
// outside the whitelist are dropped at parse time and never reach the
// graph.
type Submission struct {
	Project         string
	URL             string
	Identity        string
	GID             string
	UETSID          string
	Helpful         bool
	MoreInformation string
	Reason          string
	UserJourney     string
	UserAgent       string
	Referer         string
}

// ParseSubmission decodes a URL-encoded form body plus the request
// headers into a Submission. Unknown form fields are silently ignored;
// a missing url is the only malformed-request condition.
func ParseSubmission(body string, header http.Header) (Submission, error) {
	// Malformed escapes invalidate single pairs, not the whole body.
	values, _ := url.ParseQuery(body)

	sub := Submission{
		Project:         values.Get("project"),
		URL:             values.Get("url"),
		Identity:        values.Get("identity"),
		GID:             values.Get("gid"),
		UETSID:          values.Get("uetsid"),
		Helpful:         truthy(values.Get("helpful")),
		MoreInformation: values.Get("moreInformation"),
		Reason:          values.Get("reason"),
		UserJourney:     values.Get("userJourney"),
	}
	if header != nil {
		sub.UserAgent = header.Get("User-Agent")
		sub.Referer = header.Get("Referer")
	}
	if strings.TrimSpace(sub.URL) == "" {
		return Submission{}, apierr.New(http.StatusBadRequest, "missing_url",
			errors.New("submission url is required"))
	}
	return sub, nil
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "true", "t", "1":
		return true
	default:
		return false
	}
}

// props builds the property bag persisted onto the Feedback node.
// Optional fields the caller never sent stay absent rather than being
// written as empty strings. The timestamp is assigned by the store.
func (s Submission) props() map[string]any {
	props := map[string]any{
		"url":       s.URL,
		"helpful":   s.Helpful,
		"userAgent": s.UserAgent,
	}
	setIfPresent := func(key, val string) {
		if val != "" {
			props[key] = val
		}
	}
	setIfPresent("project", s.Project)
	setIfPresent("identity", s.Identity)
	setIfPresent("gid", s.GID)
	setIfPresent("uetsid", s.UETSID)
	setIfPresent("moreInformation", s.MoreInformation)
	setIfPresent("reason", s.Reason)
	setIfPresent("userJourney", s.UserJourney)
	setIfPresent("referer", s.Referer)
	return props
}
