package feedback

import (
	"net/url"
	"strings"
)

type pathRule struct {
	marker  string
	project string
}

type hostRule struct {
	domain  string
	project string
}

// ProjectResolver maps a submission to its owning project name. Pure
// and total: any url string resolves to something, worst case the
// configured fallback.
type ProjectResolver struct {
	pathRules []pathRule
	hostRules []hostRule
	fallback  string
}

// NewProjectResolver builds a resolver with the known documentation
// sub-paths and secondary site domains. The fallback name is
// deployment configuration.
func NewProjectResolver(fallback string) *ProjectResolver {
	return &ProjectResolver{
		pathRules: []pathRule{
			{marker: "/docs/labs/neo4j-streams", project: "neo4j-streams"},
		},
		hostRules: []hostRule{
			{domain: "grandstack.io", project: "GRANDstack"},
		},
		fallback: fallback,
	}
}

// Resolve applies the precedence order: explicit project field, path
// marker, host domain, fallback. First match wins.
func (r *ProjectResolver) Resolve(explicit, rawURL string) string {
	if explicit != "" {
		return explicit
	}
	if u, err := url.Parse(rawURL); err == nil {
		for _, pr := range r.pathRules {
			if strings.Contains(u.Path, pr.marker) {
				return pr.project
			}
		}
		host := u.Hostname()
		for _, hr := range r.hostRules {
			if host == hr.domain || strings.HasSuffix(host, "."+hr.domain) {
				return hr.project
			}
		}
	}
	return r.fallback
}
