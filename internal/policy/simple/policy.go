// Package simple contains the job admission policy.
package simple

import (
	"slices"
	"strings"
)

// Policy admits scrape jobs for a fixed set of categories.
type Policy struct {
	allowed map[string]struct{}
}

// New creates a Policy. An empty list admits every category.
func New(categories []string) *Policy {
	p := &Policy{allowed: make(map[string]struct{}, len(categories))}
	for _, c := range categories {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			p.allowed[c] = struct{}{}
		}
	}
	return p
}

// AllowCategory reports whether jobs for category may be queued.
func (p *Policy) AllowCategory(category string) bool {
	if p == nil || len(p.allowed) == 0 {
		return true
	}
	_, ok := p.allowed[strings.ToLower(strings.TrimSpace(category))]
	return ok
}

// Categories lists the admitted categories in sorted order; nil means any.
func (p *Policy) Categories() []string {
	if p == nil || len(p.allowed) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.allowed))
	for c := range p.allowed {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}
