package memory

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/JakeFAU/spirits-scraper/internal/brand"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// SpiritStore implements spirits.Repository in memory for development and tests.
type SpiritStore struct {
	mu         sync.RWMutex
	seq        int
	order      []string
	spirits    map[string]spirits.Record
	brands     map[string]string
	categories map[string]string
	links      map[string][]string
}

// NewSpiritStore constructs an empty SpiritStore.
func NewSpiritStore() *SpiritStore {
	return &SpiritStore{
		spirits:    make(map[string]spirits.Record),
		brands:     make(map[string]string),
		categories: make(map[string]string),
		links:      make(map[string][]string),
	}
}

// FindExact returns the spirit with exactly this name and brand.
func (s *SpiritStore) FindExact(_ context.Context, name, brandName string) (spirits.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		r := s.spirits[id]
		if r.Name == name && r.Brand == brandName {
			return r, nil
		}
	}
	return spirits.Record{}, spirits.ErrNotFound
}

// FindCandidates returns spirits whose name contains name or whose brand
// contains brandName, case-insensitively.
func (s *SpiritStore) FindCandidates(_ context.Context, name, brandName string, limit int) ([]spirits.Record, error) {
	if limit <= 0 {
		limit = spirits.DefaultCandidateLimit
	}
	name, brandName = strings.ToLower(name), strings.ToLower(brandName)
	return s.collect(limit, func(r spirits.Record) bool {
		return (name != "" && strings.Contains(strings.ToLower(r.Name), name)) ||
			(brandName != "" && strings.Contains(strings.ToLower(r.Brand), brandName))
	}), nil
}

// Insert stores rec and returns its new ID.
func (s *SpiritStore) Insert(_ context.Context, rec spirits.Record) (string, error) {
	if strings.TrimSpace(rec.Name) == "" {
		return "", fmt.Errorf("insert spirit: %w", spirits.ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	rec.ID = fmt.Sprintf("spirit-%d", s.seq)
	rec.CreatedAt = time.Now().UTC()
	s.spirits[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return rec.ID, nil
}

// EnsureBrand returns the ID for the brand's slug, creating it on first use.
func (s *SpiritStore) EnsureBrand(_ context.Context, name string) (string, error) {
	slug := brand.Slug(name)
	if slug == "" {
		return "", fmt.Errorf("ensure brand %q: empty slug", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.brands[slug]; ok {
		return id, nil
	}
	id := fmt.Sprintf("brand-%d", len(s.brands)+1)
	s.brands[slug] = id
	return id, nil
}

// LinkCategory attaches a category to a stored spirit, creating the category
// when needed. Linking twice is a no-op.
func (s *SpiritStore) LinkCategory(_ context.Context, spiritID, category string) error {
	slug := brand.Slug(category)
	if slug == "" {
		return fmt.Errorf("link category %q: empty slug", category)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.spirits[spiritID]; !ok {
		return fmt.Errorf("link category to %s: %w", spiritID, spirits.ErrNotFound)
	}
	if _, ok := s.categories[slug]; !ok {
		s.categories[slug] = category
	}
	if !slices.Contains(s.links[spiritID], slug) {
		s.links[spiritID] = append(s.links[spiritID], slug)
	}
	return nil
}

// Categories returns the category names linked to a spirit.
func (s *SpiritStore) Categories(spiritID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.links[spiritID]))
	for _, slug := range s.links[spiritID] {
		out = append(out, s.categories[slug])
	}
	return out
}

// Update applies the non-nil fields of update.
func (s *SpiritStore) Update(_ context.Context, id string, update spirits.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.spirits[id]
	if !ok {
		return fmt.Errorf("update spirit %s: %w", id, spirits.ErrNotFound)
	}
	if update.ABV != nil {
		r.ABV = *update.ABV
	}
	if update.Description != nil {
		r.Description = *update.Description
	}
	if update.PriceRange != nil {
		r.PriceRange = *update.PriceRange
	}
	if update.ImageURL != nil {
		r.ImageURL = *update.ImageURL
	}
	if update.Type != nil {
		r.Type = *update.Type
	}
	s.spirits[id] = r
	return nil
}

// NeedingEnrichment returns spirits missing ABV, description, price range or image.
func (s *SpiritStore) NeedingEnrichment(_ context.Context, limit int) ([]spirits.Record, error) {
	if limit <= 0 {
		limit = spirits.DefaultEnrichmentLimit
	}
	return s.collect(limit, spirits.Record.NeedsEnrichment), nil
}

// Stats summarizes stored spirits.
func (s *SpiritStore) Stats(_ context.Context) (spirits.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := spirits.Stats{
		TotalSpirits: len(s.spirits),
		TotalBrands:  len(s.brands),
		ByType:       make(map[string]int),
	}
	for _, r := range s.spirits {
		stats.ByType[cmp.Or(r.Type, "Spirit")]++
		if r.NeedsEnrichment() {
			stats.NeedingEnrichment++
		}
	}
	return stats, nil
}

// Search matches term against name, brand and description, best quality first.
func (s *SpiritStore) Search(_ context.Context, term string, limit int) ([]spirits.Record, error) {
	if limit <= 0 {
		limit = spirits.DefaultSearchLimit
	}
	term = strings.ToLower(strings.TrimSpace(term))
	matches := s.collect(math.MaxInt, func(r spirits.Record) bool {
		return strings.Contains(strings.ToLower(r.Name), term) ||
			strings.Contains(strings.ToLower(r.Brand), term) ||
			strings.Contains(strings.ToLower(r.Description), term)
	})
	slices.SortStableFunc(matches, func(a, b spirits.Record) int {
		return cmp.Compare(b.QualityScore, a.QualityScore)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *SpiritStore) collect(limit int, keep func(spirits.Record) bool) []spirits.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []spirits.Record
	for _, id := range s.order {
		if len(out) >= limit {
			break
		}
		if r := s.spirits[id]; keep(r) {
			out = append(out, r)
		}
	}
	return out
}
