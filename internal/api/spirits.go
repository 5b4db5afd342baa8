package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/spirits-scraper/internal/brand"
	"github.com/JakeFAU/spirits-scraper/internal/cleaner"
	"github.com/JakeFAU/spirits-scraper/internal/dedup"
	"github.com/JakeFAU/spirits-scraper/internal/extract"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// maxNames bounds the names accepted by the batch heuristics endpoints.
const maxNames = 100

type dedupeRequest struct {
	A         spirits.Candidate `json:"a"`
	B         spirits.Candidate `json:"b"`
	Threshold *float64          `json:"threshold"`
}

type dedupeResponse struct {
	spirits.Verdict
	KeyA      string  `json:"key_a"`
	KeyB      string  `json:"key_b"`
	Threshold float64 `json:"threshold"`
}

func (s *Server) dedupeCheck(w http.ResponseWriter, r *http.Request) {
	var req dedupeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	threshold := valueOrDefault(req.Threshold, s.cfg.Scraper.DuplicateThreshold)
	if threshold <= 0 || threshold > 1 {
		writeError(w, http.StatusBadRequest, "threshold must be in (0, 1]")
		return
	}
	writeJSON(w, http.StatusOK, dedupeResponse{
		Verdict:   dedup.IsDuplicate(req.A, req.B, threshold),
		KeyA:      dedup.NormalizeKey(req.A.Name),
		KeyB:      dedup.NormalizeKey(req.B.Name),
		Threshold: threshold,
	})
}

type namesRequest struct {
	Names []string `json:"names"`
}

func (s *Server) decodeNames(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req namesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if len(req.Names) == 0 {
		writeError(w, http.StatusBadRequest, "names required")
		return nil, false
	}
	if len(req.Names) > maxNames {
		writeError(w, http.StatusBadRequest, "too many names")
		return nil, false
	}
	return req.Names, true
}

type brandResult struct {
	Name  string `json:"name"`
	Brand string `json:"brand"`
	Known bool   `json:"known"`
}

func (s *Server) brandExtract(w http.ResponseWriter, r *http.Request) {
	names, ok := s.decodeNames(w, r)
	if !ok {
		return
	}
	out := make([]brandResult, 0, len(names))
	for _, name := range names {
		b := brand.Extract(name)
		out = append(out, brandResult{Name: name, Brand: b, Known: brand.IsValid(b)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

type normalizeResult struct {
	Input      string  `json:"input"`
	Name       string  `json:"name"`
	Key        string  `json:"key"`
	Brand      string  `json:"brand"`
	Type       string  `json:"type"`
	SubType    string  `json:"sub_type,omitempty"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

func (s *Server) normalize(w http.ResponseWriter, r *http.Request) {
	names, ok := s.decodeNames(w, r)
	if !ok {
		return
	}
	out := make([]normalizeResult, 0, len(names))
	for _, input := range names {
		name := cleaner.NormalizeName(cleaner.FixTextSpacing(input))
		b := brand.Extract(name)
		d := extract.DetectType(name, b, "")
		out = append(out, normalizeResult{
			Input:      input,
			Name:       name,
			Key:        dedup.NormalizeKey(name),
			Brand:      b,
			Type:       d.Type,
			SubType:    d.SubType,
			Category:   extract.CategoryFor(d.Type),
			Confidence: d.Confidence,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (s *Server) searchSpirits(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		writeError(w, http.StatusBadRequest, "q required")
		return
	}
	limit, err := queryLimit(r, spirits.DefaultSearchLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs, err := s.deps.Repository.Search(r.Context(), term, limit)
	if err != nil {
		s.logger.Error("spirit search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"spirits": nonNil(recs), "count": len(recs)})
}

func (s *Server) spiritStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Repository.Stats(r.Context())
	if err != nil {
		s.logger.Error("spirit stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "stats failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) needingEnrichment(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, spirits.DefaultEnrichmentLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs, err := s.deps.Repository.NeedingEnrichment(r.Context(), limit)
	if err != nil {
		s.logger.Error("enrichment query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "enrichment query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"spirits": nonNil(recs), "count": len(recs)})
}

func queryLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > 500 {
		return 0, errors.New("limit must be between 1 and 500")
	}
	return n, nil
}

func nonNil(recs []spirits.Record) []spirits.Record {
	if recs == nil {
		return []spirits.Record{}
	}
	return recs
}
