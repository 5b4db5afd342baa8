// Package ingest stores extracted spirits after validation and duplicate checks.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/spirits-scraper/internal/clock/system"
	"github.com/JakeFAU/spirits-scraper/internal/dedup"
	"github.com/JakeFAU/spirits-scraper/internal/logging"
	"github.com/JakeFAU/spirits-scraper/internal/metrics"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
	"github.com/JakeFAU/spirits-scraper/internal/validate"
)

// EventStored is published for every newly inserted spirit.
const EventStored = "spirit.stored"

// DefaultBatchSize is the number of records stored concurrently by StoreBatch.
const DefaultBatchSize = 10

// Config tunes the store flow.
type Config struct {
	Threshold      float64
	BatchSize      int
	CandidateLimit int
}

// StoreResult describes what happened to one record.
type StoreResult struct {
	Record    spirits.Record  `json:"record"`
	ID        string          `json:"id,omitempty"`
	Stored    bool            `json:"stored"`
	Duplicate bool            `json:"duplicate"`
	Verdict   spirits.Verdict `json:"verdict"`
	Error     string          `json:"error,omitempty"`
}

// StoredEvent is the payload of EventStored.
type StoredEvent struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Brand    string    `json:"brand"`
	Type     string    `json:"type,omitempty"`
	Category string    `json:"category,omitempty"`
	Source   string    `json:"source_url,omitempty"`
	StoredAt time.Time `json:"stored_at"`
}

// Service runs validate → exact match → fuzzy match → insert → link → publish.
type Service struct {
	repo      spirits.Repository
	checker   *dedup.Checker
	publisher spirits.Publisher
	clock     spirits.Clock
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Service. publisher may be nil; a nil clock uses system time.
func New(
	repo spirits.Repository,
	publisher spirits.Publisher,
	clock spirits.Clock,
	cfg Config,
	logger *zap.Logger,
) *Service {
	logger = logging.OrNop(logger)
	if clock == nil {
		clock = system.New()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = spirits.DefaultCandidateLimit
	}
	return &Service{
		repo:      repo,
		checker:   dedup.NewChecker(cfg.Threshold, logger),
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// Store persists rec unless it duplicates an existing spirit. Invalid records
// return an error wrapping spirits.ErrInvalidRecord.
func (s *Service) Store(ctx context.Context, rec spirits.Record) (StoreResult, error) {
	clean, err := validate.Record(rec)
	if err != nil {
		return StoreResult{Record: rec}, err
	}
	result := StoreResult{Record: clean}

	existing, err := s.repo.FindExact(ctx, clean.Name, clean.Brand)
	switch {
	case err == nil:
		result.Duplicate = true
		result.ID = existing.ID
		result.Verdict = spirits.Verdict{IsDuplicate: true, Reason: "Exact match", Similarity: 1}
		metrics.ObserveDuplicate(dedup.ReasonClass(result.Verdict.Reason))
		return result, nil
	case !errors.Is(err, spirits.ErrNotFound):
		return result, fmt.Errorf("exact lookup: %w", err)
	}

	candidates, err := s.repo.FindCandidates(ctx, clean.Name, clean.Brand, s.cfg.CandidateLimit)
	if err != nil {
		return result, fmt.Errorf("candidate lookup: %w", err)
	}
	if match, verdict, ok := s.checker.FirstDuplicate(clean.Candidate(), candidates); ok {
		result.Duplicate = true
		result.ID = match.ID
		result.Verdict = verdict
		metrics.ObserveDuplicate(dedup.ReasonClass(verdict.Reason))
		s.logger.Debug("duplicate spirit skipped",
			zap.String("name", clean.Name),
			zap.String("existing", match.Name),
			zap.String("reason", verdict.Reason),
		)
		return result, nil
	}

	if _, err := s.repo.EnsureBrand(ctx, clean.Brand); err != nil {
		s.logger.Warn("ensure brand failed", zap.String("brand", clean.Brand), zap.Error(err))
	}
	id, err := s.repo.Insert(ctx, clean)
	if err != nil {
		return result, fmt.Errorf("insert: %w", err)
	}
	result.ID = id
	result.Record.ID = id
	result.Stored = true
	if clean.Category != "" {
		if err := s.repo.LinkCategory(ctx, id, clean.Category); err != nil {
			s.logger.Warn("link category failed", zap.String("spirit_id", id), zap.Error(err))
		}
	}
	metrics.ObserveStored(clean.Category)
	s.publish(ctx, result.Record)
	return result, nil
}

func (s *Service) publish(ctx context.Context, rec spirits.Record) {
	if s.publisher == nil {
		return
	}
	event := StoredEvent{
		ID:       rec.ID,
		Name:     rec.Name,
		Brand:    rec.Brand,
		Type:     rec.Type,
		Category: rec.Category,
		Source:   rec.SourceURL,
		StoredAt: s.clock.Now().UTC(),
	}
	if _, err := s.publisher.Publish(ctx, EventStored, event); err != nil {
		s.logger.Warn("publish stored event failed", zap.String("spirit_id", rec.ID), zap.Error(err))
	}
}

// StoreBatch stores recs in chunks of the configured batch size. Records in a
// chunk run concurrently; chunks run in order. Per-record failures are reported
// in the result's Error field, so only cancellation fails the batch.
func (s *Service) StoreBatch(ctx context.Context, recs []spirits.Record) ([]StoreResult, error) {
	results := make([]StoreResult, len(recs))
	for start := 0; start < len(recs); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(recs))
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				res, err := s.Store(gctx, recs[i])
				if err != nil {
					res.Error = err.Error()
				}
				results[i] = res
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return results[:end], fmt.Errorf("store batch: %w", err)
		}
	}
	return results, nil
}
