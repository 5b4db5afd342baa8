package spirits

import (
	"context"
	"time"
)

// Repository persists spirits and answers the lookups duplicate detection needs.
type Repository interface {
	FindExact(ctx context.Context, name, brand string) (Record, error)
	FindCandidates(ctx context.Context, name, brand string, limit int) ([]Record, error)
	Insert(ctx context.Context, rec Record) (string, error)
	EnsureBrand(ctx context.Context, name string) (string, error)
	LinkCategory(ctx context.Context, spiritID, category string) error
	Update(ctx context.Context, id string, update Update) error
	NeedingEnrichment(ctx context.Context, limit int) ([]Record, error)
	Stats(ctx context.Context) (Stats, error)
	Search(ctx context.Context, term string, limit int) ([]Record, error)
}

// SearchClient runs queries against the web search API.
type SearchClient interface {
	Search(ctx context.Context, q SearchQuery) (SearchPage, error)
}

// Cache stores raw search responses keyed by query fingerprint.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// JobStore persists job metadata and the spirits each job stored.
type JobStore interface {
	CreateJob(ctx context.Context, job Job) error
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errText string, counters JobCounters) error
	RecordSpirit(ctx context.Context, jobID, spiritID string) error
	GetJob(ctx context.Context, jobID string) (Job, error)
	ListSpirits(ctx context.Context, jobID string) ([]string, error)
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes stored-spirit events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// HeadlessDetector decides whether a headless fetch is warranted.
type HeadlessDetector interface {
	ShouldPromote(probe FetchResponse) bool
}

// Queue provides enqueue/dequeue semantics for discovery jobs.
type Queue interface {
	Enqueue(ctx context.Context, job QueueItem) error
	Dequeue(ctx context.Context) (QueueItem, error)
}

// Hasher computes digests for cache keys and blob names.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
