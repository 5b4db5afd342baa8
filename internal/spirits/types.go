// Package spirits defines core types shared across subsystems.
package spirits

import (
	"errors"
	"net/http"
	"time"
)

// Sentinel errors shared by stores and the ingest pipeline.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid spirit record")
)

// UnknownBrand is the sentinel returned when no brand can be derived from a name.
const UnknownBrand = "Unknown"

// Default row limits for repository lookups when the caller passes zero.
const (
	DefaultCandidateLimit  = 10
	DefaultEnrichmentLimit = 50
	DefaultSearchLimit     = 20
)

// Record is a single spirit product extracted from a search result or catalog page.
type Record struct {
	ID            string    `json:"id,omitempty"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	Type          string    `json:"type,omitempty"`
	SubType       string    `json:"sub_type,omitempty"`
	Category      string    `json:"category,omitempty"`
	Description   string    `json:"description,omitempty"`
	ABV           float64   `json:"abv,omitempty"`
	Proof         float64   `json:"proof,omitempty"`
	Price         float64   `json:"price,omitempty"`
	PriceRange    string    `json:"price_range,omitempty"`
	AgeStatement  string    `json:"age_statement,omitempty"`
	Volume        string    `json:"volume,omitempty"`
	OriginCountry string    `json:"origin_country,omitempty"`
	Distillery    string    `json:"distillery,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	SourceURL     string    `json:"source_url,omitempty"`
	QualityScore  int       `json:"quality_score,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// Candidate returns the subset of the record the duplicate heuristic compares.
func (r Record) Candidate() Candidate {
	return Candidate{Name: r.Name, ABV: r.ABV}
}

// NeedsEnrichment reports whether any of the enrichable columns is still empty.
func (r Record) NeedsEnrichment() bool {
	return r.ABV == 0 || r.Description == "" || r.PriceRange == "" || r.ImageURL == ""
}

// Candidate is a spirit-like value compared for duplication. ABV of zero means unknown.
type Candidate struct {
	Name string  `json:"name"`
	ABV  float64 `json:"abv,omitempty"`
}

// Verdict is the outcome of a duplicate comparison.
type Verdict struct {
	IsDuplicate bool    `json:"is_duplicate"`
	Reason      string  `json:"reason"`
	Similarity  float64 `json:"similarity"`
}

// Stats summarizes the spirits table.
type Stats struct {
	TotalSpirits      int            `json:"total_spirits"`
	TotalBrands       int            `json:"total_brands"`
	NeedingEnrichment int            `json:"needing_enrichment"`
	ByType            map[string]int `json:"by_type"`
}

// Update lists the enrichment columns that may be changed on a stored spirit.
// Nil fields are left untouched.
type Update struct {
	ABV         *float64 `json:"abv,omitempty"`
	Description *string  `json:"description,omitempty"`
	PriceRange  *string  `json:"price_range,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	Type        *string  `json:"type,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.ABV == nil && u.Description == nil && u.PriceRange == nil && u.ImageURL == nil && u.Type == nil
}

// SearchQuery is one request against the search API.
type SearchQuery struct {
	Query        string `json:"q"`
	Start        int    `json:"start,omitempty"`
	Num          int    `json:"num,omitempty"`
	DateRestrict string `json:"date_restrict,omitempty"`
	ExactTerms   string `json:"exact_terms,omitempty"`
	ExcludeTerms string `json:"exclude_terms,omitempty"`
	SiteSearch   string `json:"site_search,omitempty"`
}

// SearchPage is one page of ranked search results.
type SearchPage struct {
	Items        []SearchItem `json:"items"`
	TotalResults int64        `json:"total_results"`
	HasNext      bool         `json:"has_next"`
	Cached       bool         `json:"-"`
}

// SearchItem is a ranked search result with structured page metadata.
type SearchItem struct {
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	DisplayLink string  `json:"display_link"`
	Snippet     string  `json:"snippet"`
	Pagemap     Pagemap `json:"pagemap"`
}

// Pagemap carries the structured data the search engine extracted from a page.
type Pagemap struct {
	Products []map[string]string `json:"product,omitempty"`
	Offers   []map[string]string `json:"offer,omitempty"`
	Metatags []map[string]string `json:"metatags,omitempty"`
	Images   []map[string]string `json:"cse_image,omitempty"`
}

// Metatag returns the first non-empty value for key across all metatag blocks.
func (p Pagemap) Metatag(key string) string {
	for _, tags := range p.Metatags {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return ""
}

// ImageURL returns the first cse_image source, if present.
func (p Pagemap) ImageURL() string {
	for _, img := range p.Images {
		if src := img["src"]; src != "" {
			return src
		}
	}
	return ""
}

// JobStatus represents the lifecycle state of a discovery job.
type JobStatus string

// Job status values persisted in the job store.
const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCanceled  JobStatus = "canceled"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusSucceeded, JobStatusFailed, JobStatusCanceled:
		return true
	default:
		return false
	}
}

// JobParameters captures per-job knobs requested by the client.
type JobParameters struct {
	Category   string   `json:"category" mapstructure:"category"`
	Limit      int      `json:"limit" mapstructure:"limit"`
	Queries    []string `json:"queries,omitempty" mapstructure:"queries"`
	MaxQueries int      `json:"max_queries,omitempty" mapstructure:"max_queries"`
}

// Job represents the metadata persisted for each submitted discovery request.
type Job struct {
	ID         string        `json:"id"`
	Status     JobStatus     `json:"status"`
	Submitted  time.Time     `json:"submitted_at"`
	Started    *time.Time    `json:"started_at,omitempty"`
	Finished   *time.Time    `json:"finished_at,omitempty"`
	ErrorText  string        `json:"error_text,omitempty"`
	Parameters JobParameters `json:"parameters"`
	Counters   JobCounters   `json:"counters"`
}

// JobCounters tracks per-job pipeline statistics.
type JobCounters struct {
	APICalls    int            `json:"api_calls"`
	Results     int            `json:"results"`
	Extracted   int            `json:"extracted"`
	Stored      int            `json:"stored"`
	Duplicates  int            `json:"duplicates"`
	Failures    int            `json:"failures"`
	CatalogHits int            `json:"catalog_hits"`
	TopQueries  map[string]int `json:"top_queries,omitempty"`
}

// Efficiency returns stored spirits per search API call.
func (c JobCounters) Efficiency() float64 {
	if c.APICalls == 0 {
		return 0
	}
	return float64(c.Stored) / float64(c.APICalls)
}

// JobResult is returned by the result endpoint.
type JobResult struct {
	Job        Job      `json:"job"`
	SpiritIDs  []string `json:"spirit_ids"`
	Efficiency float64  `json:"efficiency"`
}

// QueueItem wraps a job ready to run.
type QueueItem struct {
	JobID     string
	Params    JobParameters
	Attempt   int
	Submitted int64
}

// FetchRequest captures everything needed to fetch a catalog page.
type FetchRequest struct {
	JobID       string
	URL         string
	UseHeadless bool
	Headers     http.Header
}

// FetchResponse includes the fetched body and metadata.
type FetchResponse struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}
