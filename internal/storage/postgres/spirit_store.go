package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JakeFAU/spirits-scraper/internal/brand"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// Tables names the relations the SpiritStore reads and writes.
type Tables struct {
	Spirits          string
	Brands           string
	Categories       string
	SpiritCategories string
}

// DefaultTables returns the stock table names.
func DefaultTables() Tables {
	return Tables{
		Spirits:          "spirits",
		Brands:           "brands",
		Categories:       "categories",
		SpiritCategories: "spirit_categories",
	}
}

func (t Tables) withDefaults() Tables {
	d := DefaultTables()
	if t.Spirits == "" {
		t.Spirits = d.Spirits
	}
	if t.Brands == "" {
		t.Brands = d.Brands
	}
	if t.Categories == "" {
		t.Categories = d.Categories
	}
	if t.SpiritCategories == "" {
		t.SpiritCategories = d.SpiritCategories
	}
	return t
}

const spiritColumns = `id, name, brand, type, sub_type, description, abv, price, price_range, age_statement, ` +
	`volume, origin_country, image_url, source_url, quality_score, created_at`

// SpiritStore implements spirits.Repository on Postgres.
type SpiritStore struct {
	pool   pool
	tables Tables
}

// NewSpiritStore wraps an open pool (a *pgxpool.Pool or a pgxmock pool).
func NewSpiritStore(p pool, tables Tables) (*SpiritStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	tables = tables.withDefaults()
	if err := checkTables(tables.Spirits, tables.Brands, tables.Categories, tables.SpiritCategories); err != nil {
		return nil, err
	}
	return &SpiritStore{pool: p, tables: tables}, nil
}

// Close releases the underlying pool resources.
func (s *SpiritStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// FindExact returns the spirit with exactly this name and brand.
func (s *SpiritStore) FindExact(ctx context.Context, name, brandName string) (spirits.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE name = $1 AND brand = $2 LIMIT 1`, spiritColumns, s.tables.Spirits)
	rec, err := scanRecord(s.pool.QueryRow(ctx, query, name, brandName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return spirits.Record{}, spirits.ErrNotFound
		}
		return spirits.Record{}, fmt.Errorf("find exact spirit: %w", err)
	}
	return rec, nil
}

// FindCandidates returns spirits whose name or brand loosely matches.
func (s *SpiritStore) FindCandidates(ctx context.Context, name, brandName string, limit int) ([]spirits.Record, error) {
	if limit <= 0 {
		limit = spirits.DefaultCandidateLimit
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE name ILIKE $1`, spiritColumns, s.tables.Spirits)
	args := []any{contains(name)}
	if brandName != "" {
		query += ` OR brand ILIKE $2 LIMIT $3`
		args = append(args, contains(brandName), limit)
	} else {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	return s.queryRecords(ctx, "find candidates", query, args...)
}

// Insert stores rec and returns the generated ID.
func (s *SpiritStore) Insert(ctx context.Context, rec spirits.Record) (string, error) {
	query := fmt.Sprintf(`
INSERT INTO %s (
	name, brand, type, sub_type, category, description, abv, proof, price, price_range,
	age_statement, volume, origin_country, distillery, image_url, source_url, quality_score
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
) RETURNING id`, s.tables.Spirits)

	args := []any{
		rec.Name,
		rec.Brand,
		nullString(rec.Type),
		nullString(rec.SubType),
		nullString(rec.Category),
		nullString(rec.Description),
		nullFloat(rec.ABV),
		nullFloat(rec.Proof),
		nullFloat(rec.Price),
		nullString(rec.PriceRange),
		nullString(rec.AgeStatement),
		nullString(rec.Volume),
		nullString(rec.OriginCountry),
		nullString(rec.Distillery),
		nullString(rec.ImageURL),
		nullString(rec.SourceURL),
		rec.QualityScore,
	}
	var id string
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("insert spirit: %w", err)
	}
	return id, nil
}

// EnsureBrand upserts a brand by slug and returns its ID.
func (s *SpiritStore) EnsureBrand(ctx context.Context, name string) (string, error) {
	return s.upsertNamed(ctx, s.tables.Brands, name)
}

// LinkCategory finds or creates category and links it to the spirit.
func (s *SpiritStore) LinkCategory(ctx context.Context, spiritID, category string) error {
	categoryID, err := s.upsertNamed(ctx, s.tables.Categories, category)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (spirit_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		s.tables.SpiritCategories)
	if _, err := s.pool.Exec(ctx, query, spiritID, categoryID); err != nil {
		return fmt.Errorf("link category: %w", err)
	}
	return nil
}

func (s *SpiritStore) upsertNamed(ctx context.Context, table, name string) (string, error) {
	slug := brand.Slug(name)
	if slug == "" {
		return "", fmt.Errorf("upsert %s %q: empty slug", table, name)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (name, slug) VALUES ($1, $2)
ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
RETURNING id`, table)
	var id string
	if err := s.pool.QueryRow(ctx, query, name, slug).Scan(&id); err != nil {
		return "", fmt.Errorf("upsert %s: %w", table, err)
	}
	return id, nil
}

// Update writes the non-nil fields of update.
func (s *SpiritStore) Update(ctx context.Context, id string, update spirits.Update) error {
	if update.Empty() {
		return nil
	}
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.ABV != nil {
		add("abv", *update.ABV)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.PriceRange != nil {
		add("price_range", *update.PriceRange)
	}
	if update.ImageURL != nil {
		add("image_url", *update.ImageURL)
	}
	if update.Type != nil {
		add("type", *update.Type)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE %s SET %s, updated_at = now() WHERE id = $%d`,
		s.tables.Spirits, strings.Join(sets, ", "), len(args))
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update spirit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update spirit %s: %w", id, spirits.ErrNotFound)
	}
	return nil
}

const needsEnrichment = `abv IS NULL OR description IS NULL OR price_range IS NULL OR image_url IS NULL`

// NeedingEnrichment returns the oldest spirits missing enrichable fields.
func (s *SpiritStore) NeedingEnrichment(ctx context.Context, limit int) ([]spirits.Record, error) {
	if limit <= 0 {
		limit = spirits.DefaultEnrichmentLimit
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY created_at LIMIT $1`,
		spiritColumns, s.tables.Spirits, needsEnrichment)
	return s.queryRecords(ctx, "needing enrichment", query, limit)
}

// Stats counts spirits, brands, incomplete rows and spirits per type.
func (s *SpiritStore) Stats(ctx context.Context) (spirits.Stats, error) {
	stats := spirits.Stats{ByType: make(map[string]int)}
	counts := []struct {
		query string
		dest  *int
	}{
		{fmt.Sprintf(`SELECT count(*) FROM %s`, s.tables.Spirits), &stats.TotalSpirits},
		{fmt.Sprintf(`SELECT count(*) FROM %s`, s.tables.Brands), &stats.TotalBrands},
		{fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s`, s.tables.Spirits, needsEnrichment), &stats.NeedingEnrichment},
	}
	for _, c := range counts {
		if err := s.pool.QueryRow(ctx, c.query).Scan(c.dest); err != nil {
			return spirits.Stats{}, fmt.Errorf("count rows: %w", err)
		}
	}

	query := fmt.Sprintf(`SELECT coalesce(type, 'Spirit'), count(*) FROM %s GROUP BY 1`, s.tables.Spirits)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return spirits.Stats{}, fmt.Errorf("count by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			spiritType string
			n          int
		)
		if err := rows.Scan(&spiritType, &n); err != nil {
			return spirits.Stats{}, fmt.Errorf("scan type count: %w", err)
		}
		stats.ByType[spiritType] = n
	}
	if err := rows.Err(); err != nil {
		return spirits.Stats{}, fmt.Errorf("count by type: %w", err)
	}
	return stats, nil
}

// Search matches term against name, brand and description, best quality first.
func (s *SpiritStore) Search(ctx context.Context, term string, limit int) ([]spirits.Record, error) {
	if limit <= 0 {
		limit = spirits.DefaultSearchLimit
	}
	query := fmt.Sprintf(`SELECT %s FROM %s
WHERE name ILIKE $1 OR brand ILIKE $1 OR description ILIKE $1
ORDER BY quality_score DESC, created_at DESC LIMIT $2`, spiritColumns, s.tables.Spirits)
	return s.queryRecords(ctx, "search spirits", query, contains(term), limit)
}

func (s *SpiritStore) queryRecords(ctx context.Context, op, query string, args ...any) ([]spirits.Record, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []spirits.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func scanRecord(row pgx.Row) (spirits.Record, error) {
	var (
		rec                                 spirits.Record
		typ, subType, desc, priceRange, age pgtype.Text
		volume, country, image, source      pgtype.Text
		abv, price                          pgtype.Float8
		created                             time.Time
	)
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Brand,
		&typ,
		&subType,
		&desc,
		&abv,
		&price,
		&priceRange,
		&age,
		&volume,
		&country,
		&image,
		&source,
		&rec.QualityScore,
		&created,
	)
	if err != nil {
		return spirits.Record{}, err
	}
	rec.Type = typ.String
	rec.SubType = subType.String
	rec.Description = desc.String
	rec.ABV = abv.Float64
	rec.Price = price.Float64
	rec.PriceRange = priceRange.String
	rec.AgeStatement = age.String
	rec.Volume = volume.String
	rec.OriginCountry = country.String
	rec.ImageURL = image.String
	rec.SourceURL = source.String
	rec.CreatedAt = created
	return rec, nil
}

// contains builds an ILIKE pattern matching term anywhere, with LIKE
// metacharacters escaped.
func contains(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}
