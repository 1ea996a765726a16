package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/scholarweave/researcher-service/internal/domain"
)

// Compile-time interface verification.
var _ ResearcherRepository = (*PgResearcherRepository)(nil)

// PgResearcherRepository is a PostgreSQL implementation of ResearcherRepository.
type PgResearcherRepository struct {
	db DBTX
}

// NewPgResearcherRepository creates a new PostgreSQL researcher repository.
func NewPgResearcherRepository(db DBTX) *PgResearcherRepository {
	return &PgResearcherRepository{db: db}
}

const researcherColumns = `
	id, display_name,
	COALESCE(orcid, ''), COALESCE(openalex_author_id, ''), COALESCE(affiliation, ''),
	topics, active, created_at, updated_at`

// GetByID retrieves a researcher by its internal account id.
func (r *PgResearcherRepository) GetByID(ctx context.Context, id string) (*domain.Researcher, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "id is required")
	}

	query := `
		SELECT` + researcherColumns + `
		FROM researchers
		WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	researcher, err := scanResearcher(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("researcher", id)
		}
		return nil, fmt.Errorf("failed to get researcher by id: %w", err)
	}

	return researcher, nil
}

// Create inserts a new researcher record.
func (r *PgResearcherRepository) Create(ctx context.Context, researcher *domain.Researcher) error {
	if researcher == nil {
		return domain.NewValidationError("researcher", "researcher cannot be nil")
	}
	if researcher.ID == "" {
		return domain.NewValidationError("id", "id is required")
	}

	now := time.Now().UTC()
	if researcher.CreatedAt.IsZero() {
		researcher.CreatedAt = now
	}
	researcher.UpdatedAt = now

	query := `
		INSERT INTO researchers (
			id, display_name, orcid, openalex_author_id, affiliation,
			topics, active, created_at, updated_at
		) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		researcher.ID,
		researcher.DisplayName,
		researcher.ORCID,
		researcher.OpenAlexAuthorID,
		researcher.Affiliation,
		researcher.Topics,
		researcher.Active,
		researcher.CreatedAt,
		researcher.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("researcher %s: %w", researcher.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create researcher: %w", err)
	}

	return nil
}

// ListMissingTopics returns active records holding a canonical identifier
// but no topic list.
func (r *PgResearcherRepository) ListMissingTopics(ctx context.Context) ([]*domain.Researcher, error) {
	query := `
		SELECT` + researcherColumns + `
		FROM researchers
		WHERE active AND orcid IS NOT NULL AND topics IS NULL
		ORDER BY created_at`

	return r.list(ctx, query)
}

// ListMissingIdentity returns active records without a canonical identifier.
func (r *PgResearcherRepository) ListMissingIdentity(ctx context.Context) ([]*domain.Researcher, error) {
	query := `
		SELECT` + researcherColumns + `
		FROM researchers
		WHERE active AND orcid IS NULL
		ORDER BY created_at`

	return r.list(ctx, query)
}

// ListActiveWithTopics returns the recommendation candidate pool.
func (r *PgResearcherRepository) ListActiveWithTopics(ctx context.Context) ([]*domain.Researcher, error) {
	query := `
		SELECT` + researcherColumns + `
		FROM researchers
		WHERE active AND topics IS NOT NULL AND cardinality(topics) > 0
		ORDER BY created_at`

	return r.list(ctx, query)
}

// ApplyResolution conditionally writes a full identity resolution outcome.
// The WHERE clause guards against a concurrent resolution having already
// claimed the record; applied is false when the guard rejected the write.
func (r *PgResearcherRepository) ApplyResolution(ctx context.Context, id, orcid, openAlexID string, topics []string) (bool, error) {
	if id == "" {
		return false, domain.NewValidationError("id", "id is required")
	}
	if orcid == "" {
		return false, domain.NewValidationError("orcid", "orcid is required")
	}

	query := `
		UPDATE researchers
		SET orcid = $2,
			openalex_author_id = NULLIF($3, ''),
			topics = $4,
			updated_at = $5
		WHERE id = $1 AND orcid IS NULL`

	tag, err := r.db.Exec(ctx, query, id, orcid, openAlexID, topics, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to apply resolution: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SetIdentity unconditionally overwrites the record's resolved identity.
func (r *PgResearcherRepository) SetIdentity(ctx context.Context, id, orcid, openAlexID string, topics []string) error {
	if id == "" {
		return domain.NewValidationError("id", "id is required")
	}
	if orcid == "" {
		return domain.NewValidationError("orcid", "orcid is required")
	}

	query := `
		UPDATE researchers
		SET orcid = $2,
			openalex_author_id = NULLIF($3, ''),
			topics = $4,
			updated_at = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, orcid, openAlexID, topics, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("researcher", id)
	}

	return nil
}

// SetTopics overwrites the record's topic list and bibliographic author id.
func (r *PgResearcherRepository) SetTopics(ctx context.Context, id, openAlexID string, topics []string) error {
	if id == "" {
		return domain.NewValidationError("id", "id is required")
	}

	query := `
		UPDATE researchers
		SET openalex_author_id = NULLIF($2, ''),
			topics = $3,
			updated_at = $4
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, openAlexID, topics, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set topics: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("researcher", id)
	}

	return nil
}

// SetActive flips recommendation participation for a record.
func (r *PgResearcherRepository) SetActive(ctx context.Context, id string, active bool) error {
	if id == "" {
		return domain.NewValidationError("id", "id is required")
	}

	query := `
		UPDATE researchers
		SET active = $2, updated_at = $3
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("researcher", id)
	}

	return nil
}

// TopicCounts aggregates topic occurrences across active researchers.
func (r *PgResearcherRepository) TopicCounts(ctx context.Context) ([]domain.TopicCount, error) {
	query := `
		SELECT topic, COUNT(*) AS occurrences
		FROM researchers, unnest(topics) AS topic
		WHERE active AND topics IS NOT NULL
		GROUP BY topic
		ORDER BY occurrences DESC, topic ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count topics: %w", err)
	}
	defer rows.Close()

	var counts []domain.TopicCount
	for rows.Next() {
		var tc domain.TopicCount
		if err := rows.Scan(&tc.Topic, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan topic count: %w", err)
		}
		counts = append(counts, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topic counts: %w", err)
	}

	return counts, nil
}

// list runs a researcher SELECT with no parameters and scans all rows.
func (r *PgResearcherRepository) list(ctx context.Context, query string) ([]*domain.Researcher, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list researchers: %w", err)
	}
	defer rows.Close()

	var researchers []*domain.Researcher
	for rows.Next() {
		researcher, err := scanResearcherFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan researcher: %w", err)
		}
		researchers = append(researchers, researcher)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating researchers: %w", err)
	}

	return researchers, nil
}

// researcherScanDest holds the destination pointers for scanning a Researcher row.
type researcherScanDest struct {
	researcher  domain.Researcher
	displayName *string
	topics      []string
}

// destinations returns the slice of pointers for Scan operations.
func (d *researcherScanDest) destinations() []interface{} {
	return []interface{}{
		&d.researcher.ID, &d.displayName,
		&d.researcher.ORCID, &d.researcher.OpenAlexAuthorID, &d.researcher.Affiliation,
		&d.topics, &d.researcher.Active,
		&d.researcher.CreatedAt, &d.researcher.UpdatedAt,
	}
}

// finalize resolves the nullable columns into their zero-value forms.
func (d *researcherScanDest) finalize() (*domain.Researcher, error) {
	if d.displayName != nil {
		d.researcher.DisplayName = *d.displayName
	}
	d.researcher.Topics = d.topics
	return &d.researcher, nil
}

// scanResearcher scans a single row into a Researcher.
func scanResearcher(row pgx.Row) (*domain.Researcher, error) {
	var dest researcherScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize()
}

// scanResearcherFromRows scans the current row from pgx.Rows into a Researcher.
func scanResearcherFromRows(rows pgx.Rows) (*domain.Researcher, error) {
	var dest researcherScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize()
}
