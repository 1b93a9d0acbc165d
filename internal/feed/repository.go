package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/storepulse/backend/internal/contracts"
)

// Repository stores fetched raw submissions.
// ⭐ SSOT: 제출 원본 저장소는 여기서만
//
// Rows keep their insert order via the serial id column; ListByRange returns
// them in that order so ingestion-order tie-breaking stays reproducible
// downstream.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new submission repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveBatch stores raw records fetched from the feed. Each record is stored
// as-is; normalization happens at read time so a fixed alias table can be
// re-applied to historical rows.
func (r *Repository) SaveBatch(ctx context.Context, records []contracts.RawRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO feed.raw_submissions (fields, remarks, photo_refs, fetched_at)
		VALUES ($1, $2, $3, $4)
	`

	now := time.Now().UTC()
	for i, rec := range records {
		fields, err := json.Marshal(rec.Fields)
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", i, err)
		}
		photos, err := json.Marshal(rec.PhotoRefs)
		if err != nil {
			return fmt.Errorf("marshal record %d photos: %w", i, err)
		}

		if _, err := r.pool.Exec(ctx, query, fields, rec.Remarks, photos, now); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	return nil
}

// ListByRange retrieves raw records fetched within [from, to), ordered by
// insertion (id ASC).
func (r *Repository) ListByRange(ctx context.Context, from, to time.Time) ([]contracts.RawRecord, error) {
	query := `
		SELECT fields, remarks, photo_refs
		FROM feed.raw_submissions
		WHERE fetched_at >= $1 AND fetched_at < $2
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query raw submissions: %w", err)
	}
	defer rows.Close()

	var records []contracts.RawRecord
	for rows.Next() {
		var (
			fieldsJSON []byte
			remarks    string
			photosJSON []byte
		)
		if err := rows.Scan(&fieldsJSON, &remarks, &photosJSON); err != nil {
			return nil, fmt.Errorf("scan raw submission: %w", err)
		}

		rec := contracts.RawRecord{Remarks: remarks}
		if err := json.Unmarshal(fieldsJSON, &rec.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
		if len(photosJSON) > 0 {
			if err := json.Unmarshal(photosJSON, &rec.PhotoRefs); err != nil {
				return nil, fmt.Errorf("unmarshal photo refs: %w", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByRange reports how many raw submissions were fetched in [from, to).
func (r *Repository) CountByRange(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM feed.raw_submissions WHERE fetched_at >= $1 AND fetched_at < $2`,
		from, to,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count raw submissions: %w", err)
	}
	return count, nil
}
