package postgres

import (
	"context"
	"database/sql"

	"github.com/open-builders/satchat-backend/internal/domain/keyword"
)

// KeywordRepository stores reward keyword rules. Keywords are stored lower-cased.
type KeywordRepository struct {
	db *sql.DB
}

func NewKeywordRepository(db *sql.DB) *KeywordRepository { return &KeywordRepository{db: db} }

// List returns rules in application order.
func (r *KeywordRepository) List(ctx context.Context) ([]keyword.Rule, error) {
	const q = `SELECT keyword, multiplier, created_at, updated_at FROM reward_keywords ORDER BY lower(keyword), multiplier`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []keyword.Rule
	for rows.Next() {
		var k keyword.Rule
		if err := rows.Scan(&k.Keyword, &k.Multiplier, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, k)
	}
	return rules, rows.Err()
}

// Upsert inserts the keyword or updates its multiplier, then reloads the stored row into k.
func (r *KeywordRepository) Upsert(ctx context.Context, k *keyword.Rule) error {
	const q = `
	INSERT INTO reward_keywords (keyword, multiplier)
	VALUES ($1, $2)
	ON CONFLICT (keyword) DO UPDATE SET
		multiplier = EXCLUDED.multiplier,
		updated_at = now()
	RETURNING keyword, multiplier, created_at, updated_at`
	row := r.db.QueryRowContext(ctx, q, keyword.Normalize(k.Keyword), k.Multiplier)
	return row.Scan(&k.Keyword, &k.Multiplier, &k.CreatedAt, &k.UpdatedAt)
}

// Delete removes a keyword and reports whether it existed.
func (r *KeywordRepository) Delete(ctx context.Context, kw string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reward_keywords WHERE keyword = $1`, keyword.Normalize(kw))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
