package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

// SchemeRepository stores the authoritative scheme catalogue. Row order is
// catalogue order.
type SchemeRepository struct {
	db *sql.DB
}

func NewSchemeRepository(db *sql.DB) *SchemeRepository {
	return &SchemeRepository{db: db}
}

func (r *SchemeRepository) LoadSchemes(ctx context.Context) ([]domain.Scheme, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name_hi, name_en, category, department, description_hi, description_en,
	eligibility, benefit, apply_process, apply_link, type, tags
FROM schemes
ORDER BY row_id
`)
	if err != nil {
		return nil, fmt.Errorf("query schemes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Scheme, 0)
	for rows.Next() {
		var s domain.Scheme
		var tagsRaw []byte
		if err := rows.Scan(
			&s.ID, &s.NameHI, &s.NameEN, &s.Category, &s.Department, &s.DescriptionHI, &s.DescriptionEN,
			&s.Eligibility, &s.Benefit, &s.ApplyProcess, &s.ApplyLink, &s.Type, &tagsRaw,
		); err != nil {
			return nil, fmt.Errorf("scan scheme: %w", err)
		}
		if len(tagsRaw) > 0 {
			if err := json.Unmarshal(tagsRaw, &s.Tags); err != nil {
				return nil, fmt.Errorf("unmarshal tags for scheme %q: %w", s.ID, err)
			}
		}
		out = append(out, s.Normalized())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schemes: %w", err)
	}
	return out, nil
}

// ReplaceAll swaps the whole catalogue in one transaction.
func (r *SchemeRepository) ReplaceAll(ctx context.Context, schemes []domain.Scheme) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace schemes tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM schemes`); err != nil {
		return fmt.Errorf("clear schemes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO schemes (
	id, name_hi, name_en, category, department, description_hi, description_en,
	eligibility, benefit, apply_process, apply_link, type, tags
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`)
	if err != nil {
		return fmt.Errorf("prepare insert scheme: %w", err)
	}
	defer stmt.Close()

	for _, raw := range schemes {
		s := raw.Normalized()
		tagsJSON, err := json.Marshal(s.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			s.ID, s.NameHI, s.NameEN, s.Category, s.Department, s.DescriptionHI, s.DescriptionEN,
			s.Eligibility, s.Benefit, s.ApplyProcess, s.ApplyLink, s.Type, tagsJSON,
		); err != nil {
			return fmt.Errorf("insert scheme %q: %w", s.NaturalKey(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace schemes tx: %w", err)
	}
	return nil
}
