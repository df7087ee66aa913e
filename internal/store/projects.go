package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/baxromumarov/gig-crawler/internal/normalize"
	"github.com/baxromumarov/gig-crawler/internal/project"
)

// Record is a stored listing together with its bookkeeping columns.
type Record struct {
	Project     project.Project `json:"project"`
	Ignored     bool            `json:"ignored"`
	FirstSeenAt time.Time       `json:"first_seen_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Filter struct {
	Platform       project.Platform
	IncludeHidden  bool
	IncludeIgnored bool
	Limit          int
	Offset         int
}

// plainText derives the searchable description column.
var plainText = normalize.PlainText

const upsertProject = `
INSERT INTO projects (platform, external_id, hidden, wage_type, title, category, description, description_text, publication_date, recruiting_limit, is_recruiting, payload, first_seen_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
ON CONFLICT (platform, external_id) DO UPDATE SET
    hidden = EXCLUDED.hidden,
    wage_type = EXCLUDED.wage_type,
    title = EXCLUDED.title,
    category = EXCLUDED.category,
    description = EXCLUDED.description,
    description_text = EXCLUDED.description_text,
    publication_date = EXCLUDED.publication_date,
    recruiting_limit = EXCLUDED.recruiting_limit,
    is_recruiting = EXCLUDED.is_recruiting,
    payload = EXCLUDED.payload,
    updated_at = NOW()
`

// SaveMany upserts the batch in a single transaction. The ignored flag of
// an existing row survives a re-crawl.
func (s *Store) SaveMany(ctx context.Context, projects []project.Project) (err error) {
	if len(projects) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertProject)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range projects {
		args, err := upsertArgs(p)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("upsert %s: %w", p.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func upsertArgs(p project.Project) ([]any, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", p.Key(), err)
	}

	k := p.Key()
	v := project.VisibleOf(p)
	if v == nil {
		return []any{string(k.Platform), k.ExternalID, true, nil, nil, nil, nil, nil, nil, nil, nil, payload}, nil
	}

	var wage project.WageType
	switch w := p.(type) {
	case *project.FixedWage:
		wage = w.WageType()
	case *project.TimeWage:
		wage = w.WageType()
	}

	text, err := plainText(v.Description)
	if err != nil {
		return nil, fmt.Errorf("plain text of %s: %w", k, err)
	}

	return []any{
		string(k.Platform),
		k.ExternalID,
		false,
		string(wage),
		v.Title,
		v.Category,
		v.Description,
		text,
		v.PublicationDate,
		v.RecruitingLimit,
		v.IsRecruiting,
		payload,
	}, nil
}

// ListProjects returns one page of listings, newest publication first,
// along with the total number of rows matching the filter.
func (s *Store) ListProjects(ctx context.Context, f Filter) ([]Record, int, error) {
	limit := clampLimit(f.Limit, 20, 200)
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var total int
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM projects
WHERE ($1 = '' OR platform = $1)
  AND ($2 OR NOT hidden)
  AND ($3 OR NOT ignored)
`, string(f.Platform), f.IncludeHidden, f.IncludeIgnored).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT payload, ignored, first_seen_at, updated_at
FROM projects
WHERE ($1 = '' OR platform = $1)
  AND ($2 OR NOT hidden)
  AND ($3 OR NOT ignored)
ORDER BY publication_date DESC NULLS LAST, platform, external_id
LIMIT $4 OFFSET $5
`, string(f.Platform), f.IncludeHidden, f.IncludeIgnored, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (s *Store) GetProject(ctx context.Context, key project.Key) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT payload, ignored, first_seen_at, updated_at
FROM projects
WHERE platform = $1 AND external_id = $2
`, string(key.Platform), key.ExternalID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return rec, err
}

// MarkIgnored flags a listing so it drops out of default listings.
func (s *Store) MarkIgnored(ctx context.Context, key project.Key, ignored bool) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE projects
SET ignored = $3, updated_at = NOW()
WHERE platform = $1 AND external_id = $2
`, string(key.Platform), key.ExternalID, ignored)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return nil
}

// DeleteExpired removes listings whose recruiting limit (or publication
// date, when there is none) is older than the retention window.
func (s *Store) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := s.db.ExecContext(ctx, `
DELETE FROM projects
WHERE COALESCE(recruiting_limit, publication_date, updated_at) < $1
`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		rec     Record
		payload []byte
	)
	if err := sc.Scan(&payload, &rec.Ignored, &rec.FirstSeenAt, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}

	p, err := project.Unmarshal(payload)
	if err != nil {
		return Record{}, fmt.Errorf("decode stored project: %w", err)
	}
	rec.Project = p
	return rec, nil
}
