package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"
)

// Store persists one snapshot record per project, keyed by project id.
//
// A Save overwrites the previous snapshot for that id in a single statement,
// so a concurrent Get never observes a partial write. Get and List treat
// unparseable records as absent rather than failing: one corrupt project
// must not block the rest.
type Store interface {
	Save(ctx context.Context, p *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
	Delete(ctx context.Context, id string) error
}

type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewStore(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, logger: logger}
}

// Save writes the snapshot for p.ID, stamping DateModified with the
// save time.
func (s *SQLiteStore) Save(ctx context.Context, p *Project) error {
	p.DateModified = time.Now().UnixMilli()

	refs, err := json.Marshal(p.FrameRefs)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (id, title, frame_refs, date_modified, speed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			frame_refs = excluded.frame_refs,
			date_modified = excluded.date_modified,
			speed = excluded.speed
	`, p.ID, p.Title, string(refs), p.DateModified, p.Speed)
	return err
}

// Get returns the snapshot for id, or nil if none exists or the stored
// record is unparseable.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, frame_refs, date_modified, speed
		FROM projects WHERE id = ?
	`, id)

	p, err := s.scanProject(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns every parseable snapshot, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, frame_refs, date_modified, speed
		FROM projects ORDER BY date_modified DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := s.scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Delete removes the snapshot for id. Deleting an absent project is a
// no-op. Referenced image resources are owned by the capture side and are
// never touched here.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

// scanProject scans one row. A row whose frame list fails to parse is
// reported as (nil, nil) and logged, never surfaced as an error.
func (s *SQLiteStore) scanProject(scan func(dest ...any) error) (*Project, error) {
	var p Project
	var refs string

	if err := scan(&p.ID, &p.Title, &refs, &p.DateModified, &p.Speed); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(refs), &p.FrameRefs); err != nil {
		if s.logger != nil {
			s.logger.Warn("skipping corrupt project record", "project_id", p.ID, "error", err)
		}
		return nil, nil
	}
	return &p, nil
}
