// Package sqlite provides the embedded spell index backing the spell
// query service.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS spells (
  id   INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  tags TEXT NOT NULL DEFAULT ','
);
CREATE TABLE IF NOT EXISTS spell_levels (
  spell_id INTEGER NOT NULL REFERENCES spells(id) ON DELETE CASCADE,
  class    TEXT NOT NULL,
  level    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_spell_levels_class_level
  ON spell_levels(class, level);
CREATE TABLE IF NOT EXISTS meta (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`

// Store is the SQLite spell index. One row per spell plus one level
// row per class that can cast it, including the derived pseudo-classes
// so class filters work uniformly in SQL.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (or creates) the index at path and ensures the schema
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("spell index path is required")
	}
	dsn := path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open spell index: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping spell index: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ensure spell index schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// BuiltAt returns the source modification watermark of the last
// rebuild, or zero when the index has never been built
func (s *Store) BuiltAt(ctx context.Context) (int64, error) {
	var value string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = 'built_at'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read index watermark: %w", err)
	}
	ts, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse index watermark: %w", err)
	}
	return ts, nil
}

// tagSet encodes tags for LIKE matching: ",tag1,tag2," so each lookup
// is one LIKE '%,tag,%' term
func tagSet(tags []string) string {
	var b strings.Builder
	b.WriteByte(',')
	for _, t := range tags {
		b.WriteString(strings.ToLower(t))
		b.WriteByte(',')
	}
	return b.String()
}

// Rebuild replaces the whole index in one transaction. levels maps
// each spell to its queryable class/level pairs (real and derived
// classes alike); sourceMtime becomes the new watermark.
func (s *Store) Rebuild(ctx context.Context, spells []*treasure.Spell, levels func(*treasure.Spell) map[string]int, sourceMtime int64) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index rebuild: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM spell_levels`); err != nil {
		return fmt.Errorf("clear spell levels: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM spells`); err != nil {
		return fmt.Errorf("clear spells: %w", err)
	}

	for _, sp := range spells {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO spells (name, tags) VALUES (?, ?)`,
			sp.Name, tagSet(sp.Tags))
		if err != nil {
			return fmt.Errorf("insert spell %q: %w", sp.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("spell id for %q: %w", sp.Name, err)
		}
		for class, level := range levels(sp) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO spell_levels (spell_id, class, level) VALUES (?, ?, ?)`,
				id, class, level); err != nil {
				return fmt.Errorf("insert level row for %q: %w", sp.Name, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('built_at', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.FormatInt(sourceMtime, 10)); err != nil {
		return fmt.Errorf("update index watermark: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index rebuild: %w", err)
	}
	return nil
}

// Random draws one spell name uniformly among those matching the
// filters. An empty class matches any class; a nil level matches any
// level; every tag must be present.
func (s *Store) Random(ctx context.Context, class string, level *int, tags []string) (string, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT DISTINCT s.name FROM spells s
		JOIN spell_levels l ON l.spell_id = s.id WHERE 1=1`)
	if class != "" {
		query.WriteString(` AND l.class = ?`)
		args = append(args, class)
	}
	if level != nil {
		query.WriteString(` AND l.level = ?`)
		args = append(args, *level)
	}
	for _, tag := range tags {
		query.WriteString(` AND s.tags LIKE ?`)
		args = append(args, "%,"+strings.ToLower(tag)+",%")
	}
	query.WriteString(` ORDER BY RANDOM() LIMIT 1`)

	var name string
	err := s.sqlDB.QueryRowContext(ctx, query.String(), args...).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", rollerr.NoMatch("no spell matches the filters")
	}
	if err != nil {
		return "", fmt.Errorf("query spell index: %w", err)
	}
	return name, nil
}
