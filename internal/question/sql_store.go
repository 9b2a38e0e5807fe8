package question

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/matthewbaird/signatures/internal/types"
)

const questionsTable = "questions"

// SQLStore implements Store on a SQLite database. Queries are built with
// the ent SQL builder; each question is stored as a JSON document next to
// the columns used for filtering.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a SQLStore over an open database.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// OpenSQLStore opens the SQLite database at dsn and creates the questions
// table if needed.
func OpenSQLStore(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening question database: %w", err)
	}
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to question database: %w", err)
	}
	s := NewSQLStore(db)
	if err := s.CreateTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// CreateTable creates the questions table and its category index.
func (s *SQLStore) CreateTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+questionsTable+` (
	lookup   TEXT NOT NULL PRIMARY KEY,
	id       TEXT NOT NULL,
	category TEXT NOT NULL,
	question TEXT NOT NULL,
	body     TEXT NOT NULL
)`); err != nil {
		return fmt.Errorf("creating questions table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_questions_category ON questions (category, lookup)`); err != nil {
		return fmt.Errorf("creating questions index: %w", err)
	}
	return nil
}

// Seed upserts every question in one transaction.
func (s *SQLStore) Seed(ctx context.Context, questions []types.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed: %w", err)
	}
	for _, q := range questions {
		if err := upsert(ctx, tx, q); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, q types.Question) error {
	q, err := normalize(q)
	if err != nil {
		return err
	}
	body, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encoding question %s: %w", q.ID, err)
	}
	query, args := builder().Insert(questionsTable).
		Columns("lookup", "id", "category", "question", "body").
		Values(lookupKey(q.ID), q.ID, q.Category, q.Text, string(body)).
		OnConflict(
			entsql.ConflictColumns("lookup"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("saving question %s: %w", q.ID, err)
	}
	return nil
}

func (s *SQLStore) Put(ctx context.Context, q types.Question) error {
	return upsert(ctx, s.db, q)
}

func (s *SQLStore) Get(ctx context.Context, id string) (types.Question, error) {
	query, args := builder().Select("body").
		From(entsql.Table(questionsTable)).
		Where(entsql.EQ("lookup", lookupKey(id))).
		Query()
	var body string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Question{}, fmt.Errorf("%w: %q", ErrNotFound, strings.TrimSpace(id))
	}
	if err != nil {
		return types.Question{}, fmt.Errorf("querying question: %w", err)
	}
	return decodeBody(body)
}

func (s *SQLStore) List(ctx context.Context, category string) ([]types.Question, error) {
	sel := builder().Select("body").From(entsql.Table(questionsTable))
	if c := normalizeCategory(category); c != "" {
		sel.Where(entsql.EQ("category", c))
	}
	return s.queryBodies(ctx, sel.OrderBy("lookup"))
}

func (s *SQLStore) Search(ctx context.Context, query, category string, limit int) ([]types.Question, error) {
	words := keywords(query)
	if len(words) == 0 {
		return []types.Question{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	preds := make([]*entsql.Predicate, 0, len(words)+1)
	for _, w := range words {
		preds = append(preds, entsql.Or(
			entsql.ContainsFold("question", w),
			entsql.ContainsFold("id", w),
			entsql.ContainsFold("category", w),
		))
	}
	if c := normalizeCategory(category); c != "" {
		preds = append(preds, entsql.EQ("category", c))
	}

	sel := builder().Select("body").
		From(entsql.Table(questionsTable)).
		Where(entsql.And(preds...)).
		OrderBy("lookup").
		Limit(limit)
	return s.queryBodies(ctx, sel)
}

func (s *SQLStore) Categories(ctx context.Context) ([]string, error) {
	query, args := builder().Select("category").
		Distinct().
		From(entsql.Table(questionsTable)).
		OrderBy("category").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) queryBodies(ctx context.Context, sel *entsql.Selector) ([]types.Question, error) {
	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying questions: %w", err)
	}
	defer rows.Close()

	out := []types.Question{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		q, err := decodeBody(body)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func decodeBody(body string) (types.Question, error) {
	var q types.Question
	if err := json.Unmarshal([]byte(body), &q); err != nil {
		return types.Question{}, fmt.Errorf("decoding stored question: %w", err)
	}
	return q, nil
}
