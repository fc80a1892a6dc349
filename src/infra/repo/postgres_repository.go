package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventlisting/src/core/domain"
	"eventlisting/src/core/ports"
	"eventlisting/src/infra/db"
)

// PostgresRepository implements EventRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

var _ ports.EventRepository = (*PostgresRepository)(nil)

// NewPostgresRepository constructs a repository backed by Postgres.
func NewPostgresRepository(pg *db.Postgres, log *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		pool: pg.Pool,
		log:  log,
	}
}

func (r *PostgresRepository) Health(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// WithTx runs fn inside a single transaction.
func (r *PostgresRepository) WithTx(ctx context.Context, fn func(tx ports.EventTx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgEventTx{tx: tx}); err != nil {
		r.log.Debug("transaction rolled back", "error", err)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListEvents loads every event, then the features of all of them in one
// query ordered by association position.
func (r *PostgresRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const q = `
		SELECT e.id, e.name, e.event_start, e.event_end, e.covers, c.id, c.name
		FROM events e
		LEFT JOIN categories c ON c.id = e.category_id
	`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			e            domain.Event
			categoryID   *uuid.UUID
			categoryName *string
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Start, &e.End, &e.Covers, &categoryID, &categoryName); err != nil {
			return nil, err
		}
		if categoryID != nil && categoryName != nil {
			e.Category = &domain.Category{ID: *categoryID, Name: *categoryName}
		}
		e.Start, e.End = e.Start.UTC(), e.End.UTC()
		if e.Covers == nil {
			e.Covers = []string{}
		}
		e.Features = []domain.Feature{}
		index[e.ID] = len(events)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return events, nil
	}

	ids := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}

	const fq = `
		SELECT ef.event_id, f.id, f.name
		FROM event_feature ef
		JOIN features f ON f.id = ef.feature_id
		WHERE ef.event_id = ANY($1::uuid[])
		ORDER BY ef.event_id, ef.position
	`
	frows, err := r.pool.Query(ctx, fq, ids)
	if err != nil {
		return nil, fmt.Errorf("query event features: %w", err)
	}
	defer frows.Close()

	for frows.Next() {
		var (
			eventID uuid.UUID
			f       domain.Feature
		)
		if err := frows.Scan(&eventID, &f.ID, &f.Name); err != nil {
			return nil, err
		}
		if i, ok := index[eventID]; ok {
			events[i].Features = append(events[i].Features, f)
		}
	}
	return events, frows.Err()
}

// pgEventTx implements EventTx on an open transaction.
type pgEventTx struct {
	tx pgx.Tx
}

func (t *pgEventTx) FindCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	const q = `SELECT id, name FROM categories WHERE name = $1`
	var c domain.Category
	if err := t.tx.QueryRow(ctx, q, name).Scan(&c.ID, &c.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("category")
		}
		return nil, err
	}
	return &c, nil
}

// InsertCategory upserts on name; the no-op update makes RETURNING yield
// the row that won a concurrent insert.
func (t *pgEventTx) InsertCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	const q = `
		INSERT INTO categories (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`
	var out domain.Category
	if err := t.tx.QueryRow(ctx, q, c.ID, c.Name).Scan(&out.ID, &out.Name); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewConflictError("category name already taken")
		}
		return nil, err
	}
	return &out, nil
}

func (t *pgEventTx) FindFeaturesByNames(ctx context.Context, names []string) ([]domain.Feature, error) {
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		lowered = append(lowered, domain.FeatureKey(n))
	}

	const q = `SELECT id, name FROM features WHERE lower(name) = ANY($1)`
	rows, err := t.tx.Query(ctx, q, lowered)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var features []domain.Feature
	for rows.Next() {
		var f domain.Feature
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

// InsertFeatures upserts every feature in one statement. Rows are fed in
// key order (WITH ORDINALITY keeps it), so concurrent inserts of
// overlapping name sets lock the unique index in the same order. The
// no-op update keeps the stored casing and makes RETURNING yield rows
// that already existed.
func (t *pgEventTx) InsertFeatures(ctx context.Context, fs []domain.Feature) ([]domain.Feature, error) {
	sorted := sortedByKey(fs)
	if len(sorted) == 0 {
		return []domain.Feature{}, nil
	}
	ids := make([]uuid.UUID, 0, len(sorted))
	names := make([]string, 0, len(sorted))
	for _, f := range sorted {
		ids = append(ids, f.ID)
		names = append(names, f.Name)
	}

	const q = `
		INSERT INTO features (id, name)
		SELECT id, name
		FROM unnest($1::uuid[], $2::text[]) WITH ORDINALITY AS t(id, name, ord)
		ORDER BY ord
		ON CONFLICT ((lower(name))) DO UPDATE SET name = features.name
		RETURNING id, name
	`
	rows, err := t.tx.Query(ctx, q, ids, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Feature, 0, len(sorted))
	for rows.Next() {
		var f domain.Feature
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewConflictError("feature name already taken")
		}
		return nil, err
	}
	return out, nil
}

func (t *pgEventTx) InsertEvent(ctx context.Context, e *domain.Event) error {
	const q = `
		INSERT INTO events (id, name, event_start, event_end, covers, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var categoryID *uuid.UUID
	if e.Category != nil {
		categoryID = &e.Category.ID
	}
	if _, err := t.tx.Exec(ctx, q, e.ID, e.Name, e.Start, e.End, e.Covers, categoryID); err != nil {
		return err
	}

	const fq = `
		INSERT INTO event_feature (event_id, feature_id, position)
		VALUES ($1, $2, $3)
	`
	for i, f := range e.Features {
		if _, err := t.tx.Exec(ctx, fq, e.ID, f.ID, i); err != nil {
			return err
		}
	}
	return nil
}
