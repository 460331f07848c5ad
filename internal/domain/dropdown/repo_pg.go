package dropdown

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opticare/opticare/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, field, value, created_at`

func scanOption(row pgx.Row) (*Option, error) {
	var o Option
	err := row.Scan(&o.ID, &o.Field, &o.Value, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &o, err
}

func (r *repoPG) Create(ctx context.Context, o *Option) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO dropdown_option (id, field, value) VALUES ($1,$2,$3)`,
		o.ID, o.Field, o.Value)
	return err
}

func (r *repoPG) FindByValue(ctx context.Context, field, value string) (*Option, error) {
	return scanOption(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM dropdown_option WHERE field = $1 AND LOWER(value) = LOWER($2)`,
		field, value))
}

func (r *repoPG) ListByField(ctx context.Context, field string) ([]*Option, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM dropdown_option WHERE field = $1 ORDER BY value`, field)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Option
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM dropdown_option WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
