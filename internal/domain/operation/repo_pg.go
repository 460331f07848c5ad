package operation

import (
	"context"
	"errors"
	"time"

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

const cols = `id, patient_id, procedure, diagnosis, surgeon, notes, total, status,
	admitted_at, discharged_at, created_at, updated_at`

func scanOperation(row pgx.Row) (*Operation, error) {
	var o Operation
	err := row.Scan(&o.ID, &o.PatientID, &o.Procedure, &o.Diagnosis, &o.Surgeon, &o.Notes,
		&o.Total, &o.Status, &o.AdmittedAt, &o.DischargedAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &o, err
}

func (r *repoPG) Create(ctx context.Context, o *Operation) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO operation (id, patient_id, procedure, diagnosis, surgeon, notes, total, status, admitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.PatientID, o.Procedure, o.Diagnosis, o.Surgeon, o.Notes, o.Total, o.Status, o.AdmittedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Operation, error) {
	return scanOperation(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM operation WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, o *Operation) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE operation SET procedure=$2, diagnosis=$3, surgeon=$4, notes=$5,
			total=$6, status=$7, admitted_at=$8, discharged_at=$9, updated_at=NOW()
		WHERE id = $1`,
		o.ID, o.Procedure, o.Diagnosis, o.Surgeon, o.Notes,
		o.Total, o.Status, o.AdmittedAt, o.DischargedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM operation WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) collect(rows pgx.Rows) ([]*Operation, error) {
	defer rows.Close()
	var items []*Operation
	for rows.Next() {
		o, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Operation, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM operation WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM operation WHERE patient_id = $1 ORDER BY admitted_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *repoPG) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Operation, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM operation WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM operation WHERE status = $1 ORDER BY admitted_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *repoPG) ListByDateRange(ctx context.Context, from, to time.Time) ([]*Operation, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM operation WHERE admitted_at >= $1 AND admitted_at < $2 ORDER BY admitted_at`, from, to)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}
