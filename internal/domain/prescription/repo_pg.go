package prescription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opticare/opticare/internal/platform/db"
	"github.com/opticare/opticare/pkg/serial"
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

// serialLockID scopes the advisory lock serializing receipt serial
// allocation.
const serialLockID = 7102

const cols = `id, serial_number, receipt_number, patient_id, complaint, diagnosis, treatment,
	right_sphere, right_cylinder, right_axis, right_vision,
	left_sphere, left_cylinder, left_axis, left_vision,
	amount_received, amount_due, discount, created_at, updated_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.SerialNumber, &p.ReceiptNumber, &p.PatientID,
		&p.Complaint, &p.Diagnosis, &p.Treatment,
		&p.RightSphere, &p.RightCylinder, &p.RightAxis, &p.RightVision,
		&p.LeftSphere, &p.LeftCylinder, &p.LeftAxis, &p.LeftVision,
		&p.AmountReceived, &p.AmountDue, &p.Discount, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	return db.WithTx(ctx, r.pool, func(txCtx context.Context) error {
		conn := r.conn(txCtx)
		if p.SerialNumber == "" {
			if _, err := conn.Exec(txCtx, `SELECT pg_advisory_xact_lock($1)`, serialLockID); err != nil {
				return fmt.Errorf("acquire serial lock: %w", err)
			}
			serials, err := r.serials(txCtx)
			if err != nil {
				return err
			}
			next := serial.Next(serials, "")
			p.SerialNumber = serial.Format(next, "")
			p.ReceiptNumber = serial.Format(next, "R")
		}
		_, err := conn.Exec(txCtx, `
			INSERT INTO prescription (id, serial_number, receipt_number, patient_id,
				complaint, diagnosis, treatment,
				right_sphere, right_cylinder, right_axis, right_vision,
				left_sphere, left_cylinder, left_axis, left_vision,
				amount_received, amount_due, discount)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
			p.ID, p.SerialNumber, p.ReceiptNumber, p.PatientID,
			p.Complaint, p.Diagnosis, p.Treatment,
			p.RightSphere, p.RightCylinder, p.RightAxis, p.RightVision,
			p.LeftSphere, p.LeftCylinder, p.LeftAxis, p.LeftVision,
			p.AmountReceived, p.AmountDue, p.Discount)
		return err
	})
}

func (r *repoPG) serials(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT serial_number FROM prescription`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var serials []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		serials = append(serials, s)
	}
	return serials, rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return scanPrescription(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM prescription WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Prescription) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescription SET complaint=$2, diagnosis=$3, treatment=$4,
			right_sphere=$5, right_cylinder=$6, right_axis=$7, right_vision=$8,
			left_sphere=$9, left_cylinder=$10, left_axis=$11, left_vision=$12,
			amount_received=$13, amount_due=$14, discount=$15, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Complaint, p.Diagnosis, p.Treatment,
		p.RightSphere, p.RightCylinder, p.RightAxis, p.RightVision,
		p.LeftSphere, p.LeftCylinder, p.LeftAxis, p.LeftVision,
		p.AmountReceived, p.AmountDue, p.Discount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescription WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) collect(rows pgx.Rows) ([]*Prescription, error) {
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM prescription WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM prescription WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *repoPG) ListByDateRange(ctx context.Context, from, to time.Time) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM prescription WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at`, from, to)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Prescription, int, error) {
	where := `TRUE`
	args := []interface{}{}
	n := 1
	if v, ok := params["complaint"]; ok {
		where += fmt.Sprintf(` AND complaint ILIKE $%d`, n)
		args = append(args, "%"+v+"%")
		n++
	}
	if v, ok := params["diagnosis"]; ok {
		where += fmt.Sprintf(` AND diagnosis ILIKE $%d`, n)
		args = append(args, "%"+v+"%")
		n++
	}
	if v, ok := params["serial"]; ok {
		where += fmt.Sprintf(` AND serial_number = $%d`, n)
		args = append(args, v)
		n++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescription WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM prescription WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, cols, where, n, n+1)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	return items, total, err
}
