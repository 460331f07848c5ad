package patient

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

// patientNumberLockID scopes the advisory lock that serializes patient
// number allocation.
const patientNumberLockID = 7101

const cols = `id, patient_number, name, guardian, birth_date, age, gender, address, phone, extra, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Number, &p.Name, &p.Guardian, &p.BirthDate, &p.Age,
		&p.Gender, &p.Address, &p.Phone, &p.Extra, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	return db.WithTx(ctx, r.pool, func(txCtx context.Context) error {
		conn := r.conn(txCtx)
		if p.Number == "" {
			// Serialize allocation so two concurrent registrations cannot
			// read the same maximum.
			if _, err := conn.Exec(txCtx, `SELECT pg_advisory_xact_lock($1)`, patientNumberLockID); err != nil {
				return fmt.Errorf("acquire patient number lock: %w", err)
			}
			numbers, err := r.numbers(txCtx)
			if err != nil {
				return err
			}
			p.Number = serial.Format(serial.Next(numbers, "P"), "P")
		}
		_, err := conn.Exec(txCtx, `
			INSERT INTO patient (id, patient_number, name, guardian, birth_date, age, gender, address, phone, extra)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			p.ID, p.Number, p.Name, p.Guardian, p.BirthDate, p.Age, p.Gender, p.Address, p.Phone, p.Extra)
		return err
	})
}

func (r *repoPG) numbers(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT patient_number FROM patient`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByNumber(ctx context.Context, number string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM patient WHERE patient_number = $1`, number))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET name=$2, guardian=$3, birth_date=$4, age=$5, gender=$6,
			address=$7, phone=$8, extra=$9, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Guardian, p.BirthDate, p.Age, p.Gender, p.Address, p.Phone, p.Extra)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	where := `TRUE`
	args := []interface{}{}
	n := 1
	if v, ok := params["name"]; ok {
		where += fmt.Sprintf(` AND name ILIKE $%d`, n)
		args = append(args, "%"+v+"%")
		n++
	}
	if v, ok := params["phone"]; ok {
		where += fmt.Sprintf(` AND phone ILIKE $%d`, n)
		args = append(args, "%"+v+"%")
		n++
	}
	if v, ok := params["number"]; ok {
		where += fmt.Sprintf(` AND patient_number ILIKE $%d`, n)
		args = append(args, "%"+v+"%")
		n++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM patient WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, cols, where, n, n+1)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func (r *repoPG) ListByDateRange(ctx context.Context, from, to time.Time) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM patient WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}
