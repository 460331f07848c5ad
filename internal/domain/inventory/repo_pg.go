package inventory

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
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// --- medicines ---

type medicineRepoPG struct{ pool *pgxpool.Pool }

func NewMedicineRepoPG(pool *pgxpool.Pool) MedicineRepository {
	return &medicineRepoPG{pool: pool}
}

const medicineCols = `id, name, batch, expiry, quantity, price, status, created_at, updated_at`

func scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	err := row.Scan(&m.ID, &m.Name, &m.Batch, &m.Expiry, &m.Quantity, &m.Price, &m.Status,
		&m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &m, err
}

func (r *medicineRepoPG) Create(ctx context.Context, m *Medicine) error {
	m.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO medicine (id, name, batch, expiry, quantity, price, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.Name, m.Batch, m.Expiry, m.Quantity, m.Price, m.Status)
	return err
}

func (r *medicineRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return scanMedicine(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+medicineCols+` FROM medicine WHERE id = $1`, id))
}

func (r *medicineRepoPG) Update(ctx context.Context, m *Medicine) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE medicine SET name=$2, batch=$3, expiry=$4, quantity=$5, price=$6, status=$7, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Batch, m.Expiry, m.Quantity, m.Price, m.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *medicineRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM medicine WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *medicineRepoPG) List(ctx context.Context, status string, limit, offset int) ([]*Medicine, int, error) {
	where := `TRUE`
	args := []interface{}{}
	n := 1
	if status != "" {
		where = fmt.Sprintf(`status = $%d`, n)
		args = append(args, status)
		n++
	}
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM medicine WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM medicine WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		medicineCols, where, n, n+1)
	args = append(args, limit, offset)
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

// Decrement is a single conditional update so two dispensers cannot both
// take the last units.
func (r *medicineRepoPG) Decrement(ctx context.Context, id uuid.UUID, qty int) (*Medicine, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE medicine
		SET quantity = quantity - $2,
		    status = CASE WHEN quantity - $2 <= 0 THEN 'out_of_stock' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
		RETURNING `+medicineCols, id, qty)
	m, err := scanMedicine(row)
	if errors.Is(err, ErrNotFound) {
		// Either the row is missing or the stock ran short.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInsufficientStock
	}
	return m, err
}

// --- opticals ---

type opticalRepoPG struct{ pool *pgxpool.Pool }

func NewOpticalRepoPG(pool *pgxpool.Pool) OpticalRepository {
	return &opticalRepoPG{pool: pool}
}

const opticalCols = `id, kind, brand, model, size, power, quantity, price, status, created_at, updated_at`

func scanOptical(row pgx.Row) (*OpticalItem, error) {
	var o OpticalItem
	err := row.Scan(&o.ID, &o.Kind, &o.Brand, &o.Model, &o.Size, &o.Power,
		&o.Quantity, &o.Price, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &o, err
}

func (r *opticalRepoPG) Create(ctx context.Context, o *OpticalItem) error {
	o.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO optical_item (id, kind, brand, model, size, power, quantity, price, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.Kind, o.Brand, o.Model, o.Size, o.Power, o.Quantity, o.Price, o.Status)
	return err
}

func (r *opticalRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*OpticalItem, error) {
	return scanOptical(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+opticalCols+` FROM optical_item WHERE id = $1`, id))
}

func (r *opticalRepoPG) Update(ctx context.Context, o *OpticalItem) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE optical_item SET kind=$2, brand=$3, model=$4, size=$5, power=$6,
			quantity=$7, price=$8, status=$9, updated_at=NOW()
		WHERE id = $1`,
		o.ID, o.Kind, o.Brand, o.Model, o.Size, o.Power, o.Quantity, o.Price, o.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *opticalRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM optical_item WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *opticalRepoPG) List(ctx context.Context, kind, status string, limit, offset int) ([]*OpticalItem, int, error) {
	where := `TRUE`
	args := []interface{}{}
	n := 1
	if kind != "" {
		where += fmt.Sprintf(` AND kind = $%d`, n)
		args = append(args, kind)
		n++
	}
	if status != "" {
		where += fmt.Sprintf(` AND status = $%d`, n)
		args = append(args, status)
		n++
	}
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM optical_item WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM optical_item WHERE %s ORDER BY brand LIMIT $%d OFFSET $%d`,
		opticalCols, where, n, n+1)
	args = append(args, limit, offset)
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*OpticalItem
	for rows.Next() {
		o, err := scanOptical(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}

func (r *opticalRepoPG) Decrement(ctx context.Context, id uuid.UUID, qty int) (*OpticalItem, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE optical_item
		SET quantity = quantity - $2,
		    status = CASE WHEN quantity - $2 <= 0 THEN 'out_of_stock' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
		RETURNING `+opticalCols, id, qty)
	o, err := scanOptical(row)
	if errors.Is(err, ErrNotFound) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInsufficientStock
	}
	return o, err
}

// --- dispense log ---

type dispenseRepoPG struct{ pool *pgxpool.Pool }

func NewDispenseRepoPG(pool *pgxpool.Pool) DispenseRepository {
	return &dispenseRepoPG{pool: pool}
}

const dispenseCols = `id, item_id, item_kind, item_name, patient_id, quantity, unit_price, total, dispensed_by, dispensed_at`

func scanDispense(row pgx.Row) (*DispenseRecord, error) {
	var d DispenseRecord
	err := row.Scan(&d.ID, &d.ItemID, &d.ItemKind, &d.ItemName, &d.PatientID,
		&d.Quantity, &d.UnitPrice, &d.Total, &d.DispensedBy, &d.DispensedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &d, err
}

func (r *dispenseRepoPG) Create(ctx context.Context, d *DispenseRecord) error {
	d.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO dispense_record (id, item_id, item_kind, item_name, patient_id, quantity, unit_price, total, dispensed_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		d.ID, d.ItemID, d.ItemKind, d.ItemName, d.PatientID, d.Quantity, d.UnitPrice, d.Total, d.DispensedBy)
	return err
}

func (r *dispenseRepoPG) List(ctx context.Context, kind string, limit, offset int) ([]*DispenseRecord, int, error) {
	where := `TRUE`
	args := []interface{}{}
	n := 1
	if kind != "" {
		where = fmt.Sprintf(`item_kind = $%d`, n)
		args = append(args, kind)
		n++
	}
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM dispense_record WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM dispense_record WHERE %s ORDER BY dispensed_at DESC LIMIT $%d OFFSET $%d`,
		dispenseCols, where, n, n+1)
	args = append(args, limit, offset)
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*DispenseRecord
	for rows.Next() {
		d, err := scanDispense(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *dispenseRepoPG) ListByDateRange(ctx context.Context, from, to time.Time) ([]*DispenseRecord, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+dispenseCols+` FROM dispense_record WHERE dispensed_at >= $1 AND dispensed_at < $2 ORDER BY dispensed_at`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*DispenseRecord
	for rows.Next() {
		d, err := scanDispense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
