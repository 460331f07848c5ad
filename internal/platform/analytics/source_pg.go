package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

// sourcePG reads narrow projections straight from the tables; the dashboard
// has no need for full entities.
type sourcePG struct {
	pool    *pgxpool.Pool
	dialect goqu.DialectWrapper
}

func NewSourcePG(pool *pgxpool.Pool) Source {
	return &sourcePG{pool: pool, dialect: goqu.Dialect("postgres")}
}

func (s *sourcePG) rangeQuery(table string, cols []interface{}, dateCol string, from, to time.Time) (string, []interface{}, error) {
	return s.dialect.From(table).
		Select(cols...).
		Where(goqu.C(dateCol).Gte(from), goqu.C(dateCol).Lt(to)).
		Prepared(true).
		ToSQL()
}

func (s *sourcePG) Patients(ctx context.Context, from, to time.Time) ([]PatientRow, error) {
	sql, args, err := s.rangeQuery("patient",
		[]interface{}{goqu.COALESCE(goqu.C("gender"), "").As("gender"), goqu.COALESCE(goqu.C("age"), 0).As("age"), "created_at"},
		"created_at", from, to)
	if err != nil {
		return nil, fmt.Errorf("build patients query: %w", err)
	}
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []PatientRow
	for rows.Next() {
		var r PatientRow
		if err := rows.Scan(&r.Gender, &r.Age, &r.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *sourcePG) Prescriptions(ctx context.Context, from, to time.Time) ([]PrescriptionRow, error) {
	sql, args, err := s.rangeQuery("prescription",
		[]interface{}{"patient_id", goqu.COALESCE(goqu.C("complaint"), "").As("complaint"),
			goqu.COALESCE(goqu.C("diagnosis"), "").As("diagnosis"),
			"amount_received", "amount_due", "created_at"},
		"created_at", from, to)
	if err != nil {
		return nil, fmt.Errorf("build prescriptions query: %w", err)
	}
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []PrescriptionRow
	for rows.Next() {
		var r PrescriptionRow
		if err := rows.Scan(&r.PatientID, &r.Complaint, &r.Diagnosis, &r.Received, &r.Due, &r.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *sourcePG) Dispenses(ctx context.Context, from, to time.Time) ([]DispenseRow, error) {
	sql, args, err := s.rangeQuery("dispense_record",
		[]interface{}{"item_kind", "total", "dispensed_at"},
		"dispensed_at", from, to)
	if err != nil {
		return nil, fmt.Errorf("build dispenses query: %w", err)
	}
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []DispenseRow
	for rows.Next() {
		var r DispenseRow
		if err := rows.Scan(&r.Kind, &r.Total, &r.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *sourcePG) Operations(ctx context.Context, from, to time.Time) ([]OperationRow, error) {
	sql, args, err := s.rangeQuery("operation",
		[]interface{}{"status", "total", "admitted_at"},
		"admitted_at", from, to)
	if err != nil {
		return nil, fmt.Errorf("build operations query: %w", err)
	}
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []OperationRow
	for rows.Next() {
		var r OperationRow
		if err := rows.Scan(&r.Status, &r.Total, &r.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *sourcePG) Labs(ctx context.Context, from, to time.Time) ([]LabRow, error) {
	// Total mirrors lab.Record.Total: package price for package records,
	// summed test amounts otherwise, less discount.
	sql, args, err := s.dialect.From("lab_record").
		Select(
			goqu.L(`CASE WHEN type = 'package' THEN package_price
				ELSE COALESCE((SELECT SUM((t->>'amount')::numeric) FROM jsonb_array_elements(tests) t), 0)
				END - discount`).As("total"),
			goqu.C("amount_received"),
			goqu.C("created_at"),
		).
		Where(goqu.C("created_at").Gte(from), goqu.C("created_at").Lt(to)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build labs query: %w", err)
	}
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []LabRow
	for rows.Next() {
		var r LabRow
		if err := rows.Scan(&r.Total, &r.Received, &r.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
