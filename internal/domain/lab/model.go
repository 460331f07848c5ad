package lab

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeRegular = "regular"
	TypePackage = "package"
)

// MaxTests caps the number of test slots on a single record, matching the
// ten-column layout of the paper lab form.
const MaxTests = 10

// TestEntry is one named test with its billed amount.
type TestEntry struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Record is a lab visit: up to MaxTests test slots plus billing totals. Type
// selects between per-test billing (regular) and a flat package price.
type Record struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Type      string    `db:"type" json:"type"`

	Tests []TestEntry `db:"tests" json:"tests"`

	PackagePrice   float64 `db:"package_price" json:"package_price"`
	AmountReceived float64 `db:"amount_received" json:"amount_received"`
	Discount       float64 `db:"discount" json:"discount"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Total is the billed amount: the package price for package records, the sum
// of test amounts otherwise, less discount in both cases.
func (r *Record) Total() float64 {
	if r.Type == TypePackage {
		return r.PackagePrice - r.Discount
	}
	var sum float64
	for _, t := range r.Tests {
		sum += t.Amount
	}
	return sum - r.Discount
}

// Due is the outstanding balance for the record.
func (r *Record) Due() float64 {
	return r.Total() - r.AmountReceived
}
