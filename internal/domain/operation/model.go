package operation

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusAdmitted   = "admitted"
	StatusDischarged = "discharged"
)

// Operation is an in-patient record covering the stay from admission to
// discharge. Cross-referenced with prescriptions by patient id only.
type Operation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`

	Procedure *string `db:"procedure" json:"procedure,omitempty"`
	Diagnosis *string `db:"diagnosis" json:"diagnosis,omitempty"`
	Surgeon   *string `db:"surgeon" json:"surgeon,omitempty"`
	Notes     *string `db:"notes" json:"notes,omitempty"`

	Total  float64 `db:"total" json:"total"`
	Status string  `db:"status" json:"status"`

	AdmittedAt   time.Time  `db:"admitted_at" json:"admitted_at"`
	DischargedAt *time.Time `db:"discharged_at" json:"discharged_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
