package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Prescription maps to the prescription table. One record doubles as the
// billing receipt for the visit, which is why clinical and billing fields
// live side by side.
type Prescription struct {
	ID            uuid.UUID `db:"id" json:"id"`
	SerialNumber  string    `db:"serial_number" json:"serial_number"`
	ReceiptNumber string    `db:"receipt_number" json:"receipt_number"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`

	Complaint *string `db:"complaint" json:"complaint,omitempty"`
	Diagnosis *string `db:"diagnosis" json:"diagnosis,omitempty"`
	Treatment *string `db:"treatment" json:"treatment,omitempty"`

	// Eye exam readings, free-form as written on the slip.
	RightSphere   *string `db:"right_sphere" json:"right_sphere,omitempty"`
	RightCylinder *string `db:"right_cylinder" json:"right_cylinder,omitempty"`
	RightAxis     *string `db:"right_axis" json:"right_axis,omitempty"`
	RightVision   *string `db:"right_vision" json:"right_vision,omitempty"`
	LeftSphere    *string `db:"left_sphere" json:"left_sphere,omitempty"`
	LeftCylinder  *string `db:"left_cylinder" json:"left_cylinder,omitempty"`
	LeftAxis      *string `db:"left_axis" json:"left_axis,omitempty"`
	LeftVision    *string `db:"left_vision" json:"left_vision,omitempty"`

	AmountReceived float64 `db:"amount_received" json:"amount_received"`
	AmountDue      float64 `db:"amount_due" json:"amount_due"`
	Discount       float64 `db:"discount" json:"discount"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Total is the billed amount for the visit after discount.
func (p *Prescription) Total() float64 {
	return p.AmountReceived + p.AmountDue - p.Discount
}
