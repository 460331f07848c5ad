package inventory

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusAvailable  = "available"
	StatusOutOfStock = "out_of_stock"
)

const (
	KindMedicine = "medicine"
	KindOptical  = "optical"
)

type Medicine struct {
	ID       uuid.UUID  `db:"id" json:"id"`
	Name     string     `db:"name" json:"name"`
	Batch    *string    `db:"batch" json:"batch,omitempty"`
	Expiry   *time.Time `db:"expiry" json:"expiry,omitempty"`
	Quantity int        `db:"quantity" json:"quantity"`
	Price    float64    `db:"price" json:"price"`
	Status   string     `db:"status" json:"status"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// OpticalItem is a frame or lens held in stock.
type OpticalItem struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Kind     string    `db:"kind" json:"kind"`
	Brand    string    `db:"brand" json:"brand"`
	Model    *string   `db:"model" json:"model,omitempty"`
	Size     *string   `db:"size" json:"size,omitempty"`
	Power    *string   `db:"power" json:"power,omitempty"`
	Quantity int       `db:"quantity" json:"quantity"`
	Price    float64   `db:"price" json:"price"`
	Status   string    `db:"status" json:"status"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DispenseRecord is an append-only log entry for stock leaving the shelf.
// ItemName and UnitPrice are denormalized so the log survives item deletion.
type DispenseRecord struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	ItemID    uuid.UUID  `db:"item_id" json:"item_id"`
	ItemKind  string     `db:"item_kind" json:"item_kind"`
	ItemName  string     `db:"item_name" json:"item_name"`
	PatientID *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	Quantity  int        `db:"quantity" json:"quantity"`
	UnitPrice float64    `db:"unit_price" json:"unit_price"`
	Total     float64    `db:"total" json:"total"`

	DispensedBy string    `db:"dispensed_by" json:"dispensed_by,omitempty"`
	DispensedAt time.Time `db:"dispensed_at" json:"dispensed_at"`
}
