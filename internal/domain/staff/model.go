package staff

import (
	"time"

	"github.com/google/uuid"
)

// Modules lists every permission flag a staff account can carry. Admins
// bypass the per-module check entirely.
var Modules = []string{
	"patients", "prescriptions", "operations", "inventory",
	"labs", "staff", "dropdowns", "analytics", "export",
}

type Staff struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Username     string          `db:"username" json:"username"`
	Name         string          `db:"name" json:"name"`
	PasswordHash string          `db:"password_hash" json:"-"`
	Admin        bool            `db:"admin" json:"admin"`
	Permissions  map[string]bool `db:"permissions" json:"permissions"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
