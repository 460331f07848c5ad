package dropdown

import (
	"time"

	"github.com/google/uuid"
)

// Option is one user-extensible pick-list entry for a named form field,
// e.g. ("guardian_relation", "Self").
type Option struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Field string    `db:"field" json:"field"`
	Value string    `db:"value" json:"value"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
