package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID        uuid.UUID         `db:"id" json:"id"`
	Number    string            `db:"patient_number" json:"patient_number"`
	Name      string            `db:"name" json:"name"`
	Guardian  *string           `db:"guardian" json:"guardian,omitempty"`
	BirthDate *time.Time        `db:"birth_date" json:"birth_date,omitempty"`
	Age       *int              `db:"age" json:"age,omitempty"`
	Gender    *string           `db:"gender" json:"gender,omitempty"`
	Address   *string           `db:"address" json:"address,omitempty"`
	Phone     *string           `db:"phone" json:"phone,omitempty"`
	// Extra holds fields the schema does not model. Kept so records imported
	// from older installations survive a round trip.
	Extra     map[string]string `db:"extra" json:"extra,omitempty"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

// EffectiveAge prefers the recorded age and falls back to birth date.
func (p *Patient) EffectiveAge(now time.Time) int {
	if p.Age != nil {
		return *p.Age
	}
	if p.BirthDate == nil {
		return 0
	}
	years := now.Year() - p.BirthDate.Year()
	if now.YearDay() < p.BirthDate.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
