package doctor

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartclinic/clinic/pkg/timeslot"
)

// Doctor maps to the doctor table. AvailableTimes holds the declared
// daily slot labels ("09:00", "14:00", ...) in declaration order; they
// live in the doctor_available_times table and recur every day.
type Doctor struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Specialty      string    `db:"specialty" json:"specialty"`
	Email          string    `db:"email" json:"email"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	AvailableTimes []string  `db:"-" json:"available_times"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// AvailableIn reports whether any declared slot falls in the given half of
// the day. Labels that do not parse never match.
func (d *Doctor) AvailableIn(p timeslot.Period) bool {
	for _, label := range d.AvailableTimes {
		td, err := timeslot.ParseLabel(label)
		if err != nil {
			continue
		}
		if td.Period() == p {
			return true
		}
	}
	return false
}

// FilterResult packages a roster query. Doctors is never nil, so an empty
// match still serializes as {"doctors": []}.
type FilterResult struct {
	Doctors []*Doctor `json:"doctors"`
}
