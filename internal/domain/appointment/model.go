package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartclinic/clinic/pkg/timeslot"
)

// Status is the appointment state. Only two values have ever been stored.
type Status int

const (
	StatusScheduled Status = 0
	StatusCompleted Status = 1
)

func (s Status) Valid() bool {
	return s == StatusScheduled || s == StatusCompleted
}

func (s Status) String() string {
	switch s {
	case StatusScheduled:
		return "scheduled"
	case StatusCompleted:
		return "completed"
	}
	return "unknown"
}

// Appointment maps to the appointment table. Every visit is exactly one
// hour; only the start instant is stored. PatientName, PatientEmail and
// DoctorName are joined in on reads and never written back.
type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	DoctorName   string `db:"-" json:"doctor_name,omitempty"`
	PatientName  string `db:"-" json:"patient_name,omitempty"`
	PatientEmail string `db:"-" json:"patient_email,omitempty"`
}

// EndTime derives the end of the visit.
func (a *Appointment) EndTime() time.Time {
	return timeslot.End(a.StartTime)
}

// Date returns the start instant truncated to its calendar day.
func (a *Appointment) Date() time.Time {
	return time.Date(a.StartTime.Year(), a.StartTime.Month(), a.StartTime.Day(), 0, 0, 0, 0, a.StartTime.Location())
}

// TimeOfDay returns the wall-clock start time.
func (a *Appointment) TimeOfDay() timeslot.TimeOfDay {
	return timeslot.Of(a.StartTime)
}
