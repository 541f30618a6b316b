package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/smartclinic/clinic/internal/domain/doctor"
	"github.com/smartclinic/clinic/internal/platform/auth"
	"github.com/smartclinic/clinic/pkg/timeslot"
)

// Verdict is the tri-state outcome of validating a proposed appointment.
type Verdict int

const (
	VerdictDoctorNotFound  Verdict = -1
	VerdictSlotUnavailable Verdict = 0
	VerdictOK              Verdict = 1
)

// DoctorDirectory is the slice of the roster the appointment workflows
// need. Satisfied by doctor.Service.
type DoctorDirectory interface {
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error)
	GetByEmail(ctx context.Context, email string) (*doctor.Doctor, error)
}

// Validator decides whether a proposed appointment time is bookable. It
// never writes; callers persist on VerdictOK.
type Validator struct {
	doctors DoctorDirectory
}

func NewValidator(doctors DoctorDirectory) *Validator {
	return &Validator{doctors: doctors}
}

// Validate resolves the doctor and checks the proposed start against the
// slot set the availability resolver reports for that day. The check
// mirrors the resolver's filtering exactly, whichever way its toggle
// points. The role is the capacity the caller books in; no current rule
// branches on it, but every call site supplies it.
func (v *Validator) Validate(ctx context.Context, a *Appointment, role auth.Role) (Verdict, error) {
	_ = role

	slots, err := v.doctors.AvailableSlots(ctx, a.DoctorID, a.StartTime)
	if errors.Is(err, doctor.ErrNotFound) {
		return VerdictDoctorNotFound, nil
	}
	if err != nil {
		return VerdictSlotUnavailable, err
	}

	want := timeslot.Of(a.StartTime)
	for _, label := range slots {
		td, err := timeslot.ParseLabel(label)
		if err != nil {
			continue
		}
		if td == want {
			return VerdictOK, nil
		}
	}
	return VerdictSlotUnavailable, nil
}
