package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smartclinic/clinic/internal/domain/doctor"
	"github.com/smartclinic/clinic/internal/platform/auth"
	"github.com/smartclinic/clinic/internal/platform/db"
	"github.com/smartclinic/clinic/pkg/timeslot"
)

var (
	ErrNotFound   = errors.New("appointment not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
)

// TokenVerifier is the identity contract the lifecycle operations trust
// completely: role validation and email extraction, nothing else.
// Satisfied by auth.Tokens.
type TokenVerifier interface {
	Validate(raw string, required auth.Role) bool
	ExtractEmail(raw string) (string, error)
}

// Service owns the appointment lifecycle: book, update, cancel, the
// doctor's day view and status transitions.
type Service struct {
	appointments Repository
	doctors      DoctorDirectory
	validator    *Validator
	tokens       TokenVerifier
	runTx        db.TxRunner
}

func NewService(appointments Repository, doctors DoctorDirectory, validator *Validator, tokens TokenVerifier, runTx db.TxRunner) *Service {
	return &Service{appointments: appointments, doctors: doctors, validator: validator, tokens: tokens, runTx: runTx}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// Book persists a new appointment and returns 1 on success, 0 on failure.
// Unlike Update it does not run the Validator first: booking has always
// trusted the calling controller to pre-check availability. Keep the
// asymmetry until that contract changes.
func (s *Service) Book(ctx context.Context, a *Appointment) int {
	a.Status = StatusScheduled
	if err := s.appointments.Create(ctx, a); err != nil {
		return 0
	}
	return 1
}

// Update reschedules an appointment. The doctor and patient assignment is
// immutable once booked; only the time (and status) may change. The new
// time must pass the Validator.
func (s *Service) Update(ctx context.Context, a *Appointment) error {
	return s.runTx(ctx, func(ctx context.Context) error {
		stored, err := s.appointments.GetByID(ctx, a.ID)
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: update request for invalid appointment id", ErrNotFound)
		}
		if err != nil {
			return err
		}

		if stored.PatientID != a.PatientID {
			return fmt.Errorf("%w: patient not same as previous appointment", ErrConflict)
		}
		if stored.DoctorID != a.DoctorID {
			return fmt.Errorf("%w: doctor not same as previous appointment", ErrConflict)
		}

		verdict, err := s.validator.Validate(ctx, a, auth.RolePatient)
		if err != nil {
			return err
		}
		switch verdict {
		case VerdictSlotUnavailable:
			return fmt.Errorf("%w: appointment time not available", ErrConflict)
		case VerdictDoctorNotFound:
			return fmt.Errorf("%w: doctor not found", ErrBadRequest)
		}

		return s.appointments.Update(ctx, a)
	})
}

// Cancel deletes an appointment on behalf of the patient who owns it. The
// raw caller token is checked here, not at the route layer, because
// ownership needs the token's email.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, token string) error {
	if !s.tokens.Validate(token, auth.RolePatient) {
		return fmt.Errorf("%w: invalid authentication token", ErrForbidden)
	}

	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}

	email, err := s.tokens.ExtractEmail(token)
	if err != nil {
		return fmt.Errorf("%w: invalid authentication token", ErrForbidden)
	}
	if email != a.PatientEmail {
		return fmt.Errorf("%w: patient mismatch with sender", ErrForbidden)
	}

	return s.appointments.Delete(ctx, id)
}

// ForDoctorDay lists the calling doctor's appointments for one calendar
// day, the doctor resolved from the token's email. A non-blank
// patientName narrows to exact, case-sensitive name matches. That is
// stricter than the roster's case-insensitive filters and stays that way
// until the dashboards agree on one convention.
func (s *Service) ForDoctorDay(ctx context.Context, patientName string, date time.Time, token string) ([]*Appointment, error) {
	if !s.tokens.Validate(token, auth.RoleDoctor) {
		return nil, fmt.Errorf("%w: invalid authentication token", ErrForbidden)
	}
	email, err := s.tokens.ExtractEmail(token)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid authentication token", ErrForbidden)
	}

	d, err := s.doctors.GetByEmail(ctx, email)
	if errors.Is(err, doctor.ErrNotFound) {
		return nil, fmt.Errorf("%w: no doctor for token", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	from, to := timeslot.DayWindow(date)
	appts, err := s.appointments.ListForDoctorBetween(ctx, d.ID, from, to)
	if err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	if patientName == "" {
		return appts, nil
	}

	filtered := make([]*Appointment, 0, len(appts))
	for _, a := range appts {
		if a.PatientName == patientName {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// UpdateStatus applies the scheduled -> completed transition.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: invalid status %d", ErrBadRequest, status)
	}
	if _, err := s.appointments.GetByID(ctx, id); err != nil {
		return err
	}
	return s.appointments.UpdateStatus(ctx, id, status)
}
