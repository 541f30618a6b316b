package patient

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/smartclinic/clinic/internal/domain/appointment"
	"github.com/smartclinic/clinic/internal/platform/auth"
)

var (
	ErrNotFound       = errors.New("patient not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")
)

// TokenIssuer issues login tokens. Satisfied by auth.Tokens.
type TokenIssuer interface {
	Generate(email string, role auth.Role) (string, error)
}

// AppointmentSource is the read side of the patient's bookings. Satisfied
// by appointment.Repository.
type AppointmentSource interface {
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error)
	ListForPatientByStatus(ctx context.Context, patientID uuid.UUID, status appointment.Status) ([]*appointment.Appointment, error)
	FilterByDoctorNameForPatient(ctx context.Context, doctorName string, patientID uuid.UUID) ([]*appointment.Appointment, error)
	FilterByDoctorNameAndStatusForPatient(ctx context.Context, doctorName string, patientID uuid.UUID, status appointment.Status) ([]*appointment.Appointment, error)
}

type Service struct {
	patients     Repository
	appointments AppointmentSource
	tokens       TokenIssuer
}

func NewService(patients Repository, appointments AppointmentSource, tokens TokenIssuer) *Service {
	return &Service{patients: patients, appointments: appointments, tokens: tokens}
}

// Register creates a patient account. The email must be unused.
func (s *Service) Register(ctx context.Context, p *Patient, password string) error {
	_, err := s.patients.GetByEmail(ctx, p.Email)
	switch {
	case err == nil:
		return ErrDuplicateEmail
	case !errors.Is(err, ErrNotFound):
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	p.PasswordHash = hash
	return s.patients.Create(ctx, p)
}

// Login checks the credential and issues a patient-scoped token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	p, err := s.patients.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", err
	}
	if !auth.CheckPassword(p.PasswordHash, password) {
		return "", ErrBadCredentials
	}
	return s.tokens.Generate(p.Email, auth.RolePatient)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	return s.patients.GetByEmail(ctx, email)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	existing, err := s.patients.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if p.PasswordHash == "" {
		p.PasswordHash = existing.PasswordHash
	}
	return s.patients.Update(ctx, p)
}

// Appointments lists the patient's bookings, optionally narrowed by doctor
// name (substring, case-insensitive) and status. Always returns a non-nil
// slice ordered by start time.
func (s *Service) Appointments(ctx context.Context, patientID uuid.UUID, doctorName string, status *appointment.Status) ([]*appointment.Appointment, error) {
	var (
		appts []*appointment.Appointment
		err   error
	)
	switch {
	case doctorName != "" && status != nil:
		appts, err = s.appointments.FilterByDoctorNameAndStatusForPatient(ctx, doctorName, patientID, *status)
	case doctorName != "":
		appts, err = s.appointments.FilterByDoctorNameForPatient(ctx, doctorName, patientID)
	case status != nil:
		appts, err = s.appointments.ListForPatientByStatus(ctx, patientID, *status)
	default:
		appts, err = s.appointments.ListForPatient(ctx, patientID)
	}
	if err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []*appointment.Appointment{}
	}
	// The ordering guarantee holds no matter how the source returns rows.
	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].StartTime.Before(appts[j].StartTime)
	})
	return appts, nil
}
