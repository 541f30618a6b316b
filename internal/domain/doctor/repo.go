package doctor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByEmail(ctx context.Context, email string) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Doctor, error)
	FindByName(ctx context.Context, name string) ([]*Doctor, error)
	FindBySpecialty(ctx context.Context, specialty string) ([]*Doctor, error)
	FindByNameAndSpecialty(ctx context.Context, name, specialty string) ([]*Doctor, error)
}

// AppointmentSource is the slice of the appointment store the doctor
// service needs: booked start instants for availability resolution, and
// the cascade purge used when a doctor is removed.
type AppointmentSource interface {
	StartTimesForDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error)
	DeleteAllByDoctor(ctx context.Context, doctorID uuid.UUID) error
}
