package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByDoctor(ctx context.Context, doctorID uuid.UUID) error

	ListForDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error)
	StartTimesForDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error)

	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListForPatientByStatus(ctx context.Context, patientID uuid.UUID, status Status) ([]*Appointment, error)
	FilterByDoctorNameForPatient(ctx context.Context, doctorName string, patientID uuid.UUID) ([]*Appointment, error)
	FilterByDoctorNameAndStatusForPatient(ctx context.Context, doctorName string, patientID uuid.UUID, status Status) ([]*Appointment, error)
}
