package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartclinic/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.ConnFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// apptCols always joins doctor and patient so every read carries the
// display names and the patient's email for ownership checks.
const apptCols = `a.id, a.doctor_id, a.patient_id, a.start_time, a.status, a.created_at, a.updated_at,
	d.name, p.name, p.email`

const apptFrom = ` FROM appointment a
	JOIN doctor d ON d.id = a.doctor_id
	JOIN patient p ON p.id = a.patient_id`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.StartTime, &a.Status,
		&a.CreatedAt, &a.UpdatedAt, &a.DoctorName, &a.PatientName, &a.PatientEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, doctor_id, patient_id, start_time, status)
		VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.DoctorID, a.PatientID, a.StartTime, a.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+apptFrom+` WHERE a.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET start_time=$2, status=$3, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.StartTime, a.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE appointment SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) DeleteAllByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE doctor_id = $1`, doctorID)
	return err
}

func (r *repoPG) ListForDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	return r.queryAppointments(ctx,
		`SELECT `+apptCols+apptFrom+`
		 WHERE a.doctor_id = $1 AND a.start_time >= $2 AND a.start_time < $3
		 ORDER BY a.start_time`,
		doctorID, from, to)
}

func (r *repoPG) StartTimesForDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT start_time FROM appointment
		 WHERE doctor_id = $1 AND start_time >= $2 AND start_time < $3
		 ORDER BY start_time`,
		doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var starts []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		starts = append(starts, t)
	}
	return starts, rows.Err()
}

func (r *repoPG) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return r.queryAppointments(ctx,
		`SELECT `+apptCols+apptFrom+` WHERE a.patient_id = $1 ORDER BY a.start_time`, patientID)
}

func (r *repoPG) ListForPatientByStatus(ctx context.Context, patientID uuid.UUID, status Status) ([]*Appointment, error) {
	return r.queryAppointments(ctx,
		`SELECT `+apptCols+apptFrom+`
		 WHERE a.patient_id = $1 AND a.status = $2 ORDER BY a.start_time`,
		patientID, status)
}

func (r *repoPG) FilterByDoctorNameForPatient(ctx context.Context, doctorName string, patientID uuid.UUID) ([]*Appointment, error) {
	return r.queryAppointments(ctx,
		`SELECT `+apptCols+apptFrom+`
		 WHERE a.patient_id = $1 AND d.name ILIKE '%' || $2 || '%' ORDER BY a.start_time`,
		patientID, doctorName)
}

func (r *repoPG) FilterByDoctorNameAndStatusForPatient(ctx context.Context, doctorName string, patientID uuid.UUID, status Status) ([]*Appointment, error) {
	return r.queryAppointments(ctx,
		`SELECT `+apptCols+apptFrom+`
		 WHERE a.patient_id = $1 AND d.name ILIKE '%' || $2 || '%' AND a.status = $3
		 ORDER BY a.start_time`,
		patientID, doctorName, status)
}

func (r *repoPG) queryAppointments(ctx context.Context, sql string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
