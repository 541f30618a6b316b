package doctor

import (
	"context"
	"errors"

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

const doctorCols = `id, name, specialty, email, phone, password_hash, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Specialty, &d.Email, &d.Phone,
		&d.PasswordHash, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor (id, name, specialty, email, phone, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		d.ID, d.Name, d.Specialty, d.Email, d.Phone, d.PasswordHash)
	if err != nil {
		return err
	}
	return r.replaceTimes(ctx, d.ID, d.AvailableTimes)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return d, r.loadTimes(ctx, d)
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE email = $1`, email))
	if err != nil {
		return nil, err
	}
	return d, r.loadTimes(ctx, d)
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor SET name=$2, specialty=$3, email=$4, phone=$5, password_hash=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Specialty, d.Email, d.Phone, d.PasswordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return r.replaceTimes(ctx, d.ID, d.AvailableTimes)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor_available_times WHERE doctor_id = $1`, id); err != nil {
		return err
	}
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context) ([]*Doctor, error) {
	return r.queryDoctors(ctx, `SELECT `+doctorCols+` FROM doctor ORDER BY name`)
}

func (r *repoPG) FindByName(ctx context.Context, name string) ([]*Doctor, error) {
	return r.queryDoctors(ctx,
		`SELECT `+doctorCols+` FROM doctor WHERE name ILIKE '%' || $1 || '%' ORDER BY name`, name)
}

func (r *repoPG) FindBySpecialty(ctx context.Context, specialty string) ([]*Doctor, error) {
	return r.queryDoctors(ctx,
		`SELECT `+doctorCols+` FROM doctor WHERE LOWER(specialty) = LOWER($1) ORDER BY name`, specialty)
}

func (r *repoPG) FindByNameAndSpecialty(ctx context.Context, name, specialty string) ([]*Doctor, error) {
	return r.queryDoctors(ctx,
		`SELECT `+doctorCols+` FROM doctor
		 WHERE name ILIKE '%' || $1 || '%' AND LOWER(specialty) = LOWER($2) ORDER BY name`,
		name, specialty)
}

func (r *repoPG) queryDoctors(ctx context.Context, sql string, args ...interface{}) ([]*Doctor, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, r.loadTimesAll(ctx, items)
}

// replaceTimes rewrites the declared slot labels, keeping declaration order
// in the position column.
func (r *repoPG) replaceTimes(ctx context.Context, doctorID uuid.UUID, labels []string) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor_available_times WHERE doctor_id = $1`, doctorID); err != nil {
		return err
	}
	for i, label := range labels {
		if _, err := r.conn(ctx).Exec(ctx,
			`INSERT INTO doctor_available_times (doctor_id, position, slot_label) VALUES ($1,$2,$3)`,
			doctorID, i, label); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) loadTimes(ctx context.Context, d *Doctor) error {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT slot_label FROM doctor_available_times WHERE doctor_id = $1 ORDER BY position`, d.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return err
		}
		d.AvailableTimes = append(d.AvailableTimes, label)
	}
	return rows.Err()
}

func (r *repoPG) loadTimesAll(ctx context.Context, ds []*Doctor) error {
	if len(ds) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(ds))
	byID := make(map[uuid.UUID]*Doctor, len(ds))
	for i, d := range ds {
		ids[i] = d.ID
		byID[d.ID] = d
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT doctor_id, slot_label FROM doctor_available_times
		 WHERE doctor_id = ANY($1) ORDER BY doctor_id, position`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var label string
		if err := rows.Scan(&id, &label); err != nil {
			return err
		}
		if d := byID[id]; d != nil {
			d.AvailableTimes = append(d.AvailableTimes, label)
		}
	}
	return rows.Err()
}
