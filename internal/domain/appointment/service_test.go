package appointment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/smartclinic/clinic/internal/domain/doctor"
	"github.com/smartclinic/clinic/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	appointments map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	m.appointments[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appointments[a.ID]; !ok {
		return ErrNotFound
	}
	m.appointments[a.ID] = a
	return nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	a, ok := m.appointments[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.appointments[id]; !ok {
		return ErrNotFound
	}
	delete(m.appointments, id)
	return nil
}

func (m *mockRepo) DeleteAllByDoctor(_ context.Context, doctorID uuid.UUID) error {
	for id, a := range m.appointments {
		if a.DoctorID == doctorID {
			delete(m.appointments, id)
		}
	}
	return nil
}

func (m *mockRepo) ListForDoctorBetween(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	var result []*Appointment
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && !a.StartTime.Before(from) && a.StartTime.Before(to) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockRepo) StartTimesForDoctorBetween(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	var result []time.Time
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && !a.StartTime.Before(from) && a.StartTime.Before(to) {
			result = append(result, a.StartTime)
		}
	}
	return result, nil
}

func (m *mockRepo) ListForPatient(_ context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	var result []*Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockRepo) ListForPatientByStatus(_ context.Context, patientID uuid.UUID, status Status) ([]*Appointment, error) {
	var result []*Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID && a.Status == status {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockRepo) FilterByDoctorNameForPatient(_ context.Context, doctorName string, patientID uuid.UUID) ([]*Appointment, error) {
	var result []*Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID && strings.Contains(strings.ToLower(a.DoctorName), strings.ToLower(doctorName)) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockRepo) FilterByDoctorNameAndStatusForPatient(_ context.Context, doctorName string, patientID uuid.UUID, status Status) ([]*Appointment, error) {
	var result []*Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID && a.Status == status && strings.Contains(strings.ToLower(a.DoctorName), strings.ToLower(doctorName)) {
			result = append(result, a)
		}
	}
	return result, nil
}

// -- Mock DoctorDirectory --

type mockDirectory struct {
	slots   map[uuid.UUID][]string
	doctors map[string]*doctor.Doctor
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		slots:   make(map[uuid.UUID][]string),
		doctors: make(map[string]*doctor.Doctor),
	}
}

func (m *mockDirectory) AvailableSlots(_ context.Context, doctorID uuid.UUID, _ time.Time) ([]string, error) {
	slots, ok := m.slots[doctorID]
	if !ok {
		return nil, doctor.ErrNotFound
	}
	return slots, nil
}

func (m *mockDirectory) GetByEmail(_ context.Context, email string) (*doctor.Doctor, error) {
	d, ok := m.doctors[email]
	if !ok {
		return nil, doctor.ErrNotFound
	}
	return d, nil
}

// -- Mock TokenVerifier --
//
// Tokens are "role:email" strings; Validate checks the role prefix.

type mockTokens struct{}

func (mockTokens) Validate(raw string, required auth.Role) bool {
	return strings.HasPrefix(raw, string(required)+":")
}

func (mockTokens) ExtractEmail(raw string) (string, error) {
	_, email, ok := strings.Cut(raw, ":")
	if !ok {
		return "", auth.ErrBadToken
	}
	return email, nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockRepo, *mockDirectory) {
	repo := newMockRepo()
	dir := newMockDirectory()
	svc := NewService(repo, dir, NewValidator(dir), mockTokens{}, passthroughTx)
	return svc, repo, dir
}

// -- Book --

func TestBookPersistsWithoutValidation(t *testing.T) {
	svc, repo, dir := newTestService()
	doctorID := uuid.New()
	dir.slots[doctorID] = []string{"09:00"}

	// 13:00 is not a declared slot; booking still succeeds because the
	// booking path never consults the validator.
	a := &Appointment{
		DoctorID:  doctorID,
		PatientID: uuid.New(),
		StartTime: time.Date(2026, 4, 1, 13, 0, 0, 0, time.UTC),
	}
	if got := svc.Book(context.Background(), a); got != 1 {
		t.Fatalf("Book = %d, want 1", got)
	}
	if len(repo.appointments) != 1 {
		t.Error("appointment not persisted")
	}
	if repo.appointments[a.ID].Status != StatusScheduled {
		t.Error("new booking not scheduled")
	}
}

// -- Update --

func seedAppointment(repo *mockRepo, doctorID, patientID uuid.UUID, start time.Time) *Appointment {
	a := &Appointment{
		DoctorID:     doctorID,
		PatientID:    patientID,
		StartTime:    start,
		PatientEmail: "pat@clinic.test",
		PatientName:  "Pat Doe",
	}
	repo.Create(context.Background(), a)
	return a
}

func TestUpdateReschedules(t *testing.T) {
	svc, repo, dir := newTestService()
	doctorID, patientID := uuid.New(), uuid.New()
	dir.slots[doctorID] = []string{"09:00", "10:00"}
	a := seedAppointment(repo, doctorID, patientID, time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))

	upd := &Appointment{
		ID:        a.ID,
		DoctorID:  doctorID,
		PatientID: patientID,
		StartTime: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := svc.Update(context.Background(), upd); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if repo.appointments[a.ID].StartTime.Hour() != 10 {
		t.Error("reschedule not persisted")
	}
}

func TestUpdateRejectsOwnershipChange(t *testing.T) {
	svc, repo, dir := newTestService()
	doctorID, patientID := uuid.New(), uuid.New()
	dir.slots[doctorID] = []string{"09:00", "10:00"}
	a := seedAppointment(repo, doctorID, patientID, time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))

	cases := []struct {
		name string
		upd  *Appointment
	}{
		{"patient change", &Appointment{ID: a.ID, DoctorID: doctorID, PatientID: uuid.New(), StartTime: a.StartTime}},
		{"doctor change", &Appointment{ID: a.ID, DoctorID: uuid.New(), PatientID: patientID, StartTime: a.StartTime}},
	}
	for _, c := range cases {
		err := svc.Update(context.Background(), c.upd)
		if !errors.Is(err, ErrConflict) {
			t.Errorf("%s: err = %v, want ErrConflict", c.name, err)
		}
	}

	stored := repo.appointments[a.ID]
	if stored.PatientID != patientID || stored.DoctorID != doctorID || stored.StartTime.Hour() != 9 {
		t.Error("rejected update mutated the stored appointment")
	}
}

func TestUpdateUnavailableSlot(t *testing.T) {
	svc, repo, dir := newTestService()
	doctorID, patientID := uuid.New(), uuid.New()
	dir.slots[doctorID] = []string{"09:00"}
	a := seedAppointment(repo, doctorID, patientID, time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))

	upd := &Appointment{ID: a.ID, DoctorID: doctorID, PatientID: patientID,
		StartTime: time.Date(2026, 4, 1, 11, 0, 0, 0, time.UTC)}
	if err := svc.Update(context.Background(), upd); !errors.Is(err, ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
	if repo.appointments[a.ID].StartTime.Hour() != 9 {
		t.Error("failed update mutated the stored appointment")
	}
}

func TestUpdateUnknownAppointment(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Update(context.Background(), &Appointment{ID: uuid.New()})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// -- Cancel --

func TestCancel(t *testing.T) {
	svc, repo, _ := newTestService()
	a := seedAppointment(repo, uuid.New(), uuid.New(), time.Now())

	if err := svc.Cancel(context.Background(), a.ID, "patient:pat@clinic.test"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if len(repo.appointments) != 0 {
		t.Error("appointment not deleted")
	}
}

func TestCancelWrongRole(t *testing.T) {
	svc, repo, _ := newTestService()
	a := seedAppointment(repo, uuid.New(), uuid.New(), time.Now())

	err := svc.Cancel(context.Background(), a.ID, "doctor:pat@clinic.test")
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
	if len(repo.appointments) != 1 {
		t.Error("forbidden cancel removed the appointment")
	}
}

func TestCancelOtherPatient(t *testing.T) {
	svc, repo, _ := newTestService()
	a := seedAppointment(repo, uuid.New(), uuid.New(), time.Now())

	err := svc.Cancel(context.Background(), a.ID, "patient:someone.else@clinic.test")
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
	if len(repo.appointments) != 1 {
		t.Error("forbidden cancel removed the appointment")
	}
}

func TestCancelUnknownAppointment(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Cancel(context.Background(), uuid.New(), "patient:pat@clinic.test")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// -- ForDoctorDay --

func TestForDoctorDay(t *testing.T) {
	svc, repo, dir := newTestService()
	doctorID := uuid.New()
	dir.doctors["alice@clinic.test"] = &doctor.Doctor{ID: doctorID, Email: "alice@clinic.test"}

	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	seedAppointment(repo, doctorID, uuid.New(), day.Add(9*time.Hour))
	seedAppointment(repo, doctorID, uuid.New(), day.Add(10*time.Hour))
	seedAppointment(repo, doctorID, uuid.New(), day.AddDate(0, 0, 1).Add(9*time.Hour))
	seedAppointment(repo, uuid.New(), uuid.New(), day.Add(9*time.Hour))

	appts, err := svc.ForDoctorDay(context.Background(), "", day, "doctor:alice@clinic.test")
	if err != nil {
		t.Fatalf("ForDoctorDay: %v", err)
	}
	if len(appts) != 2 {
		t.Errorf("got %d appointments, want 2 for the day", len(appts))
	}
}

func TestForDoctorDayWindowExcludesLastHour(t *testing.T) {
	svc, repo, dir := newTestService()
	doctorID := uuid.New()
	dir.doctors["alice@clinic.test"] = &doctor.Doctor{ID: doctorID, Email: "alice@clinic.test"}

	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	seedAppointment(repo, doctorID, uuid.New(), day.Add(22*time.Hour))
	seedAppointment(repo, doctorID, uuid.New(), day.Add(23*time.Hour+30*time.Minute))

	appts, err := svc.ForDoctorDay(context.Background(), "", day, "doctor:alice@clinic.test")
	if err != nil {
		t.Fatalf("ForDoctorDay: %v", err)
	}
	if len(appts) != 1 {
		t.Errorf("got %d appointments, want 1: the day window ends at 23:00", len(appts))
	}
}

func TestForDoctorDayPatientNameIsCaseSensitive(t *testing.T) {
	svc, repo, dir := newTestService()
	doctorID := uuid.New()
	dir.doctors["alice@clinic.test"] = &doctor.Doctor{ID: doctorID, Email: "alice@clinic.test"}

	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	seedAppointment(repo, doctorID, uuid.New(), day.Add(9*time.Hour))

	appts, err := svc.ForDoctorDay(context.Background(), "Pat Doe", day, "doctor:alice@clinic.test")
	if err != nil {
		t.Fatalf("ForDoctorDay: %v", err)
	}
	if len(appts) != 1 {
		t.Errorf("exact name matched %d, want 1", len(appts))
	}

	appts, err = svc.ForDoctorDay(context.Background(), "pat doe", day, "doctor:alice@clinic.test")
	if err != nil {
		t.Fatalf("ForDoctorDay: %v", err)
	}
	if len(appts) != 0 {
		t.Errorf("lowercased name matched %d, want 0: the filter compares exact case", len(appts))
	}
}

func TestForDoctorDayRequiresDoctorToken(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.ForDoctorDay(context.Background(), "", time.Now(), "patient:pat@clinic.test")
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestForDoctorDayUnknownDoctor(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.ForDoctorDay(context.Background(), "", time.Now(), "doctor:ghost@clinic.test")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// -- UpdateStatus --

func TestUpdateStatus(t *testing.T) {
	svc, repo, _ := newTestService()
	a := seedAppointment(repo, uuid.New(), uuid.New(), time.Now())

	if err := svc.UpdateStatus(context.Background(), a.ID, StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if repo.appointments[a.ID].Status != StatusCompleted {
		t.Error("status not persisted")
	}

	if err := svc.UpdateStatus(context.Background(), a.ID, Status(7)); !errors.Is(err, ErrBadRequest) {
		t.Errorf("invalid status: err = %v, want ErrBadRequest", err)
	}
}
