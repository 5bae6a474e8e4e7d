package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

var start = time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

func appointmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "clinic_id", "patient_name", "service_id", "service_name", "start_time", "status", "date", "time",
	})
}

func TestAppointmentRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepositories(db).Appointments

	mock.ExpectQuery(`SELECT .* FROM appointments WHERE clinic_id = \$1`).
		WithArgs(int64(101)).
		WillReturnRows(appointmentRows().
			AddRow(1, 101, "Bruce Wayne", 1, "Cleaning", start, "confirmed", "2025-12-01", "09:00").
			AddRow(2, 101, "Clark Kent", nil, nil, start.Add(time.Hour), "pending", "2025-12-01", "10:00"))

	list, err := repo.List(context.Background(), 101)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, &model.ServiceRef{ID: 1, Name: "Cleaning"}, list[0].Service)
	assert.Nil(t, list[1].Service)
	assert.Equal(t, model.AppointmentStatusPending, list[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_GetMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepositories(db).Appointments

	mock.ExpectQuery(`SELECT .* FROM appointments WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 9)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepositories(db).Appointments

	appt := &model.Appointment{
		ClinicID:  101,
		Patient:   model.PatientRef{Name: "Diana Prince"},
		Service:   &model.ServiceRef{ID: 3, Name: "Whitening"},
		StartTime: start,
		Status:    model.AppointmentStatusPending,
		Date:      "2025-12-01",
		Time:      "09:00",
	}

	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(int64(101), "Diana Prince", sql.NullInt64{Int64: 3, Valid: true}, sql.NullString{String: "Whitening", Valid: true},
			start, model.AppointmentStatusPending, "2025-12-01", "09:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	require.NoError(t, repo.Create(context.Background(), appt))
	assert.Equal(t, int64(42), appt.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_Update(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepositories(db).Appointments
	appt := &model.Appointment{ID: 5, Patient: model.PatientRef{Name: "x"}, Status: model.AppointmentStatusCancelled}

	mock.ExpectExec(`UPDATE appointments`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), appt))

	mock.ExpectExec(`UPDATE appointments`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.True(t, apperrors.IsNotFound(repo.Update(context.Background(), appt)))

	mock.ExpectExec(`UPDATE appointments`).
		WillReturnError(errors.New("connection reset"))
	err := repo.Update(context.Background(), appt)
	require.Error(t, err)
	assert.False(t, apperrors.IsNotFound(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRepository_ReplaceDentistServices(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepositories(db).Services

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM dentist_services WHERE dentist_id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO dentist_services`).
		WithArgs(int64(1), 0, "Cleaning", "Preventive", 30).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO dentist_services`).
		WithArgs(int64(1), 1, "Filling", "Restorative", 45).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReplaceDentistServices(context.Background(), 1, []model.DentistService{
		{Name: "Cleaning", Category: "Preventive", Duration: 30},
		{Name: "Filling", Category: "Restorative", Duration: 45},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRepository_ReplaceRollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepositories(db).Services

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM dentist_services`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO dentist_services`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.ReplaceDentistServices(context.Background(), 1, []model.DentistService{{Name: "Cleaning", Duration: 30}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRepository_Lists(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepositories(db).Services

	mock.ExpectQuery(`SELECT name, category FROM available_services`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "category"}).AddRow("Cleaning", "Preventive"))
	mock.ExpectQuery(`SELECT name, category, duration\s+FROM dentist_services`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "category", "duration"}))

	available, err := repo.ListAvailable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.AvailableService{{Name: "Cleaning", Category: "Preventive"}}, available)

	own, err := repo.ListDentistServices(context.Background(), 2)
	require.NoError(t, err)
	assert.NotNil(t, own)
	assert.Empty(t, own)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClinicRepository(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepositories(db).Clinics

	mock.ExpectQuery(`SELECT .* FROM clinics\s+WHERE id = \$1`).
		WithArgs(int64(101)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "address", "phone", "email", "working_start", "working_end", "working_days",
		}).AddRow(101, "Downtown Dental Clinic", "123 Main Street", "555-1111", "downtown@example.com",
			"09:00", "17:00", []byte("{monday,tuesday}")))

	clinic, err := repo.Get(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "09:00", clinic.WorkingHours.Start)
	assert.Equal(t, []string{"monday", "tuesday"}, clinic.WorkingDays)

	mock.ExpectExec(`UPDATE clinics`).
		WithArgs(clinic.Name, "1 New Road", clinic.Phone, clinic.Email, "09:00", "17:00", sqlmock.AnyArg(), int64(101)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	clinic.Address = "1 New Road"
	require.NoError(t, repo.Update(context.Background(), clinic))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepositories(db).Users

	mock.ExpectQuery(`SELECT .* FROM users\s+WHERE email = LOWER\(\$1\)`).
		WithArgs("John@Example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "first_name", "last_name", "email", "phone", "role", "clinic_id", "password_hash",
		}).AddRow(1, "John", "Smith", "john@example.com", "555-1234", "Dentist", 101, "hash"))

	u, err := repo.GetByEmail(context.Background(), "John@Example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(101), u.ClinicID)
	assert.Equal(t, "hash", u.PasswordHash)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505"})
	err = repo.Create(context.Background(), &model.User{Email: "john@example.com"})
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
