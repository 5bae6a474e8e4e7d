package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

type appointmentRow struct {
	ID          int64          `db:"id"`
	ClinicID    int64          `db:"clinic_id"`
	PatientName string         `db:"patient_name"`
	ServiceID   sql.NullInt64  `db:"service_id"`
	ServiceName sql.NullString `db:"service_name"`
	StartTime   time.Time      `db:"start_time"`
	Status      string         `db:"status"`
	Date        string         `db:"date"`
	Time        string         `db:"time"`
}

func (r appointmentRow) toModel() *model.Appointment {
	a := &model.Appointment{
		ID:        r.ID,
		ClinicID:  r.ClinicID,
		Patient:   model.PatientRef{Name: r.PatientName},
		StartTime: r.StartTime,
		Status:    model.AppointmentStatus(r.Status),
		Date:      r.Date,
		Time:      r.Time,
	}
	if r.ServiceName.Valid {
		a.Service = &model.ServiceRef{ID: r.ServiceID.Int64, Name: r.ServiceName.String}
	}
	return a
}

func serviceColumns(a *model.Appointment) (sql.NullInt64, sql.NullString) {
	if a.Service == nil {
		return sql.NullInt64{}, sql.NullString{}
	}
	return sql.NullInt64{Int64: a.Service.ID, Valid: a.Service.ID != 0},
		sql.NullString{String: a.Service.Name, Valid: true}
}

const appointmentColumns = `id, clinic_id, patient_name, service_id, service_name, start_time, status, date, time`

func (r *appointmentRepository) List(ctx context.Context, clinicID int64) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE clinic_id = $1 ORDER BY start_time ASC, id ASC`

	var rows []appointmentRow
	if err := r.db.SelectContext(ctx, &rows, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	out := make([]*model.Appointment, len(rows))
	for i, row := range rows {
		out[i] = row.toModel()
	}
	return out, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var row appointmentRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, "appointment")
	}
	return row.toModel(), nil
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			clinic_id, patient_name, service_id, service_name,
			start_time, status, date, time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	serviceID, serviceName := serviceColumns(appointment)

	err := r.db.QueryRowxContext(ctx, query,
		appointment.ClinicID,
		appointment.Patient.Name,
		serviceID,
		serviceName,
		appointment.StartTime,
		appointment.Status,
		appointment.Date,
		appointment.Time,
	).Scan(&appointment.ID)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET patient_name = $1, service_id = $2, service_name = $3,
			start_time = $4, status = $5, date = $6, time = $7
		WHERE id = $8
	`
	serviceID, serviceName := serviceColumns(appointment)

	result, err := r.db.ExecContext(ctx, query,
		appointment.Patient.Name,
		serviceID,
		serviceName,
		appointment.StartTime,
		appointment.Status,
		appointment.Date,
		appointment.Time,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return requireAffected(result, "appointment")
}
