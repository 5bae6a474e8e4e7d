package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

type clinicRow struct {
	ID           int64          `db:"id"`
	Name         string         `db:"name"`
	Address      string         `db:"address"`
	Phone        string         `db:"phone"`
	Email        string         `db:"email"`
	WorkingStart string         `db:"working_start"`
	WorkingEnd   string         `db:"working_end"`
	WorkingDays  pq.StringArray `db:"working_days"`
}

func (r *clinicRepository) Get(ctx context.Context, id int64) (*model.Clinic, error) {
	query := `
		SELECT id, name, address, phone, email, working_start, working_end, working_days
		FROM clinics
		WHERE id = $1
	`

	var row clinicRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, "clinic")
	}
	return &model.Clinic{
		ID:           row.ID,
		Name:         row.Name,
		Address:      row.Address,
		Phone:        row.Phone,
		Email:        row.Email,
		WorkingHours: model.WorkingHours{Start: row.WorkingStart, End: row.WorkingEnd},
		WorkingDays:  []string(row.WorkingDays),
	}, nil
}

func (r *clinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	query := `
		UPDATE clinics
		SET name = $1, address = $2, phone = $3, email = $4,
			working_start = $5, working_end = $6, working_days = $7
		WHERE id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		clinic.Name,
		clinic.Address,
		clinic.Phone,
		clinic.Email,
		clinic.WorkingHours.Start,
		clinic.WorkingHours.End,
		pq.Array(clinic.WorkingDays),
		clinic.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinic: %w", err)
	}
	return requireAffected(result, "clinic")
}
