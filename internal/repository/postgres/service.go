package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

func (r *serviceRepository) ListAvailable(ctx context.Context) ([]model.AvailableService, error) {
	query := `SELECT name, category FROM available_services ORDER BY category, name`

	services := []model.AvailableService{}
	if err := r.db.SelectContext(ctx, &services, query); err != nil {
		return nil, fmt.Errorf("failed to list available services: %w", err)
	}
	return services, nil
}

func (r *serviceRepository) ListDentistServices(ctx context.Context, dentistID int64) ([]model.DentistService, error) {
	query := `
		SELECT name, category, duration
		FROM dentist_services
		WHERE dentist_id = $1
		ORDER BY position
	`

	services := []model.DentistService{}
	if err := r.db.SelectContext(ctx, &services, query, dentistID); err != nil {
		return nil, fmt.Errorf("failed to list dentist services: %w", err)
	}
	return services, nil
}

func (r *serviceRepository) ReplaceDentistServices(ctx context.Context, dentistID int64, services []model.DentistService) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM dentist_services WHERE dentist_id = $1`, dentistID); err != nil {
			return fmt.Errorf("failed to clear dentist services: %w", err)
		}

		query := `
			INSERT INTO dentist_services (dentist_id, position, name, category, duration)
			VALUES ($1, $2, $3, $4, $5)
		`
		for i, s := range services {
			if _, err := tx.ExecContext(ctx, query, dentistID, i, s.Name, s.Category, s.Duration); err != nil {
				return fmt.Errorf("failed to insert dentist service %q: %w", s.Name, err)
			}
		}
		return nil
	})
}
