package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

const uniqueViolation = "23505"

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			first_name, last_name, email, phone, role, clinic_id, password_hash
		) VALUES ($1, $2, LOWER($3), $4, $5, $6, $7)
		RETURNING id
	`
	clinicID := sql.NullInt64{Int64: user.ClinicID, Valid: user.ClinicID != 0}

	err := r.db.QueryRowxContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.Role,
		clinicID,
		user.PasswordHash,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperrors.Conflict("email already registered")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, role,
			COALESCE(clinic_id, 0) AS clinic_id, password_hash
		FROM users
		WHERE email = LOWER($1)
	`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}
