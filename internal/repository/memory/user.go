package memory

import (
	"context"
	"strings"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

type userRepository struct {
	*Backend
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := r.users[key]; ok {
		return apperrors.Conflict("email already registered")
	}
	r.nextUser++
	user.ID = r.nextUser
	u := *user
	r.users[key] = &u
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	out := *u
	return &out, nil
}
