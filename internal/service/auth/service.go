package auth

import (
	"context"
	"net/url"
	"strings"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/repository"
	"github.com/jwalitptl/clinic-dashboard/internal/service/remote"
	"github.com/jwalitptl/clinic-dashboard/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
	"github.com/jwalitptl/clinic-dashboard/pkg/logger"
	"github.com/jwalitptl/clinic-dashboard/pkg/security"
)

var ErrInvalidCredentials = &apperrors.AppError{Code: apperrors.ErrUnauthorized, Message: "invalid credentials"}

type Service struct {
	userRepo      repository.UserRepository
	caller        *remote.Caller
	jwtSvc        auth.JWTService
	hasher        security.PasswordHasher
	patientAppURL string
	logger        *logger.Logger
}

func NewService(userRepo repository.UserRepository, caller *remote.Caller, jwtSvc auth.JWTService, hasher security.PasswordHasher, patientAppURL string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		userRepo:      userRepo,
		caller:        caller,
		jwtSvc:        jwtSvc,
		hasher:        hasher,
		patientAppURL: strings.TrimRight(patientAppURL, "/"),
		logger:        log.WithComponent("auth"),
	}
}

// Login checks the credentials. Dentists get a dashboard session; every
// other role is sent to the patient app with a one-shot token.
func (s *Service) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	var user *model.User
	err := s.caller.Call(ctx, "login", func(ctx context.Context) error {
		var err error
		user, err = s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
		return err
	})
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", "email", email)
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if user.Role != model.RoleDentist {
		return &model.LoginResponse{
			Role:           user.Role,
			ShouldRedirect: true,
			RedirectURL:    s.patientAppURL + "/auto-login?token=" + url.QueryEscape(token),
		}, nil
	}

	return &model.LoginResponse{
		JWT:       token,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
	}, nil
}

// ValidateToken returns the claims of a valid token.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return claims, nil
}
