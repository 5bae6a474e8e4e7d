package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/service/remote"
	"github.com/jwalitptl/clinic-dashboard/pkg/auth"
	"github.com/jwalitptl/clinic-dashboard/pkg/circuitbreaker"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
	"github.com/jwalitptl/clinic-dashboard/pkg/security"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newService(repo *MockUserRepository) *Service {
	caller := remote.NewCaller(circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{Name: "test"}), nil)
	return NewService(repo, caller, auth.NewJWTService("secret", time.Hour), security.NewBcryptHasher(bcrypt.MinCost), "http://patients.local/", nil)
}

func TestLogin_Dentist(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByEmail", mock.Anything, "john@example.com").Return(&model.User{
		ID: 1, FirstName: "John", LastName: "Smith", Email: "john@example.com",
		Role: model.RoleDentist, ClinicID: 101, PasswordHash: hashed(t, "password"),
	}, nil)
	svc := newService(repo)

	resp, err := svc.Login(context.Background(), "john@example.com", "password")
	require.NoError(t, err)
	assert.False(t, resp.ShouldRedirect)
	assert.Equal(t, "John", resp.FirstName)
	require.NotEmpty(t, resp.JWT)

	claims, err := svc.ValidateToken(context.Background(), resp.JWT)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, int64(101), claims.ClinicID)
	assert.Equal(t, model.RoleDentist, claims.Role)
}

func TestLogin_PatientIsRedirected(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByEmail", mock.Anything, "bruce@example.com").Return(&model.User{
		ID: 3, Email: "bruce@example.com", Role: model.RolePatient, PasswordHash: hashed(t, "password"),
	}, nil)
	svc := newService(repo)

	resp, err := svc.Login(context.Background(), "bruce@example.com", "password")
	require.NoError(t, err)
	assert.True(t, resp.ShouldRedirect)
	assert.Empty(t, resp.JWT)
	require.True(t, strings.HasPrefix(resp.RedirectURL, "http://patients.local/auto-login?token="))

	u, err := url.Parse(resp.RedirectURL)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), u.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, claims.Role)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByEmail", mock.Anything, "john@example.com").Return(&model.User{
		ID: 1, Role: model.RoleDentist, PasswordHash: hashed(t, "password"),
	}, nil)
	repo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, apperrors.NotFound("user", nil))
	svc := newService(repo)

	_, err := svc.Login(context.Background(), "john@example.com", "wrong")
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))

	_, err = svc.Login(context.Background(), "nobody@example.com", "password")
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
}

func TestLogin_BackendDown(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	svc := newService(repo)

	_, err := svc.Login(context.Background(), "john@example.com", "password")
	assert.True(t, apperrors.IsRemoteFailure(err))
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newService(new(MockUserRepository))
	_, err := svc.ValidateToken(context.Background(), "garbage")
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
}
