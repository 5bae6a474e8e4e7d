package clinic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/service/remote"
	"github.com/jwalitptl/clinic-dashboard/pkg/circuitbreaker"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

type MockClinicRepository struct {
	mock.Mock
}

func (m *MockClinicRepository) Get(ctx context.Context, id int64) (*model.Clinic, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Clinic)
	return c, args.Error(1)
}

func (m *MockClinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	args := m.Called(ctx, clinic)
	return args.Error(0)
}

func downtown() *model.Clinic {
	return &model.Clinic{
		ID:           101,
		Name:         "Downtown Dental Clinic",
		Address:      "123 Main Street",
		WorkingHours: model.WorkingHours{Start: "09:00", End: "17:00"},
		WorkingDays:  []string{"monday", "friday"},
	}
}

func newService(repo *MockClinicRepository) *Service {
	caller := remote.NewCaller(circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{Name: "test"}), nil)
	return NewService(repo, caller, nil)
}

func TestService_UpdateAddress(t *testing.T) {
	repo := new(MockClinicRepository)
	svc := newService(repo)

	repo.On("Get", mock.Anything, int64(101)).Return(downtown(), nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(c *model.Clinic) bool {
		return c.Address == "9 Elm Street" && c.Name == "Downtown Dental Clinic"
	})).Return(nil)

	clinic, err := svc.UpdateAddress(context.Background(), 101, "  9 Elm Street ")
	require.NoError(t, err)
	assert.Equal(t, "9 Elm Street", clinic.Address)

	_, err = svc.UpdateAddress(context.Background(), 101, " ")
	assert.True(t, apperrors.IsValidation(err))
	repo.AssertNumberOfCalls(t, "Update", 1)
}

func TestService_UpdateSettings(t *testing.T) {
	repo := new(MockClinicRepository)
	svc := newService(repo)

	repo.On("Get", mock.Anything, int64(101)).Return(downtown(), nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	phone := "555-9999"
	clinic, err := svc.UpdateSettings(context.Background(), 101, model.ClinicPatch{
		Phone:        &phone,
		WorkingHours: &model.WorkingHours{Start: "08:30", End: "16:00"},
		WorkingDays:  []string{"saturday", "monday", "monday"},
	})
	require.NoError(t, err)
	assert.Equal(t, "555-9999", clinic.Phone)
	assert.Equal(t, "08:30", clinic.WorkingHours.Start)
	assert.Equal(t, []string{"monday", "saturday"}, clinic.WorkingDays)
	assert.Equal(t, "123 Main Street", clinic.Address)
}

func TestService_UpdateSettingsValidation(t *testing.T) {
	repo := new(MockClinicRepository)
	svc := newService(repo)
	empty := ""

	cases := []model.ClinicPatch{
		{Name: &empty},
		{WorkingHours: &model.WorkingHours{Start: "9:00", End: "17:00"}},
		{WorkingHours: &model.WorkingHours{Start: "17:00", End: "09:00"}},
		{WorkingDays: []string{"Funday"}},
	}
	for _, p := range cases {
		_, err := svc.UpdateSettings(context.Background(), 101, p)
		assert.True(t, apperrors.IsValidation(err))
	}
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestService_RemoteFailureLeavesNothing(t *testing.T) {
	repo := new(MockClinicRepository)
	svc := newService(repo)

	repo.On("Get", mock.Anything, int64(101)).Return(downtown(), nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(errors.New("timeout"))

	clinic, err := svc.UpdateAddress(context.Background(), 101, "elsewhere")
	assert.Nil(t, clinic)
	assert.True(t, apperrors.IsRemoteFailure(err))
}

func TestService_MissingClinic(t *testing.T) {
	repo := new(MockClinicRepository)
	svc := newService(repo)
	repo.On("Get", mock.Anything, int64(5)).Return(nil, apperrors.NotFound("clinic", nil))

	_, err := svc.MyClinic(context.Background(), 5)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestIsClock(t *testing.T) {
	assert.True(t, IsClock("09:00"))
	assert.True(t, IsClock("23:59"))
	assert.False(t, IsClock("9:00"))
	assert.False(t, IsClock("24:00"))
	assert.False(t, IsClock("nine"))
}
