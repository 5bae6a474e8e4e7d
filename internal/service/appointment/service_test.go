package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/service/remote"
	"github.com/jwalitptl/clinic-dashboard/pkg/circuitbreaker"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
	"github.com/jwalitptl/clinic-dashboard/pkg/messaging"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) List(ctx context.Context, clinicID int64) ([]*model.Appointment, error) {
	args := m.Called(ctx, clinicID)
	list, _ := args.Get(0).([]*model.Appointment)
	return list, args.Error(1)
}

func (m *MockAppointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	appt, _ := args.Get(0).(*model.Appointment)
	return appt, args.Error(1)
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

var start = time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

func seeded() *model.Appointment {
	a := &model.Appointment{
		ID:        1,
		ClinicID:  101,
		Patient:   model.PatientRef{Name: "Bruce Wayne"},
		Service:   &model.ServiceRef{ID: 1, Name: "Cleaning"},
		StartTime: start,
		Status:    model.AppointmentStatusConfirmed,
	}
	a.DeriveDateTime()
	return a
}

func newService(repo *MockAppointmentRepository, opts Options) (*Service, *metrics.Metrics) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	caller := remote.NewCaller(circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{Name: "test", MaxFailures: 100}), m)
	opts.Metrics = m
	return NewService(repo, caller, Config{CacheTTL: time.Minute}, opts), m
}

func TestService_ListIsCached(t *testing.T) {
	repo := new(MockAppointmentRepository)
	svc, m := newService(repo, Options{})

	repo.On("List", mock.Anything, int64(101)).Return([]*model.Appointment{seeded()}, nil).Once()

	first, err := svc.List(context.Background(), 101)
	require.NoError(t, err)
	require.Len(t, first, 1)

	first[0].Patient.Name = "mutated by caller"
	first[0].Service.Name = "mutated by caller"

	second, err := svc.List(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "Bruce Wayne", second[0].Patient.Name)
	assert.Equal(t, "Cleaning", second[0].Service.Name)

	repo.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("appointments", "hit")))
}

func TestService_ListRemoteFailure(t *testing.T) {
	repo := new(MockAppointmentRepository)
	svc, _ := newService(repo, Options{})

	repo.On("List", mock.Anything, int64(101)).Return(nil, errors.New("connection refused"))

	_, err := svc.List(context.Background(), 101)
	assert.True(t, apperrors.IsRemoteFailure(err))
}

func TestService_Create(t *testing.T) {
	repo := new(MockAppointmentRepository)
	svc, m := newService(repo, Options{})

	repo.On("List", mock.Anything, int64(101)).Return([]*model.Appointment{seeded()}, nil).Twice()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Appointment) bool {
		return a.Status == model.AppointmentStatusPending &&
			a.Date == "2025-12-03" && a.Time == "14:30" &&
			a.Patient.Name == "Clark Kent" && a.Service.ID == 2
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Appointment).ID = 3
	}).Return(nil).Once()

	_, err := svc.List(context.Background(), 101)
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), model.BookAppointmentRequest{
		ClinicID:    101,
		ServiceID:   2,
		ServiceName: "Filling",
		PatientName: "Clark Kent",
		StartDate:   time.Date(2025, 12, 3, 14, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
	assert.True(t, created.Consistent())

	// cache was invalidated, so this lists from the backend again
	_, err = svc.List(context.Background(), 101)
	require.NoError(t, err)

	repo.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MutationsTotal.WithLabelValues("create", "success")))
}

func TestService_CreateValidation(t *testing.T) {
	repo := new(MockAppointmentRepository)
	svc, _ := newService(repo, Options{})

	cases := []model.BookAppointmentRequest{
		{ServiceID: 1, PatientName: "x", StartDate: start},
		{ClinicID: 101, PatientName: "x", StartDate: start},
		{ClinicID: 101, ServiceID: 1, PatientName: "  ", StartDate: start},
		{ClinicID: 101, ServiceID: 1, PatientName: "x"},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), req)
		assert.True(t, apperrors.IsValidation(err), "%+v", req)
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_CreateFailureLeavesCache(t *testing.T) {
	repo := new(MockAppointmentRepository)
	svc, _ := newService(repo, Options{})

	repo.On("List", mock.Anything, int64(101)).Return([]*model.Appointment{seeded()}, nil).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("503")).Once()

	before, err := svc.List(context.Background(), 101)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), model.BookAppointmentRequest{
		ClinicID: 101, ServiceID: 1, PatientName: "x", StartDate: start,
	})
	assert.True(t, apperrors.IsRemoteFailure(err))

	after, err := svc.List(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	repo.AssertExpectations(t)
}

func TestService_UpdateKeepsGivenDateTime(t *testing.T) {
	repo := new(MockAppointmentRepository)
	svc, _ := newService(repo, Options{})

	repo.On("Get", mock.Anything, int64(1)).Return(seeded(), nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	newStart := start.Add(48 * time.Hour)
	updated, err := svc.Update(context.Background(), 1, model.UpdateAppointmentRequest{
		PatientName: "Bruce Wayne",
		ServiceName: "Cleaning",
		StartTime:   newStart,
		Status:      model.AppointmentStatusConfirmed,
		Date:        "2025-12-01",
		Time:        "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, newStart, updated.StartTime)
	assert.Equal(t, "2025-12-01", updated.Date)
	assert.False(t, updated.Consistent())
	assert.Equal(t, int64(1), updated.Service.ID)
}

func TestService_UpdateMissing(t *testing.T) {
	repo := new(MockAppointmentRepository)
	svc, _ := newService(repo, Options{})

	repo.On("Get", mock.Anything, int64(9)).Return(nil, apperrors.NotFound("appointment", nil))

	_, err := svc.Update(context.Background(), 9, model.UpdateAppointmentRequest{
		PatientName: "x", StartTime: start, Status: model.AppointmentStatusPending, Date: "d", Time: "t",
	})
	assert.True(t, apperrors.IsNotFound(err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)

	_, err = svc.Update(context.Background(), 1, model.UpdateAppointmentRequest{Status: "archived"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestService_Cancel(t *testing.T) {
	repo := new(MockAppointmentRepository)
	svc, _ := newService(repo, Options{})

	repo.On("Get", mock.Anything, int64(1)).Return(seeded(), nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(a *model.Appointment) bool {
		return a.ID == 1 && a.Status == model.AppointmentStatusCancelled
	})).Return(nil).Once()

	cancelled, err := svc.Cancel(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	assert.Equal(t, "Bruce Wayne", cancelled.Patient.Name)
	repo.AssertExpectations(t)
}

func TestService_SameIDMutationsAreSerialized(t *testing.T) {
	repo := new(MockAppointmentRepository)
	svc, _ := newService(repo, Options{})

	release := make(chan struct{})
	entered := make(chan struct{}, 2)
	var mu sync.Mutex
	running, maxRunning := 0, 0

	repo.On("Get", mock.Anything, int64(1)).Return(seeded(), nil)
	repo.On("Update", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		mu.Lock()
		running++
		if running > maxRunning {
			maxRunning = running
		}
		mu.Unlock()
		entered <- struct{}{}
		<-release
		mu.Lock()
		running--
		mu.Unlock()
	}).Return(nil)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Cancel(context.Background(), 1)
			assert.NoError(t, err)
		}()
	}

	<-entered
	assert.True(t, svc.Pending(1))
	assert.False(t, svc.Pending(2))
	release <- struct{}{}
	<-entered
	release <- struct{}{}
	wg.Wait()

	assert.Equal(t, 1, maxRunning)
	assert.False(t, svc.Pending(1))
}

func TestService_CancelledContextDiscardsResult(t *testing.T) {
	repo := new(MockAppointmentRepository)
	svc, _ := newService(repo, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	repo.On("Get", mock.Anything, int64(1)).Return(seeded(), nil)
	repo.On("Update", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		cancel()
	}).Return(nil)

	out, err := svc.Cancel(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
}

func TestService_InvalidationAcrossInstances(t *testing.T) {
	broker := messaging.NewBrokerAdapter(messaging.NewMemoryBroker(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writerRepo := new(MockAppointmentRepository)
	writer, _ := newService(writerRepo, Options{Broker: broker})

	readerRepo := new(MockAppointmentRepository)
	reader, _ := newService(readerRepo, Options{Broker: broker})
	require.NoError(t, reader.Listen(ctx))

	readerRepo.On("List", mock.Anything, int64(101)).Return([]*model.Appointment{seeded()}, nil)
	_, err := reader.List(ctx, 101)
	require.NoError(t, err)
	_, found := reader.cache.Get(cacheKey(101))
	require.True(t, found)

	writerRepo.On("Get", mock.Anything, int64(1)).Return(seeded(), nil)
	writerRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	_, err = writer.Cancel(ctx, 1)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, found := reader.cache.Get(cacheKey(101))
		return !found
	}, time.Second, 5*time.Millisecond)
}
