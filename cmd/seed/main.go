package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-dashboard/internal/config"
	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/repository"
	"github.com/jwalitptl/clinic-dashboard/internal/repository/postgres"
	"github.com/jwalitptl/clinic-dashboard/pkg/logger"
	"github.com/jwalitptl/clinic-dashboard/pkg/security"
)

var availableServices = []model.AvailableService{
	{Name: "Cleaning", Category: "Preventive"},
	{Name: "Scaling", Category: "Preventive"},
	{Name: "Filling", Category: "Restorative"},
	{Name: "Root Canal", Category: "Endodontics"},
	{Name: "Extraction", Category: "Surgery"},
	{Name: "Whitening", Category: "Cosmetic"},
	{Name: "Bleaching", Category: "Cosmetic"},
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    true,
	})
	log.Logger = *appLogger.Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}

	password := cfg.Backend.DemoPassword
	if password == "" {
		password = "password"
	}
	hash, err := security.NewBcryptHasher(0).Hash(password)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash demo password")
	}

	s := &seeder{
		db:    db,
		repos: postgres.NewRepositories(db),
		faker: gofakeit.New(uint64(cfg.Seed.FakerSeed)),
		hash:  hash,
	}
	if err := s.run(ctx, cfg.Seed.Events); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Str("password", password).Msg("demo data seeded")
}

type seeder struct {
	db    *sqlx.DB
	repos repository.Repositories
	faker *gofakeit.Faker
	hash  string
}

func (s *seeder) run(ctx context.Context, appointments int) error {
	if err := s.seedAvailable(ctx); err != nil {
		return err
	}

	for i := 0; i < 2; i++ {
		clinicID, err := s.seedClinic(ctx)
		if err != nil {
			return err
		}

		dentist, err := s.seedUser(ctx, model.RoleDentist, clinicID)
		if err != nil {
			return err
		}
		if err := s.seedDentistServices(ctx, dentist.ID); err != nil {
			return err
		}
		if err := s.seedAppointments(ctx, clinicID, appointments); err != nil {
			return err
		}
		log.Info().
			Int64("clinic_id", clinicID).
			Str("dentist", dentist.Email).
			Msg("clinic seeded")
	}

	patient, err := s.seedUser(ctx, model.RolePatient, 0)
	if err != nil {
		return err
	}
	log.Info().Str("patient", patient.Email).Msg("patient seeded")
	return nil
}

func (s *seeder) seedAvailable(ctx context.Context) error {
	for _, svc := range availableServices {
		if _, err := s.db.NamedExecContext(ctx,
			`INSERT INTO available_services (name, category) VALUES (:name, :category)
			 ON CONFLICT (name) DO NOTHING`, svc); err != nil {
			return fmt.Errorf("failed to seed available service %q: %w", svc.Name, err)
		}
	}
	return nil
}

func (s *seeder) seedClinic(ctx context.Context) (int64, error) {
	city := s.faker.City()
	var id int64
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO clinics (name, address, phone, email, working_start, working_end, working_days)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		city+" Dental Clinic",
		s.faker.Street(),
		s.faker.Phone(),
		strings.ToLower(strings.ReplaceAll(city, " ", ""))+"@example.com",
		"09:00",
		"17:00",
		pq.Array(weekdays),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to seed clinic: %w", err)
	}
	return id, nil
}

func (s *seeder) seedUser(ctx context.Context, role string, clinicID int64) (*model.User, error) {
	first, last := s.faker.FirstName(), s.faker.LastName()
	user := &model.User{
		FirstName:    first,
		LastName:     last,
		Email:        strings.ToLower(first+"."+last) + "@example.com",
		Phone:        s.faker.Phone(),
		Role:         role,
		ClinicID:     clinicID,
		PasswordHash: s.hash,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to seed %s %s: %w", role, user.Email, err)
	}
	return user, nil
}

func (s *seeder) seedDentistServices(ctx context.Context, dentistID int64) error {
	picked := make([]model.DentistService, 0, 3)
	offset := s.faker.Number(0, len(availableServices)-1)
	for k := 0; k < 3; k++ {
		svc := availableServices[(offset+k)%len(availableServices)]
		picked = append(picked, model.DentistService{
			Name:     svc.Name,
			Category: svc.Category,
			Duration: s.faker.RandomInt([]int{15, 30, 45, 60}),
		})
	}
	if err := s.repos.Services.ReplaceDentistServices(ctx, dentistID, picked); err != nil {
		return fmt.Errorf("failed to seed services for dentist %d: %w", dentistID, err)
	}
	return nil
}

func (s *seeder) seedAppointments(ctx context.Context, clinicID int64, n int) error {
	statuses := []model.AppointmentStatus{
		model.AppointmentStatusPending,
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusCancelled,
	}
	day := time.Now().UTC().Truncate(24 * time.Hour)

	for i := 0; i < n; i++ {
		svc := availableServices[s.faker.Number(0, len(availableServices)-1)]
		start := day.AddDate(0, 0, s.faker.Number(-3, 10)).
			Add(time.Duration(s.faker.Number(9*4, 17*4-1)) * 15 * time.Minute)

		appt := &model.Appointment{
			ClinicID:  clinicID,
			Patient:   model.PatientRef{Name: s.faker.Name()},
			Service:   &model.ServiceRef{Name: svc.Name},
			StartTime: start,
			Status:    statuses[s.faker.Number(0, len(statuses)-1)],
		}
		appt.DeriveDateTime()
		if err := s.repos.Appointments.Create(ctx, appt); err != nil {
			return fmt.Errorf("failed to seed appointment: %w", err)
		}
	}
	return nil
}
