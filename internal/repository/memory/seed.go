package memory

import (
	"time"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

func (b *Backend) seed(passwordHash string) {
	b.clinics[101] = &model.Clinic{
		ID:           101,
		Name:         "Downtown Dental Clinic",
		Address:      "123 Main Street",
		Phone:        "555-1111",
		Email:        "downtown@example.com",
		WorkingHours: model.WorkingHours{Start: "09:00", End: "17:00"},
		WorkingDays:  []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
	}
	b.clinics[102] = &model.Clinic{
		ID:           102,
		Name:         "Uptown Dental Clinic",
		Address:      "456 Broad Avenue",
		Phone:        "555-2222",
		Email:        "uptown@example.com",
		WorkingHours: model.WorkingHours{Start: "10:00", End: "18:00"},
		WorkingDays:  []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"},
	}

	users := []model.User{
		{FirstName: "John", LastName: "Smith", Email: "john@example.com", Phone: "555-1234", Role: model.RoleDentist, ClinicID: 101},
		{FirstName: "Alice", LastName: "Johnson", Email: "alice@example.com", Phone: "555-5678", Role: model.RoleDentist, ClinicID: 102},
		{FirstName: "Bruce", LastName: "Wayne", Email: "bruce@example.com", Phone: "555-0001", Role: model.RolePatient},
	}
	for i := range users {
		b.nextUser++
		u := users[i]
		u.ID = b.nextUser
		u.PasswordHash = passwordHash
		b.users[u.Email] = &u
	}

	b.available = []model.AvailableService{
		{Name: "Cleaning", Category: "Preventive"},
		{Name: "Scaling", Category: "Preventive"},
		{Name: "Filling", Category: "Restorative"},
		{Name: "Root Canal", Category: "Endodontics"},
		{Name: "Extraction", Category: "Surgery"},
		{Name: "Whitening", Category: "Cosmetic"},
		{Name: "Bleaching", Category: "Cosmetic"},
	}
	b.dentistServices[1] = []model.DentistService{
		{Name: "Cleaning", Category: "Preventive", Duration: 30},
		{Name: "Filling", Category: "Restorative", Duration: 45},
		{Name: "Whitening", Category: "Cosmetic", Duration: 60},
	}

	for _, a := range []model.Appointment{
		{
			ClinicID:  101,
			Patient:   model.PatientRef{Name: "Bruce Wayne"},
			Service:   &model.ServiceRef{ID: 1, Name: "Cleaning"},
			StartTime: time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC),
			Status:    model.AppointmentStatusConfirmed,
		},
		{
			ClinicID:  101,
			Patient:   model.PatientRef{Name: "Clark Kent"},
			Service:   &model.ServiceRef{ID: 2, Name: "Filling"},
			StartTime: time.Date(2025, 12, 2, 14, 30, 0, 0, time.UTC),
			Status:    model.AppointmentStatusPending,
		},
	} {
		b.nextAppointment++
		appt := a.Clone()
		appt.ID = b.nextAppointment
		appt.DeriveDateTime()
		b.appointments = append(b.appointments, &appt)
	}
}
