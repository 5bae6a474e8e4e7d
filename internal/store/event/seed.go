package event

import (
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

var (
	appointmentTypes = []string{"Scaling", "General Checkup", "Extraction", "Bleaching"}
	eventStatuses    = []string{
		string(model.EventStatusScheduled),
		string(model.EventStatusFinished),
		string(model.EventStatusEncounter),
		string(model.EventStatusRegistered),
	}
	seedColors = []string{string(model.ColorPink), string(model.ColorGreen), string(model.ColorBlue)}
)

// Generate builds count demo events spread over the two weeks around now.
// Starts fall on a quarter hour between 09:00 and 16:45 and last 30 or 60
// minutes; doctors are picked from doctorIDs.
func Generate(f *gofakeit.Faker, now time.Time, doctorIDs []string, count int) []model.Event {
	if len(doctorIDs) == 0 || count <= 0 {
		return nil
	}

	from := now.AddDate(0, 0, -7)
	span := now.AddDate(0, 0, 7).Sub(from)

	events := make([]model.Event, 0, count)
	for i := 0; i < count; i++ {
		day := from.Add(time.Duration(f.Number(0, int(span/time.Minute))) * time.Minute)
		start := time.Date(day.Year(), day.Month(), day.Day(),
			9+f.Number(0, 7), f.Number(0, 3)*15, 0, 0, now.Location())
		duration := 30 * time.Minute
		if f.Bool() {
			duration = time.Hour
		}

		patient := f.Name()
		events = append(events, model.Event{
			ID:          strconv.Itoa(i + 1),
			Title:       patient,
			Start:       start,
			End:         start.Add(duration),
			DoctorID:    f.RandomString(doctorIDs),
			Status:      model.EventStatus(f.RandomString(eventStatuses)),
			Type:        f.RandomString(appointmentTypes),
			PatientName: patient,
			ColorTag:    model.ColorTag(f.RandomString(seedColors)),
		})
	}
	return events
}
