package model

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCancelled:
		return true
	}
	return false
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type PatientRef struct {
	Name string `json:"name"`
}

type ServiceRef struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// Appointment is a backend booking record. Date and Time mirror StartTime.
type Appointment struct {
	ID        int64             `json:"id"`
	ClinicID  int64             `json:"clinicId"`
	Patient   PatientRef        `json:"patient"`
	Service   *ServiceRef       `json:"service,omitempty"`
	StartTime time.Time         `json:"start_time"`
	Status    AppointmentStatus `json:"status"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
}

// DeriveDateTime fills Date and Time from StartTime.
func (a *Appointment) DeriveDateTime() {
	a.Date = a.StartTime.Format(DateLayout)
	a.Time = a.StartTime.Format(TimeLayout)
}

// Consistent reports whether Date and Time agree with StartTime.
func (a Appointment) Consistent() bool {
	return a.Date == a.StartTime.Format(DateLayout) && a.Time == a.StartTime.Format(TimeLayout)
}

// Clone returns a deep copy so callers never share the Service pointer.
func (a Appointment) Clone() Appointment {
	if a.Service != nil {
		svc := *a.Service
		a.Service = &svc
	}
	return a
}

type BookAppointmentRequest struct {
	ClinicID    int64     `json:"clinicId" binding:"required,gt=0"`
	ServiceID   int64     `json:"serviceId" binding:"required,gt=0"`
	ServiceName string    `json:"serviceName"`
	PatientName string    `json:"patientName" binding:"required"`
	StartDate   time.Time `json:"startDate" binding:"required"`
}

type UpdateAppointmentRequest struct {
	PatientName string            `json:"patientName" binding:"required"`
	ServiceName string            `json:"serviceName"`
	StartTime   time.Time         `json:"start_time" binding:"required"`
	Status      AppointmentStatus `json:"status" binding:"required,oneof=pending confirmed cancelled"`
	Date        string            `json:"date" binding:"required"`
	Time        string            `json:"time" binding:"required"`
}
