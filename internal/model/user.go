package model

const (
	RoleDentist = "Dentist"
	RolePatient = "Patient"
	RoleAdmin   = "Admin"
)

// User is a dashboard account.
type User struct {
	ID           int64  `json:"id" db:"id"`
	FirstName    string `json:"firstName" db:"first_name"`
	LastName     string `json:"lastName" db:"last_name"`
	Email        string `json:"email" db:"email"`
	Phone        string `json:"phone" db:"phone"`
	Role         string `json:"role" db:"role"`
	ClinicID     int64  `json:"clinicId" db:"clinic_id"`
	PasswordHash string `json:"-" db:"password_hash"`
}
