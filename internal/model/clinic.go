package model

type WorkingHours struct {
	Start string `json:"start" binding:"omitempty,hhmm"`
	End   string `json:"end" binding:"omitempty,hhmm"`
}

type Clinic struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	Phone        string       `json:"phone"`
	Email        string       `json:"email"`
	WorkingHours WorkingHours `json:"workingHours"`
	WorkingDays  []string     `json:"workingDays"`
}

// Clone returns a copy that does not share WorkingDays.
func (c Clinic) Clone() Clinic {
	c.WorkingDays = append([]string(nil), c.WorkingDays...)
	return c
}

// ClinicPatch lists the editable settings; nil fields are kept.
type ClinicPatch struct {
	Name         *string       `json:"name,omitempty"`
	Phone        *string       `json:"phone,omitempty"`
	Email        *string       `json:"email,omitempty" binding:"omitempty,email"`
	WorkingHours *WorkingHours `json:"workingHours,omitempty"`
	WorkingDays  []string      `json:"workingDays,omitempty" binding:"omitempty,dive,weekday"`
}

type UpdateAddressRequest struct {
	Address string `json:"address" binding:"required"`
}
