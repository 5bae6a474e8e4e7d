package model

// DentistService is one entry in a dentist's catalog, keyed by Name.
type DentistService struct {
	Name     string `json:"name" db:"name" binding:"required"`
	Category string `json:"category" db:"category"`
	Duration int    `json:"duration" db:"duration"` // in minutes
}

// AvailableService is a reference catalog entry a DentistService is chosen from.
type AvailableService struct {
	Name     string `json:"name" db:"name"`
	Category string `json:"category" db:"category"`
}

type AddServicesRequest struct {
	Names    []string `json:"names" binding:"required,min=1,dive,required"`
	Duration int      `json:"duration" binding:"required,gt=0"`
}

type UpdateDurationRequest struct {
	Duration int `json:"duration" binding:"required,gt=0"`
}

// CatalogSnapshot is what the services page renders.
type CatalogSnapshot struct {
	Services       []DentistService `json:"services"`
	UnsavedChanges bool             `json:"unsavedChanges"`
}
