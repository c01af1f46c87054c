package model

import "time"

// Patient represents a clinic patient record.
type Patient struct {
	Base
	Name      string     `json:"name" db:"name"`
	DOB       *time.Time `json:"dob,omitempty" db:"dob"`
	Gender    string     `json:"gender" db:"gender"`
	Phone     string     `json:"phone" db:"phone"`
	Address   string     `json:"address" db:"address"`
	AvatarURL *string    `json:"avatar_url,omitempty" db:"avatar_url"`
}

type CreatePatientRequest struct {
	Name    string     `json:"name" binding:"required"`
	DOB     *time.Time `json:"dob"`
	Gender  string     `json:"gender" binding:"required"`
	Phone   string     `json:"phone" binding:"required"`
	Address string     `json:"address"`
}

type UpdatePatientRequest struct {
	Name    *string    `json:"name"`
	DOB     *time.Time `json:"dob"`
	Gender  *string    `json:"gender"`
	Phone   *string    `json:"phone"`
	Address *string    `json:"address"`
}

type PatientFilters struct {
	SearchTerm string `json:"search_term" form:"search_term"`
}
