package model

import "github.com/lib/pq"

// Doctor represents a practicing doctor. ServicePrice is optional: a
// completed appointment only yields an automatic invoice when the doctor
// has a configured price.
type Doctor struct {
	Base
	Name           string         `json:"name" db:"name"`
	Specialty      string         `json:"specialty" db:"specialty"`
	Image          string         `json:"image" db:"image"`
	ServicePrice   *float64       `json:"service_price,omitempty" db:"service_price"`
	FreeReturnDays *int           `json:"free_return_days,omitempty" db:"free_return_days"`
	AvailableDays  pq.StringArray `json:"available_days,omitempty" db:"available_days"`
}

type CreateDoctorRequest struct {
	Name           string   `json:"name" binding:"required"`
	Specialty      string   `json:"specialty" binding:"required"`
	Image          string   `json:"image"`
	ServicePrice   *float64 `json:"service_price" binding:"omitempty,gt=0"`
	FreeReturnDays *int     `json:"free_return_days" binding:"omitempty,gte=0"`
	AvailableDays  []string `json:"available_days"`
}

type UpdateDoctorRequest struct {
	Name           *string  `json:"name"`
	Specialty      *string  `json:"specialty"`
	Image          *string  `json:"image"`
	ServicePrice   *float64 `json:"service_price" binding:"omitempty,gt=0"`
	FreeReturnDays *int     `json:"free_return_days" binding:"omitempty,gte=0"`
	AvailableDays  []string `json:"available_days"`
}

type DoctorFilters struct {
	Specialty  string `json:"specialty" form:"specialty"`
	SearchTerm string `json:"search_term" form:"search_term"`
}
