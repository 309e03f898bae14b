package model

import "time"

// Space is a bookable location with an hourly price and a daily operating window.
type Space struct {
	ID             int64     `json:"id" bson:"_id"`
	Title          string    `json:"title" bson:"title" validate:"required,min=2,max=100"`
	PricePerHour   float64   `json:"price_per_hour" bson:"price_per_hour" validate:"required,gt=0,max=1000000"`
	ImageURL       string    `json:"image_url,omitempty" bson:"image_url,omitempty" validate:"omitempty,url,max=2048"`
	Address        string    `json:"address" bson:"address" validate:"required,min=2,max=200"`
	Description    string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	OperatingStart TimeOfDay `json:"operating_start" bson:"operating_start" validate:"required"`
	OperatingEnd   TimeOfDay `json:"operating_end" bson:"operating_end" validate:"required"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

type SpaceUpdate struct {
	Title          string     `json:"title,omitempty" validate:"omitempty,min=2,max=100"`
	PricePerHour   *float64   `json:"price_per_hour,omitempty" validate:"omitempty,gt=0,max=1000000"`
	ImageURL       *string    `json:"image_url,omitempty" validate:"omitempty,max=2048"`
	Address        string     `json:"address,omitempty" validate:"omitempty,min=2,max=200"`
	Description    *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	OperatingStart *TimeOfDay `json:"operating_start,omitempty"`
	OperatingEnd   *TimeOfDay `json:"operating_end,omitempty"`
}

// Apply copies the set fields of u onto s.
func (u *SpaceUpdate) Apply(s *Space) {
	if u.Title != "" {
		s.Title = u.Title
	}
	if u.PricePerHour != nil {
		s.PricePerHour = *u.PricePerHour
	}
	if u.ImageURL != nil {
		s.ImageURL = *u.ImageURL
	}
	if u.Address != "" {
		s.Address = u.Address
	}
	if u.Description != nil {
		s.Description = *u.Description
	}
	if u.OperatingStart != nil {
		s.OperatingStart = *u.OperatingStart
	}
	if u.OperatingEnd != nil {
		s.OperatingEnd = *u.OperatingEnd
	}
}
