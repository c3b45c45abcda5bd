package model

import "time"

type Car struct {
	ID                 string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Brand              string    `json:"brand" bson:"brand" validate:"required,min=1,max=50"`
	Model              string    `json:"model" bson:"model" validate:"required,min=1,max=50"`
	RegistrationNumber string    `json:"registration_number" bson:"registration_number" validate:"required,min=4,max=20"`
	FuelType           string    `json:"fuel_type" bson:"fuel_type" validate:"required,oneof=petrol diesel electric hybrid"`
	Transmission       string    `json:"transmission" bson:"transmission" validate:"required,oneof=manual automatic"`
	Year               int       `json:"year" bson:"year" validate:"required,min=1990,max=2100"`
	Color              string    `json:"color" bson:"color" validate:"omitempty,max=30"`
	PricePerDay        float64   `json:"price_per_day" bson:"price_per_day" validate:"required,gt=0"`
	Features           []string  `json:"features,omitempty" bson:"features,omitempty" validate:"omitempty,dive,min=1,max=50"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt          time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type CarUpdate struct {
	Brand              string   `json:"brand,omitempty" validate:"omitempty,min=1,max=50"`
	Model              string   `json:"model,omitempty" validate:"omitempty,min=1,max=50"`
	RegistrationNumber string   `json:"registration_number,omitempty" validate:"omitempty,min=4,max=20"`
	FuelType           string   `json:"fuel_type,omitempty" validate:"omitempty,oneof=petrol diesel electric hybrid"`
	Transmission       string   `json:"transmission,omitempty" validate:"omitempty,oneof=manual automatic"`
	Year               *int     `json:"year,omitempty" validate:"omitempty,min=1990,max=2100"`
	Color              string   `json:"color,omitempty" validate:"omitempty,max=30"`
	PricePerDay        *float64 `json:"price_per_day,omitempty" validate:"omitempty,gt=0"`
	Features           []string `json:"features,omitempty" validate:"omitempty,dive,min=1,max=50"`
}
