package domain

import (
	"errors"
	"time"
)

var ErrFarmerNotFound = errors.New("farmer not found")

// Farmer is a contracted grower record managed through the terminal.
type Farmer struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	NationalID   string    `json:"national_id"`
	Phone        string    `json:"phone"`
	Region       string    `json:"region"`
	Ward         string    `json:"ward"`
	FarmSizeHa   float64   `json:"farm_size_ha"`
	OfficerID    string    `json:"officer_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// FarmerInput is the create/update payload forwarded to the backend.
type FarmerInput struct {
	Name       string  `json:"name"`
	NationalID string  `json:"national_id"`
	Phone      string  `json:"phone"`
	Region     string  `json:"region"`
	Ward       string  `json:"ward"`
	FarmSizeHa float64 `json:"farm_size_ha"`
	OfficerID  string  `json:"officer_id"`
}
