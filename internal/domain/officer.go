package domain

import "errors"

var ErrOfficerNotFound = errors.New("extension officer not found")

// Officer is an Agricultural Extension Officer assigned to a region.
type Officer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Region      string `json:"region"`
	FarmerCount int    `json:"farmer_count"`
}

// OfficerInput is the create/update payload forwarded to the backend.
type OfficerInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Region string `json:"region"`
}
