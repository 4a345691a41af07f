package domain

import (
	"errors"
	"time"
)

var ErrContractNotFound = errors.New("contract not found")

// Contract statuses as reported by the backend.
const (
	ContractDraft     = "DRAFT"
	ContractActive    = "ACTIVE"
	ContractCompleted = "COMPLETED"
	ContractCancelled = "CANCELLED"
)

// Contract is an agricultural production contract between a farmer and
// the programme.
type Contract struct {
	ID            string    `json:"id"`
	FarmerID      string    `json:"farmer_id"`
	Crop          string    `json:"crop"`
	Season        string    `json:"season"`
	HectaresUnder float64   `json:"hectares_under"`
	TargetYieldKg float64   `json:"target_yield_kg"`
	PricePerKg    float64   `json:"price_per_kg"`
	Status        string    `json:"status"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
}

// ContractInput is the create/update payload forwarded to the backend.
type ContractInput struct {
	FarmerID      string  `json:"farmer_id"`
	Crop          string  `json:"crop"`
	Season        string  `json:"season"`
	HectaresUnder float64 `json:"hectares_under"`
	TargetYieldKg float64 `json:"target_yield_kg"`
	PricePerKg    float64 `json:"price_per_kg"`
	Status        string  `json:"status,omitempty"`
}
