package domain

// DashboardSummary feeds the terminal dashboard charts.
type DashboardSummary struct {
	TotalFarmers    int              `json:"total_farmers"`
	TotalContracts  int              `json:"total_contracts"`
	ActiveContracts int              `json:"active_contracts"`
	TotalOfficers   int              `json:"total_officers"`
	ByRegion        []RegionActivity `json:"by_region"`
}

// RegionActivity is one bar/slice in the per-region charts.
type RegionActivity struct {
	Region        string  `json:"region"`
	Farmers       int     `json:"farmers"`
	Contracts     int     `json:"contracts"`
	DeliveredKg   float64 `json:"delivered_kg"`
	TargetYieldKg float64 `json:"target_yield_kg"`
}
