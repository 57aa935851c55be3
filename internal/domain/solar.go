package domain

import "time"

// SolarEstimate projects generation for standard residential system sizes
type SolarEstimate struct {
	Location          Location      `json:"location"`
	Season            string        `json:"season"`
	WeatherConditions string        `json:"weather_conditions"`
	DailyRadiation    float64       `json:"daily_solar_radiation_kwh_m2"`
	Systems           []SolarSystem `json:"systems"`
}

// SolarSystem is the projection for one system size
type SolarSystem struct {
	SizeKW                int         `json:"system_size_kw"`
	PanelEfficiency       float64     `json:"panel_efficiency"`
	DailyProductionKWh    float64     `json:"daily_production_kwh"`
	MonthlyProductionKWh  float64     `json:"monthly_production_kwh"`
	AnnualProductionKWh   float64     `json:"annual_production_kwh"`
	CO2ReductionKgYear    float64     `json:"co2_reduction_kg_year"`
	CostSavingsMonthly    float64     `json:"cost_savings_monthly"`
	CostSavingsAnnual     float64     `json:"cost_savings_annual"`
	EstimatedSystemCost   float64     `json:"estimated_system_cost"`
	EstimatedPaybackYears float64     `json:"estimated_payback_years"`
	HourlyData            []SolarHour `json:"hourly_data"`
}

// SolarHour is one hour of today's production curve
type SolarHour struct {
	Timestamp     time.Time `json:"timestamp"`
	ProductionKWh float64   `json:"production_kwh"`
}

// SolarDay is one day of past production
type SolarDay struct {
	Date            string  `json:"date"`
	ProductionKWh   float64 `json:"production_kwh"`
	SelfConsumedKWh float64 `json:"self_consumed_kwh"`
	GridExportedKWh float64 `json:"grid_exported_kwh"`
}

// SolarHistory is the last 30 days for one system size
type SolarHistory struct {
	SizeKW               int        `json:"system_size_kw"`
	Location             Location   `json:"location"`
	History              []SolarDay `json:"history"`
	TotalProducedKWh     float64    `json:"total_produced_kwh"`
	TotalSelfConsumedKWh float64    `json:"total_self_consumed_kwh"`
	TotalGridExportedKWh float64    `json:"total_grid_exported_kwh"`
}
