package domain

import "time"

type AircraftStatus string

const (
	AircraftStatusOperational AircraftStatus = "OPERATIONAL"
	AircraftStatusMaintenance AircraftStatus = "MAINTENANCE"
	AircraftStatusGrounded    AircraftStatus = "GROUNDED"
)

type Aircraft struct {
	ID               int64          `json:"id"`
	TailNumber       string         `json:"tail_number"`
	Type             string         `json:"aircraft_type"`
	Model            string         `json:"model"`
	Status           AircraftStatus `json:"status"`
	TotalFlyingHours float64        `json:"total_flying_hours"`
	FuelCapacity     float64        `json:"fuel_capacity"`
	CurrentFuelLevel float64        `json:"current_fuel_level"`
	TirePressureMain float64        `json:"tire_pressure_main"`
	TirePressureNose float64        `json:"tire_pressure_nose"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Readings is a set of optional fuel and tire pressure measurements.
type Readings struct {
	FuelLevel        *float64 `json:"fuel_level,omitempty"`
	TirePressureMain *float64 `json:"tire_pressure_main,omitempty"`
	TirePressureNose *float64 `json:"tire_pressure_nose,omitempty"`
}

// TelemetryUpdate is the change a completed flight applies to its aircraft.
type TelemetryUpdate struct {
	AircraftID int64
	AddHours   float64
	Readings   Readings
}

// Apply mutates a in place. Readings that are nil leave the aircraft value untouched.
func (u TelemetryUpdate) Apply(a *Aircraft) {
	a.TotalFlyingHours += u.AddHours
	if u.Readings.FuelLevel != nil {
		a.CurrentFuelLevel = *u.Readings.FuelLevel
	}
	if u.Readings.TirePressureMain != nil {
		a.TirePressureMain = *u.Readings.TirePressureMain
	}
	if u.Readings.TirePressureNose != nil {
		a.TirePressureNose = *u.Readings.TirePressureNose
	}
}
