package domain

import "time"

type AcceptanceStatus string

const (
	AcceptanceStatusPending  AcceptanceStatus = "PENDING"
	AcceptanceStatusAccepted AcceptanceStatus = "ACCEPTED"
	AcceptanceStatusRejected AcceptanceStatus = "REJECTED"
)

// PreflightChecks are the pilot's walk-around confirmations.
type PreflightChecks struct {
	FuelLevel     bool `json:"fuel_level_check"`
	TirePressure  bool `json:"tire_pressure_check"`
	Engine        bool `json:"engine_check"`
	Controls      bool `json:"controls_check"`
	Instruments   bool `json:"instruments_check"`
	Communication bool `json:"communication_check"`
}

// PilotAcceptance is the pilot's acceptance of an aircraft after an approved BFS.
type PilotAcceptance struct {
	ID             int64            `json:"id"`
	BFSID          int64            `json:"bfs_record"`
	AircraftID     int64            `json:"aircraft_id"`
	AcceptanceDate time.Time        `json:"acceptance_date"`
	Status         AcceptanceStatus `json:"status"`
	Pilot          Signature        `json:"pilot"`
	Checks         PreflightChecks  `json:"checks"`
	Readings       Readings         `json:"current_readings"`
	Remarks        string           `json:"remarks,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (a *PilotAcceptance) Pending() bool {
	return a.Status == AcceptanceStatusPending
}
