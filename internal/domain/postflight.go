package domain

import (
	"strings"
	"time"
)

type FlightOutcome string

const (
	FlightOutcomeCompleted  FlightOutcome = "COMPLETED"
	FlightOutcomeTerminated FlightOutcome = "TERMINATED"
	FlightOutcomeNotFlown   FlightOutcome = "NOT_FLOWN"
)

// ParseFlightOutcome accepts the outcome in any case.
func ParseFlightOutcome(s string) (FlightOutcome, bool) {
	switch o := FlightOutcome(strings.ToUpper(strings.TrimSpace(s))); o {
	case FlightOutcomeCompleted, FlightOutcomeTerminated, FlightOutcomeNotFlown:
		return o, true
	default:
		return "", false
	}
}

type PostFlightStatus string

const (
	PostFlightStatusInProgress PostFlightStatus = "IN_PROGRESS"
	PostFlightStatusCompleted  PostFlightStatus = "COMPLETED"
	PostFlightStatusTerminated PostFlightStatus = "TERMINATED"
)

// PostFlight is the closeout record of one accepted flight.
type PostFlight struct {
	ID              int64            `json:"id"`
	AcceptanceID    int64            `json:"pilot_acceptance"`
	AircraftID      int64            `json:"aircraft_id"`
	PostFlightDate  time.Time        `json:"post_flight_date"`
	Outcome         FlightOutcome    `json:"flight_status"`
	Status          PostFlightStatus `json:"status"`
	FlightHours     float64          `json:"flight_hours"`
	FuelConsumed    float64          `json:"fuel_consumed"`
	After           Readings         `json:"readings_after"`
	EngineCondition string           `json:"engine_condition,omitempty"`
	IssuesFound     string           `json:"issues_found,omitempty"`
	DefectsReported bool             `json:"defects_reported"`
	Pilot           Signature        `json:"pilot"`
	Engineer        Signature        `json:"engineer"`
	Remarks         string           `json:"remarks,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (p *PostFlight) Open() bool {
	return p.Status == PostFlightStatusInProgress
}

// ClosingStatus is the status the engineer's signature moves the record to.
func (p *PostFlight) ClosingStatus() PostFlightStatus {
	if p.Outcome == FlightOutcomeTerminated {
		return PostFlightStatusTerminated
	}
	return PostFlightStatusCompleted
}

// Telemetry returns the aircraft update owed by this record when it closes,
// or nil when the flight leaves the aircraft untouched.
func (p *PostFlight) Telemetry() *TelemetryUpdate {
	if p.Outcome != FlightOutcomeCompleted || p.FlightHours <= 0 {
		return nil
	}
	return &TelemetryUpdate{
		AircraftID: p.AircraftID,
		AddHours:   p.FlightHours,
		Readings:   p.After,
	}
}
