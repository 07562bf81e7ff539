package repository

import (
	"context"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AcceptanceRepository interface {
	Create(ctx context.Context, a *domain.PilotAcceptance) error
	GetByID(ctx context.Context, id int64) (*domain.PilotAcceptance, error)
	Update(ctx context.Context, a *domain.PilotAcceptance) error
}

type PGAcceptanceRepository struct {
	db *pgxpool.Pool
}

func NewAcceptanceRepository(db *pgxpool.Pool) AcceptanceRepository {
	return &PGAcceptanceRepository{db: db}
}

// Create inserts a. A second acceptance for the same BFS record fails with
// domain.ErrAcceptanceExists.
func (r *PGAcceptanceRepository) Create(ctx context.Context, a *domain.PilotAcceptance) error {
	c := a.Checks
	row := r.db.QueryRow(ctx, `INSERT INTO pilot_acceptances (bfs_id, aircraft_id, acceptance_date, status,
		fuel_level_check, tire_pressure_check, engine_check, controls_check, instruments_check, communication_check,
		current_fuel_level, current_tire_pressure_main, current_tire_pressure_nose, remarks)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14) RETURNING id, created_at, updated_at`,
		a.BFSID, a.AircraftID, a.AcceptanceDate, a.Status,
		c.FuelLevel, c.TirePressure, c.Engine, c.Controls, c.Instruments, c.Communication,
		a.Readings.FuelLevel, a.Readings.TirePressureMain, a.Readings.TirePressureNose, a.Remarks)
	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAcceptanceExists.With("BFS record %d", a.BFSID)
		}
		return err
	}
	return nil
}

func (r *PGAcceptanceRepository) GetByID(ctx context.Context, id int64) (*domain.PilotAcceptance, error) {
	var (
		a     domain.PilotAcceptance
		pilot sigRow
	)
	c := &a.Checks
	dest := []any{&a.ID, &a.BFSID, &a.AircraftID, &a.AcceptanceDate, &a.Status}
	dest = append(dest, pilot.dest()...)
	dest = append(dest, &c.FuelLevel, &c.TirePressure, &c.Engine, &c.Controls, &c.Instruments, &c.Communication,
		&a.Readings.FuelLevel, &a.Readings.TirePressureMain, &a.Readings.TirePressureNose, &a.Remarks, &a.CreatedAt, &a.UpdatedAt)

	err := r.db.QueryRow(ctx, `SELECT id, bfs_id, aircraft_id, acceptance_date, status,
		pilot_id, pilot_proof, pilot_signed_at,
		fuel_level_check, tire_pressure_check, engine_check, controls_check, instruments_check, communication_check,
		current_fuel_level, current_tire_pressure_main, current_tire_pressure_nose, remarks, created_at, updated_at
		FROM pilot_acceptances WHERE id=$1`, id).Scan(dest...)
	if err != nil {
		return nil, notFound(err, "pilot acceptance", id)
	}
	a.Pilot = pilot.signature()
	return &a, nil
}

// Update persists the status, pilot signature and remarks of a.
func (r *PGAcceptanceRepository) Update(ctx context.Context, a *domain.PilotAcceptance) error {
	by, proof, at := sigArgs(a.Pilot)
	row := r.db.QueryRow(ctx, `UPDATE pilot_acceptances SET status=$2, pilot_id=$3, pilot_proof=$4, pilot_signed_at=$5, remarks=$6, updated_at=now()
		WHERE id=$1 RETURNING updated_at`, a.ID, a.Status, by, proof, at, a.Remarks)
	if err := row.Scan(&a.UpdatedAt); err != nil {
		return notFound(err, "pilot acceptance", a.ID)
	}
	return nil
}

var _ AcceptanceRepository = (*PGAcceptanceRepository)(nil)
