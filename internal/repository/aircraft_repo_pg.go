package repository

import (
	"context"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AircraftRepository interface {
	List(ctx context.Context) ([]domain.Aircraft, error)
	GetByID(ctx context.Context, id int64) (*domain.Aircraft, error)
	GetByTail(ctx context.Context, tail string) (*domain.Aircraft, error)
	Create(ctx context.Context, a *domain.Aircraft) error
}

type PGAircraftRepository struct {
	db *pgxpool.Pool
}

func NewAircraftRepository(db *pgxpool.Pool) AircraftRepository {
	return &PGAircraftRepository{db: db}
}

const aircraftColumns = `id, tail_number, aircraft_type, model, status, total_flying_hours, fuel_capacity, current_fuel_level, tire_pressure_main, tire_pressure_nose, created_at, updated_at`

func scanAircraft(row pgx.Row) (*domain.Aircraft, error) {
	var a domain.Aircraft
	if err := row.Scan(&a.ID, &a.TailNumber, &a.Type, &a.Model, &a.Status, &a.TotalFlyingHours, &a.FuelCapacity, &a.CurrentFuelLevel, &a.TirePressureMain, &a.TirePressureNose, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PGAircraftRepository) List(ctx context.Context) ([]domain.Aircraft, error) {
	rows, err := r.db.Query(ctx, `SELECT `+aircraftColumns+` FROM aircraft ORDER BY tail_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fleet := make([]domain.Aircraft, 0)
	for rows.Next() {
		a, err := scanAircraft(rows)
		if err != nil {
			return nil, err
		}
		fleet = append(fleet, *a)
	}
	return fleet, rows.Err()
}

func (r *PGAircraftRepository) GetByID(ctx context.Context, id int64) (*domain.Aircraft, error) {
	a, err := scanAircraft(r.db.QueryRow(ctx, `SELECT `+aircraftColumns+` FROM aircraft WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "aircraft", id)
	}
	return a, nil
}

func (r *PGAircraftRepository) GetByTail(ctx context.Context, tail string) (*domain.Aircraft, error) {
	a, err := scanAircraft(r.db.QueryRow(ctx, `SELECT `+aircraftColumns+` FROM aircraft WHERE tail_number=$1`, tail))
	if err != nil {
		return nil, notFound(err, "aircraft", tail)
	}
	return a, nil
}

func (r *PGAircraftRepository) Create(ctx context.Context, a *domain.Aircraft) error {
	if a.Status == "" {
		a.Status = domain.AircraftStatusOperational
	}
	row := r.db.QueryRow(ctx, `INSERT INTO aircraft (tail_number, aircraft_type, model, status, total_flying_hours, fuel_capacity, current_fuel_level, tire_pressure_main, tire_pressure_nose)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id, created_at, updated_at`,
		a.TailNumber, a.Type, a.Model, a.Status, a.TotalFlyingHours, a.FuelCapacity, a.CurrentFuelLevel, a.TirePressureMain, a.TirePressureNose)
	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrInvalidInput.With("tail number %s already registered", a.TailNumber)
		}
		return err
	}
	return nil
}

// applyTelemetry adds flight hours and overwrites the readings that are set.
func applyTelemetry(ctx context.Context, q querier, u *domain.TelemetryUpdate) error {
	res, err := q.Exec(ctx, `UPDATE aircraft SET
		total_flying_hours = total_flying_hours + $2,
		current_fuel_level = COALESCE($3, current_fuel_level),
		tire_pressure_main = COALESCE($4, tire_pressure_main),
		tire_pressure_nose = COALESCE($5, tire_pressure_nose),
		updated_at = now()
		WHERE id=$1`,
		u.AircraftID, u.AddHours, u.Readings.FuelLevel, u.Readings.TirePressureMain, u.Readings.TirePressureNose)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NotFound("aircraft", u.AircraftID)
	}
	return nil
}

var _ AircraftRepository = (*PGAircraftRepository)(nil)
