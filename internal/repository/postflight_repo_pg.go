package repository

import (
	"context"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostFlightRepository interface {
	Create(ctx context.Context, p *domain.PostFlight) error
	GetByID(ctx context.Context, id int64) (*domain.PostFlight, error)
	Update(ctx context.Context, p *domain.PostFlight) error
	// Close stores the engineer's closing signature and, when t is not nil,
	// applies t to the aircraft in the same transaction. It fails with
	// domain.ErrPostFlightClosed when the record is no longer in progress.
	Close(ctx context.Context, p *domain.PostFlight, t *domain.TelemetryUpdate) error
}

type PGPostFlightRepository struct {
	db *pgxpool.Pool
}

func NewPostFlightRepository(db *pgxpool.Pool) PostFlightRepository {
	return &PGPostFlightRepository{db: db}
}

func (r *PGPostFlightRepository) Create(ctx context.Context, p *domain.PostFlight) error {
	row := r.db.QueryRow(ctx, `INSERT INTO post_flying (acceptance_id, aircraft_id, post_flight_date, flight_status, status,
		flight_hours, fuel_consumed, fuel_level_after, tire_pressure_main_after, tire_pressure_nose_after,
		engine_condition, issues_found, defects_reported, remarks)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14) RETURNING id, created_at, updated_at`,
		p.AcceptanceID, p.AircraftID, p.PostFlightDate, p.Outcome, p.Status,
		p.FlightHours, p.FuelConsumed, p.After.FuelLevel, p.After.TirePressureMain, p.After.TirePressureNose,
		p.EngineCondition, p.IssuesFound, p.DefectsReported, p.Remarks)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPostFlightExists.With("pilot acceptance %d", p.AcceptanceID)
		}
		return err
	}
	return nil
}

func (r *PGPostFlightRepository) GetByID(ctx context.Context, id int64) (*domain.PostFlight, error) {
	var (
		p               domain.PostFlight
		pilot, engineer sigRow
	)
	dest := []any{&p.ID, &p.AcceptanceID, &p.AircraftID, &p.PostFlightDate, &p.Outcome, &p.Status,
		&p.FlightHours, &p.FuelConsumed, &p.After.FuelLevel, &p.After.TirePressureMain, &p.After.TirePressureNose,
		&p.EngineCondition, &p.IssuesFound, &p.DefectsReported}
	dest = append(dest, pilot.dest()...)
	dest = append(dest, engineer.dest()...)
	dest = append(dest, &p.Remarks, &p.CreatedAt, &p.UpdatedAt)

	err := r.db.QueryRow(ctx, `SELECT id, acceptance_id, aircraft_id, post_flight_date, flight_status, status,
		flight_hours, fuel_consumed, fuel_level_after, tire_pressure_main_after, tire_pressure_nose_after,
		engine_condition, issues_found, defects_reported,
		pilot_id, pilot_proof, pilot_signed_at,
		engineer_id, engineer_proof, engineer_signed_at,
		remarks, created_at, updated_at
		FROM post_flying WHERE id=$1`, id).Scan(dest...)
	if err != nil {
		return nil, notFound(err, "post flying record", id)
	}
	p.Pilot = pilot.signature()
	p.Engineer = engineer.signature()
	return &p, nil
}

// Update persists the pilot signature and remarks of an open record.
func (r *PGPostFlightRepository) Update(ctx context.Context, p *domain.PostFlight) error {
	by, proof, at := sigArgs(p.Pilot)
	res, err := r.db.Exec(ctx, `UPDATE post_flying SET pilot_id=$2, pilot_proof=$3, pilot_signed_at=$4, remarks=$5, updated_at=now()
		WHERE id=$1 AND status=$6`, p.ID, by, proof, at, p.Remarks, domain.PostFlightStatusInProgress)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrPostFlightClosed.With("post flying record %d", p.ID)
	}
	return nil
}

func (r *PGPostFlightRepository) Close(ctx context.Context, p *domain.PostFlight, t *domain.TelemetryUpdate) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		by, proof, at := sigArgs(p.Engineer)
		res, err := tx.Exec(ctx, `UPDATE post_flying SET status=$2, engineer_id=$3, engineer_proof=$4, engineer_signed_at=$5, updated_at=now()
			WHERE id=$1 AND status=$6`, p.ID, p.Status, by, proof, at, domain.PostFlightStatusInProgress)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return domain.ErrPostFlightClosed.With("post flying record %d", p.ID)
		}
		if t == nil {
			return nil
		}
		return applyTelemetry(ctx, tx, t)
	})
}

var _ PostFlightRepository = (*PGPostFlightRepository)(nil)
