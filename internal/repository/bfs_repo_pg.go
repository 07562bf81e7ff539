package repository

import (
	"context"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BFSRepository interface {
	Create(ctx context.Context, b *domain.BFS) error
	GetByID(ctx context.Context, id int64) (*domain.BFS, error)
	Update(ctx context.Context, b *domain.BFS) error
}

type PGBFSRepository struct {
	db *pgxpool.Pool
}

func NewBFSRepository(db *pgxpool.Pool) BFSRepository {
	return &PGBFSRepository{db: db}
}

func (r *PGBFSRepository) Create(ctx context.Context, b *domain.BFS) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `INSERT INTO bfs_records (aircraft_id, service_date, status, supervisor_required, fuel_level_before, tire_pressure_main_before, tire_pressure_nose_before, remarks)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at, updated_at`,
			b.AircraftID, b.ServiceDate, b.Status, b.SupervisorRequired, b.Before.FuelLevel, b.Before.TirePressureMain, b.Before.TirePressureNose, b.Remarks)
		if err := row.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return err
		}
		return saveSlots(ctx, tx, b)
	})
}

func (r *PGBFSRepository) GetByID(ctx context.Context, id int64) (*domain.BFS, error) {
	var (
		b              domain.BFS
		initial, final sigRow
	)
	dest := []any{&b.ID, &b.AircraftID, &b.ServiceDate, &b.Status}
	dest = append(dest, initial.dest()...)
	dest = append(dest, &b.PersonnelAdded, &b.SupervisorRequired)
	dest = append(dest, final.dest()...)
	dest = append(dest, &b.Before.FuelLevel, &b.Before.TirePressureMain, &b.Before.TirePressureNose, &b.Remarks, &b.CreatedAt, &b.UpdatedAt)

	err := r.db.QueryRow(ctx, `SELECT id, aircraft_id, service_date, status,
		fsi_initial_by, fsi_initial_proof, fsi_initial_at,
		personnel_added, supervisor_required,
		fsi_final_by, fsi_final_proof, fsi_final_at,
		fuel_level_before, tire_pressure_main_before, tire_pressure_nose_before, remarks, created_at, updated_at
		FROM bfs_records WHERE id=$1`, id).Scan(dest...)
	if err != nil {
		return nil, notFound(err, "BFS record", id)
	}
	b.FSIInitial = initial.signature()
	b.FSIFinal = final.signature()

	if err := r.loadSlots(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBFSRepository) loadSlots(ctx context.Context, b *domain.BFS) error {
	rows, err := r.db.Query(ctx, `SELECT trade, assigned_user_id, signed_by, pin_proof, signed_at FROM bfs_slots WHERE bfs_id=$1`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			code     string
			assigned *int64
			sig      sigRow
		)
		if err := rows.Scan(append([]any{&code, &assigned}, sig.dest()...)...); err != nil {
			return err
		}
		t, ok := domain.ParseTrade(code)
		if !ok {
			return domain.ErrInvalidTrade.With("stored slot %q on BFS record %d", code, b.ID)
		}
		slot := b.Slot(t)
		if assigned != nil {
			slot.Assigned = *assigned
		}
		slot.Signature = sig.signature()
	}
	return rows.Err()
}

func (r *PGBFSRepository) Update(ctx context.Context, b *domain.BFS) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		iBy, iProof, iAt := sigArgs(b.FSIInitial)
		fBy, fProof, fAt := sigArgs(b.FSIFinal)
		row := tx.QueryRow(ctx, `UPDATE bfs_records SET status=$2,
			fsi_initial_by=$3, fsi_initial_proof=$4, fsi_initial_at=$5,
			personnel_added=$6, supervisor_required=$7,
			fsi_final_by=$8, fsi_final_proof=$9, fsi_final_at=$10,
			remarks=$11, updated_at=now()
			WHERE id=$1 RETURNING updated_at`,
			b.ID, b.Status, iBy, iProof, iAt, b.PersonnelAdded, b.SupervisorRequired, fBy, fProof, fAt, b.Remarks)
		if err := row.Scan(&b.UpdatedAt); err != nil {
			return notFound(err, "BFS record", b.ID)
		}
		return saveSlots(ctx, tx, b)
	})
}

// saveSlots upserts every trade slot of b.
func saveSlots(ctx context.Context, q querier, b *domain.BFS) error {
	for i := range b.Slots {
		t := domain.Trade(i)
		slot := b.Slot(t)
		by, proof, at := sigArgs(slot.Signature)
		_, err := q.Exec(ctx, `INSERT INTO bfs_slots (bfs_id, trade, assigned_user_id, signed_by, pin_proof, signed_at)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (bfs_id, trade) DO UPDATE SET
				assigned_user_id=EXCLUDED.assigned_user_id, signed_by=EXCLUDED.signed_by,
				pin_proof=EXCLUDED.pin_proof, signed_at=EXCLUDED.signed_at`,
			b.ID, t.String(), nullID(slot.Assigned), by, proof, at)
		if err != nil {
			return err
		}
	}
	return nil
}

var _ BFSRepository = (*PGBFSRepository)(nil)
