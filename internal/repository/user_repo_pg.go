package repository

import (
	"context"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByPNO(ctx context.Context, pno string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

const userColumns = `id, pno, full_name, rank, designation, password_hash, pin_hash, is_active, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.PNO, &u.FullName, &u.Rank, &u.Designation, &u.PasswordHash, &u.PINHash, &u.Active, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PGUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return u, nil
}

func (r *PGUserRepository) GetByPNO(ctx context.Context, pno string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE pno=$1`, pno))
	if err != nil {
		return nil, notFound(err, "user", pno)
	}
	return u, nil
}

func (r *PGUserRepository) Create(ctx context.Context, u *domain.User) error {
	row := r.db.QueryRow(ctx, `INSERT INTO users (pno, full_name, rank, designation, password_hash, pin_hash, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id, created_at`,
		u.PNO, u.FullName, u.Rank, u.Designation, u.PasswordHash, u.PINHash, u.Active)
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrInvalidInput.With("PNO %s already registered", u.PNO)
		}
		return err
	}
	return nil
}

var _ UserRepository = (*PGUserRepository)(nil)
