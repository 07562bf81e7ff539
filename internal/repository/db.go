package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EnsureSchema creates the workflow tables when they are missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// notFound maps pgx.ErrNoRows to a domain not-found error for kind/id.
func notFound(err error, kind string, id any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound(kind, id)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// inTx runs fn inside a transaction, committing when fn returns nil.
func inTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// sigRow holds the nullable columns that store a domain.Signature.
type sigRow struct {
	by    *int64
	proof *string
	at    *time.Time
}

func (r *sigRow) dest() []any {
	return []any{&r.by, &r.proof, &r.at}
}

func (r sigRow) signature() domain.Signature {
	var s domain.Signature
	if r.by != nil {
		s.SignedBy = *r.by
	}
	if r.proof != nil {
		s.PINProof = *r.proof
	}
	s.SignedAt = r.at
	return s
}

// sigArgs returns the column values for s, using NULL for unset parts.
func sigArgs(s domain.Signature) (by *int64, proof *string, at *time.Time) {
	if s.SignedBy != 0 {
		by = &s.SignedBy
	}
	if s.PINProof != "" {
		proof = &s.PINProof
	}
	return by, proof, s.SignedAt
}

func nullID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
