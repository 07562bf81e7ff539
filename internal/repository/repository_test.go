package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewRepositories(t *testing.T) {
	pool := &pgxpool.Pool{}
	assert.NotNil(t, NewAircraftRepository(pool))
	assert.NotNil(t, NewUserRepository(pool))
	assert.NotNil(t, NewBFSRepository(pool))
	assert.NotNil(t, NewAcceptanceRepository(pool))
	assert.NotNil(t, NewPostFlightRepository(pool))
}

func TestNotFound(t *testing.T) {
	err := notFound(fmt.Errorf("scan: %w", pgx.ErrNoRows), "aircraft", 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "aircraft 7")

	other := errors.New("boom")
	assert.Equal(t, other, notFound(other, "aircraft", 7))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestSignatureColumns(t *testing.T) {
	by, proof, at := sigArgs(domain.Signature{})
	assert.Nil(t, by)
	assert.Nil(t, proof)
	assert.Nil(t, at)

	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	sig := domain.Signature{SignedBy: 4, PINProof: "ab12", SignedAt: &now}
	by, proof, at = sigArgs(sig)

	var row sigRow
	row.by, row.proof, row.at = by, proof, at
	assert.Equal(t, sig, row.signature())
	assert.Len(t, row.dest(), 3)

	assert.Nil(t, nullID(0))
	assert.Equal(t, int64(9), *nullID(9))
}

func TestSchemaEmbedded(t *testing.T) {
	for _, table := range []string{"users", "aircraft", "bfs_records", "bfs_slots", "pilot_acceptances", "post_flying"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}
