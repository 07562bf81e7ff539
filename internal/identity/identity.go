package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightline/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// PINVerifier checks a supplied PIN against a user's stored PIN hash.
type PINVerifier struct {
	users UserStore
}

func NewPINVerifier(users UserStore) *PINVerifier {
	return &PINVerifier{users: users}
}

// VerifyPIN returns nil when pin matches userID's PIN. A mismatch, an unknown
// user and an inactive user all yield domain.ErrInvalidPIN.
func (v *PINVerifier) VerifyPIN(ctx context.Context, userID int64, pin string) error {
	user, err := v.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidPIN.With("user %d does not exist", userID)
		}
		return fmt.Errorf("load user %d: %w", userID, err)
	}
	if !user.Active {
		return domain.ErrInvalidPIN.With("user %s is inactive", user.PNO)
	}
	if !CheckSecret(user.PINHash, pin) {
		return domain.ErrInvalidPIN.With("user %s", user.PNO)
	}
	return nil
}

// HashSecret returns the bcrypt hash stored for a password or PIN.
func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("empty secret")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

func CheckSecret(hash, secret string) bool {
	if hash == "" || secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
