package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/identity"
	"github.com/Domenick1991/flightline/internal/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthUseCase interface {
	Login(ctx context.Context, pno, password string) (*Session, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
}

type SessionStore interface {
	SaveSession(ctx context.Context, token string, userID int64, ttl time.Duration) error
	LookupSession(ctx context.Context, token string) (int64, error)
	DeleteSession(ctx context.Context, token string) error
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByPNO(ctx context.Context, pno string) (*domain.User, error)
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type AuthService struct {
	users    UserReader
	sessions SessionStore
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewAuthService(users UserReader, sessions SessionStore, ttl time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
		logger:   logging.Component(logger, "auth"),
	}
}

func (s *AuthService) Login(ctx context.Context, pno, password string) (*Session, error) {
	pno = strings.TrimSpace(pno)
	if pno == "" || password == "" {
		return nil, domain.ErrInvalidInput.With("pno and password are required")
	}

	user, err := s.users.GetByPNO(ctx, pno)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user %s: %w", pno, err)
	}
	if !user.Active || !identity.CheckSecret(user.PasswordHash, password) {
		s.logger.Info("login refused", zap.String("pno", pno))
		return nil, domain.ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.sessions.SaveSession(ctx, token, user.ID, s.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("user logged in", zap.Int64(logging.FieldActorID, user.ID))
	return &Session{Token: token, ExpiresAt: s.now().Add(s.ttl).UTC(), User: user}, nil
}

// Authenticate resolves a session token to its active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	userID, err := s.sessions.LookupSession(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated.With("user %d no longer exists", userID)
		}
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrUnauthenticated.With("user %s is inactive", user.PNO)
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, token)
}

var _ AuthUseCase = (*AuthService)(nil)
