package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"shiftplan/internal/apperr"
	"shiftplan/internal/audit"
	"shiftplan/internal/models"
	"shiftplan/internal/store"
)

var errBadCredentials = apperr.Unauthorized("invalid username or password")

type Service struct {
	store  store.Store
	audit  *audit.Recorder
	log    *zap.Logger
	secret string
	ttl    time.Duration
}

func NewService(st store.Store, rec *audit.Recorder, log *zap.Logger, secret string, ttl time.Duration) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, audit: rec, log: log, secret: secret, ttl: ttl}
}

// Login verifies the credentials and returns a signed token. Legacy hashes
// are replaced by bcrypt on success.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, errBadCredentials
	}

	user, err := s.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, errBadCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("load user: %w", err)
	}

	ok, legacy := CheckPassword(user.PasswordHash, password)
	if !ok {
		return "", nil, errBadCredentials
	}
	if legacy {
		s.upgradeHash(ctx, user, password)
	}

	token, err := GenerateToken(s.secret, s.ttl, user)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

func (s *Service) upgradeHash(ctx context.Context, user *models.User, password string) {
	hash, err := HashPassword(password)
	if err != nil {
		s.log.Warn("password upgrade skipped", zap.String("username", user.Username), zap.Error(err))
		return
	}
	user.PasswordHash = hash
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.log.Warn("password upgrade not stored", zap.String("username", user.Username), zap.Error(err))
		return
	}
	s.log.Info("legacy password hash upgraded", zap.String("username", user.Username))
}

func (s *Service) Me(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized("account no longer exists")
	}
	return user, err
}

func (s *Service) ChangePassword(ctx context.Context, username, current, next string) error {
	user, err := s.Me(ctx, username)
	if err != nil {
		return err
	}
	if ok, _ := CheckPassword(user.PasswordHash, current); !ok {
		return apperr.Invalid("current password is wrong")
	}
	if len(next) < MinPasswordLength {
		return apperr.Invalid("new password must be at least %d characters", MinPasswordLength)
	}

	hash, err := HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:       username,
		EntityType:  audit.EntityUser,
		EntityID:    username,
		Action:      models.AuditActionUpdate,
		Description: "password changed",
	})
	return nil
}
