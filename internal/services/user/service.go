// Package user handles registration and account administration. Every
// new user starts with the four default spending limits.
package user

import (
	"context"
	"errors"
	"fmt"

	"cardvault/internal/models"
	"cardvault/internal/repositories"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidRole = errors.New("invalid user role")

// DefaultLimiter creates the default limit rows for a new user inside
// the caller's transaction.
type DefaultLimiter interface {
	SetDefaultLimits(store repositories.Store, user *models.User) error
}

type Service struct {
	store  repositories.Store
	limits DefaultLimiter
	log    *logrus.Logger
}

func NewService(store repositories.Store, limits DefaultLimiter, log *logrus.Logger) *Service {
	if store == nil {
		panic("store is required")
	}
	if limits == nil {
		panic("default limiter is required")
	}
	return &Service{store: store, limits: limits, log: log}
}

// RegisterInput is the input for creating a user.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates the user and its four default limits in one
// transaction; a failure inserting the limits discards the user too.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, in.Role)
	}

	exists, err := s.store.Users().ExistsByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repositories.ErrDuplicateEmail
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hashed),
		Role:     role,
	}
	err = s.store.ExecuteInTransaction(func(tx repositories.Store) error {
		if err := tx.Users().Create(user); err != nil {
			return err
		}
		return s.limits.SetDefaultLimits(tx, user)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("email", user.Email).Info("user registered")
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.store.Users().GetByID(id)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.store.Users().GetByID(id); err != nil {
		return err
	}
	return s.store.Users().Delete(id)
}
