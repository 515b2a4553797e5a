package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"p2h.app/configs/configslog"
	"p2h.app/models"
	"p2h.app/pkg/sessiontoken"
	"p2h.app/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// dummyHash is compared against when the user does not exist so unknown
// usernames cost as much as wrong passwords.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("p2h-timing-equaliser"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
	SubjectID *uuid.UUID  `json:"subject_id,omitempty"`
}

type IAuthService interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
}

type AuthService struct {
	users       repositories.IUserRepository
	drivers     repositories.IDriverRepository
	supervisors repositories.ISupervisorRepository
	issuer      *sessiontoken.Issuer
}

func NewAuthService(db *gorm.DB, issuer *sessiontoken.Issuer) IAuthService {
	return &AuthService{
		users:       repositories.NewUserRepository(db),
		drivers:     repositories.NewDriverRepository(db),
		supervisors: repositories.NewSupervisorRepository(db),
		issuer:      issuer,
	}
}

// Login checks the password for an account of the requested role and issues
// a session token. Every failure looks the same to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if username == "" || input.Password == "" || !models.IsValidRole(role) {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByUsernameAndRole(ctx, username, role)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(input.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, upstream("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		configslog.Log.Info("Login rejected", zap.String("username", username), zap.String("role", role))
		return nil, ErrInvalidCredentials
	}

	subjectID, err := s.subjectFor(ctx, user)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.issuer.Issue(user.ID, user.Role, user.Name, subjectID)
	if err != nil {
		configslog.Log.Error("Session token could not be issued", zap.Error(err))
		return nil, err
	}
	configslog.Log.Info("Login succeeded", zap.Stringer("user_id", user.ID), zap.String("role", user.Role))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: *user, SubjectID: subjectID}, nil
}

// subjectFor finds the master record behind a driver or pengawas account.
// Accounts without one cannot act in their role, so they cannot log in.
func (s *AuthService) subjectFor(ctx context.Context, user *models.User) (*uuid.UUID, error) {
	switch user.Role {
	case models.RoleDriver:
		driver, err := s.drivers.FindByUserID(ctx, user.ID)
		if errors.Is(err, repositories.ErrNotFound) && user.NIK != "" {
			driver, err = s.drivers.FindByNIK(ctx, user.NIK)
		}
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				configslog.Log.Warn("Driver account has no driver record", zap.Stringer("user_id", user.ID))
				return nil, ErrInvalidCredentials
			}
			return nil, upstream("find driver for user", err)
		}
		if !driver.IsActive {
			return nil, ErrInvalidCredentials
		}
		return &driver.ID, nil
	case models.RolePengawas:
		supervisor, err := s.supervisors.FindByUserID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				configslog.Log.Warn("Pengawas account has no supervisor record", zap.Stringer("user_id", user.ID))
				return nil, ErrInvalidCredentials
			}
			return nil, upstream("find supervisor for user", err)
		}
		return &supervisor.ID, nil
	}
	return nil, nil
}

var _ IAuthService = (*AuthService)(nil)
