package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"findash/internal/auth"
	apperrors "findash/internal/errors"
	"findash/internal/model"
	"findash/internal/notify"
	"findash/internal/repository"
)

// MinPasswordLength is the shortest password accepted anywhere a password is set.
const MinPasswordLength = 6

const (
	resetRequestedMessage = "If an account with that email exists, a password reset link has been sent"
	resetTokenBytes       = 32
)

// RegisterInput carries the fields of a sign-up request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is a freshly issued session.
type AuthResult struct {
	Token string
	User  *model.User
}

// ResetResult is the outcome of a reset request. Token is only set when no
// notifier is configured and the token has to be surfaced to the caller.
type ResetResult struct {
	Message string
	Token   string
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RequestPasswordReset(ctx context.Context, email string) (*ResetResult, error)
	ResetPassword(ctx context.Context, email, token, newPassword string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	Profile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	notifier   notify.Notifier
	bcryptCost int
	logger     *slog.Logger
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService creates a new authentication service. notifier may be nil,
// in which case reset tokens are logged and returned to the caller.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	notifier notify.Notifier,
	bcryptCost int,
	logger *slog.Logger,
) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		notifier:   notifier,
		bcryptCost: bcryptCost,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates a new user with a hashed password and signs them in.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	firstName, lastName := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if firstName == "" {
		return nil, apperrors.Validation("First name is required")
	}
	if lastName == "" {
		return nil, apperrors.Validation("Last name is required")
	}
	email := model.NormalizeEmail(in.Email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("check user existence", err)
	}

	user := &model.User{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      model.RoleUser,
	}
	if err := user.SetPassword(in.Password, s.bcryptCost); err != nil {
		return nil, apperrors.Internal("hash password", err)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race against a concurrent sign-up for the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUserExists
		}
		return nil, apperrors.Internal("create user", err)
	}

	return s.issue(user)
}

// Login authenticates a user. Unknown emails and wrong passwords fail identically.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Internal("find user", err)
		}
		s.compareDummy(password)
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.ComparePassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issue(user)
}

// RequestPasswordReset issues a one-hour reset token and hands it to the notifier.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) (*ResetResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ResetResult{Message: resetRequestedMessage}, nil
		}
		return nil, apperrors.Internal("find user", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return nil, apperrors.Internal("generate reset token", err)
	}
	user.IssueResetToken(token, s.now())
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperrors.Internal("store reset token", err)
	}

	if s.notifier == nil {
		s.logger.WarnContext(ctx, "no mail transport configured, returning reset token to caller",
			"email", user.Email, "reset_token", token)
		return &ResetResult{Message: resetRequestedMessage, Token: token}, nil
	}

	notice := notify.ResetNotice{
		Email:     user.Email,
		FirstName: user.FirstName,
		Token:     token,
		ExpiresAt: *user.ResetPasswordExpires,
	}
	if err := s.notifier.SendPasswordReset(ctx, notice); err != nil {
		// the caller gets the same answer as for an unknown email
		s.logger.ErrorContext(ctx, "failed to deliver password reset", "error", err, "user_id", user.ID)
	}
	return &ResetResult{Message: resetRequestedMessage}, nil
}

// ResetPassword sets a new password if token matches and has not expired.
// The token is consumed on success; of two concurrent redemptions only one wins.
func (s *authService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidResetToken
		}
		return apperrors.Internal("find user", err)
	}

	if !user.ResetTokenValid(token, s.now()) {
		return apperrors.ErrInvalidResetToken
	}

	if err := user.SetPassword(newPassword, s.bcryptCost); err != nil {
		return apperrors.Internal("hash password", err)
	}
	if err := s.userRepo.RedeemResetToken(ctx, user, token); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidResetToken
		}
		return apperrors.Internal("update user", err)
	}
	user.ClearResetToken()

	s.logger.InfoContext(ctx, "password reset completed", "user_id", user.ID)
	return nil
}

// ChangePassword replaces the password of an authenticated user.
func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.ComparePassword(currentPassword) {
		return apperrors.ErrWrongPassword
	}

	if err := user.SetPassword(newPassword, s.bcryptCost); err != nil {
		return apperrors.Internal("hash password", err)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return apperrors.Internal("update user", err)
	}
	return nil
}

// Profile returns the authenticated user.
func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.findUser(ctx, userID)
}

// Logout revokes the session token until it would have expired.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	ttl := s.jwtService.Expiry()
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if err := s.tokenStore.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperrors.Internal("revoke session", err)
	}
	return nil
}

func (s *authService) findUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Internal("find user", err)
	}
	return user, nil
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, apperrors.Internal("generate token", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// compareDummy spends the same bcrypt work as a real comparison.
func (s *authService) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.bcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.Validation("Password must be at least %d characters long", MinPasswordLength)
	}
	return nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
