package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"civic-report/internal/data/entity"
	"civic-report/internal/data/repository"
	"civic-report/internal/dto/request"
	"civic-report/internal/dto/response"
	"civic-report/pkg/apperror"
	"civic-report/pkg/token"
	"civic-report/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgIncorrectCredentials = "Incorrect email or password"
	msgInvalidToken         = "Invalid token. Please log in again"
	msgExpiredToken         = "Your token has expired! Please log in again"
	msgUserGone             = "The user belonging to this token no longer exists"
	msgPasswordChanged      = "User recently changed password! Please log in again"
	msgResetTokenInvalid    = "Token is invalid or has expired"

	resetTokenTTL = 10 * time.Minute
)

// dummyPasswordHash is compared against when the email is unknown so a miss
// costs the same bcrypt round as a wrong password.
var dummyPasswordHash = sync.OnceValue(func() string {
	hash, _ := utils.HashPassword("no-such-user-placeholder")
	return hash
})

type AuthService interface {
	Signup(ctx context.Context, req *request.SignupRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Authenticate(ctx context.Context, tokenString string) (*entity.User, error)
	ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, resetToken string, req *request.ResetPasswordRequest) (*response.AuthResponse, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, req *request.UpdatePasswordRequest) (*response.AuthResponse, error)
}

type authService struct {
	users         repository.UserRepository
	tokens        token.JWTService
	log           *zap.Logger
	now           func() time.Time
	checkPassword func(password, hash string) bool
}

func NewAuthService(users repository.UserRepository, tokens token.JWTService, log *zap.Logger) AuthService {
	return &authService{
		users:         users,
		tokens:        tokens,
		log:           log.With(zap.String("service", "auth")),
		now:           time.Now,
		checkPassword: utils.CheckPasswordHash,
	}
}

func (s *authService) Signup(ctx context.Context, req *request.SignupRequest) (*response.AuthResponse, error) {
	// 1. Validate input
	if err := validate(req); err != nil {
		s.log.Warn("Signup validation failed", zap.Error(err))
		return nil, err
	}

	email := utils.NormalizeEmail(req.Email)

	// 2. Check email is free
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Internal("failed to check email", err)
	}
	if existing != nil {
		return nil, apperror.Duplicate(email)
	}

	// 3. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal("failed to process password", err)
	}

	// 4. Create user; role is never taken from the request
	now := s.now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         req.Name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         entity.RoleUser,
		Active:       true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same email
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Duplicate(email)
		}
		return nil, apperror.Internal("failed to create account", err)
	}

	s.log.Info("User signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(req.Email))
	if err != nil {
		return nil, apperror.Internal("failed to find user", err)
	}

	hash := dummyPasswordHash()
	if user != nil {
		hash = user.PasswordHash
	}
	passwordOK := s.checkPassword(req.Password, hash)

	// Unknown email, wrong password and deactivated account look the same
	if user == nil || !passwordOK || !user.Active {
		s.log.Warn("Login rejected", zap.String("email", utils.NormalizeEmail(req.Email)))
		return nil, apperror.Unauthenticated(msgIncorrectCredentials)
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))

	return s.issue(user)
}

// Authenticate resolves a bearer token to an active user
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*entity.User, error) {
	claims, err := s.tokens.Validate(tokenString)
	if errors.Is(err, token.ErrExpiredToken) {
		return nil, apperror.Unauthenticated(msgExpiredToken)
	}
	if err != nil {
		return nil, apperror.Unauthenticated(msgInvalidToken)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperror.Unauthenticated(msgInvalidToken)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load user", err)
	}
	if user == nil || !user.Active {
		return nil, apperror.Unauthenticated(msgUserGone)
	}

	if user.ChangedPasswordAfter(claims.IssuedAtTime()) {
		return nil, apperror.Unauthenticated(msgPasswordChanged)
	}

	return user, nil
}

func (s *authService) ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	email := utils.NormalizeEmail(req.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return apperror.Internal("failed to find user", err)
	}

	// Same answer whether or not the email exists
	if user == nil || !user.Active {
		s.log.Info("Password reset requested for unknown email", zap.String("email", email))
		return nil
	}

	plain, hashed, err := utils.GenerateResetToken()
	if err != nil {
		return apperror.Internal("failed to generate reset token", err)
	}

	expires := s.now().Add(resetTokenTTL)
	user.PasswordResetToken = &hashed
	user.PasswordResetExpires = &expires
	user.UpdatedAt = s.now()

	if err := s.users.Update(ctx, user); err != nil {
		return apperror.Internal("failed to save reset token", err)
	}

	// No mail provider: the token is delivered through the log
	s.log.Info("Password reset token generated",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("reset_token", plain),
		zap.Time("expires_at", expires),
	)

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, resetToken string, req *request.ResetPasswordRequest) (*response.AuthResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByResetToken(ctx, utils.HashResetToken(resetToken))
	if err != nil {
		return nil, apperror.Internal("failed to find reset token", err)
	}
	if user == nil {
		return nil, apperror.Validation(msgResetTokenInvalid)
	}

	if err := s.setPassword(ctx, user, req.Password); err != nil {
		return nil, err
	}

	s.log.Info("Password reset", zap.String("user_id", user.ID.String()))

	return s.issue(user)
}

func (s *authService) UpdatePassword(ctx context.Context, userID uuid.UUID, req *request.UpdatePasswordRequest) (*response.AuthResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("No user found with that ID")
	}

	if !s.checkPassword(req.PasswordCurrent, user.PasswordHash) {
		return nil, apperror.Unauthenticated("Your current password is wrong")
	}

	if err := s.setPassword(ctx, user, req.Password); err != nil {
		return nil, err
	}

	s.log.Info("Password updated", zap.String("user_id", user.ID.String()))

	return s.issue(user)
}

// ==================== HELPER METHODS ====================

func (s *authService) setPassword(ctx context.Context, user *entity.User, password string) error {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return apperror.Internal("failed to process password", err)
	}

	// Back-date one second so a token issued right after still passes the
	// changed-password check, which compares whole seconds
	changedAt := s.now().Add(-time.Second)

	user.PasswordHash = hashedPassword
	user.PasswordChangedAt = &changedAt
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil
	user.UpdatedAt = s.now()

	if err := s.users.Update(ctx, user); err != nil {
		return apperror.Internal("failed to update password", err)
	}
	return nil
}

func (s *authService) issue(user *entity.User) (*response.AuthResponse, error) {
	signed, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, apperror.Internal("failed to sign token", fmt.Errorf("sign token for %s: %w", user.ID, err))
	}

	return &response.AuthResponse{
		Token:     signed,
		ExpiresAt: s.now().Add(s.tokens.Expiry()),
		User:      response.UserToResponse(user),
	}, nil
}
