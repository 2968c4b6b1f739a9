package usecase

import (
	"context"
	"testing"
	"time"

	"civic-report/internal/data/entity"
	"civic-report/internal/dto/request"
	"civic-report/pkg/apperror"
	"civic-report/pkg/token"
	"civic-report/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

func newTestAuthService(t *testing.T) (AuthService, map[uuid.UUID]*entity.User, token.JWTService) {
	t.Helper()
	repo, users := newMemUserRepo()
	tokens := token.NewJWTService(testSecret, time.Hour)
	return NewAuthService(repo, tokens, zap.NewNop()), users, tokens
}

func signup(t *testing.T, svc AuthService, email, password string) string {
	t.Helper()
	resp, err := svc.Signup(context.Background(), &request.SignupRequest{
		Name:            "Jane Citizen",
		Email:           email,
		Password:        password,
		PasswordConfirm: password,
	})
	require.NoError(t, err)
	return resp.Token
}

// =============================================================================
// Signup / Login
// =============================================================================

func TestSignupThenLogin(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	ctx := context.Background()

	signupToken := signup(t, svc, "Jane@Example.com", "password123")
	assert.NotEmpty(t, signupToken)

	require.Len(t, users, 1)
	for _, u := range users {
		assert.Equal(t, "jane@example.com", u.Email)
		assert.Equal(t, entity.RoleUser, u.Role)
		assert.True(t, u.Active)
		assert.NotEqual(t, "password123", u.PasswordHash)
	}

	resp, err := svc.Login(ctx, &request.LoginRequest{Email: "jane@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "jane@example.com", resp.User.Email)

	user, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID.String())
}

func TestSignup_Validation(t *testing.T) {
	svc, users, _ := newTestAuthService(t)

	tests := []struct {
		name string
		req  request.SignupRequest
	}{
		{"missing name", request.SignupRequest{Email: "a@b.co", Password: "password123", PasswordConfirm: "password123"}},
		{"bad email", request.SignupRequest{Name: "A", Email: "nope", Password: "password123", PasswordConfirm: "password123"}},
		{"short password", request.SignupRequest{Name: "A", Email: "a@b.co", Password: "short", PasswordConfirm: "short"}},
		{"mismatched confirm", request.SignupRequest{Name: "A", Email: "a@b.co", Password: "password123", PasswordConfirm: "password124"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), &tt.req)
			assert.True(t, apperror.Is(err, apperror.KindValidation), "got %v", err)
		})
	}
	assert.Empty(t, users)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	signup(t, svc, "jane@example.com", "password123")

	_, err := svc.Signup(context.Background(), &request.SignupRequest{
		Name:            "Other",
		Email:           "JANE@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	})
	require.Error(t, err)
	appErr := apperror.From(err)
	assert.Equal(t, apperror.KindDuplicate, appErr.Kind)
	assert.Equal(t, `Duplicate field value "jane@example.com". Please use another value`, appErr.Message)
}

func TestLogin_FailuresLookIdentical(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	signup(t, svc, "active@example.com", "password123")
	signup(t, svc, "gone@example.com", "password123")
	for _, u := range users {
		if u.Email == "gone@example.com" {
			u.Active = false
		}
	}

	tests := []struct {
		name  string
		email string
		pass  string
	}{
		{"unknown email", "nobody@example.com", "password123"},
		{"wrong password", "active@example.com", "wrongpass1"},
		{"inactive account", "gone@example.com", "password123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), &request.LoginRequest{Email: tt.email, Password: tt.pass})
			require.Error(t, err)
			appErr := apperror.From(err)
			assert.Equal(t, apperror.KindAuthentication, appErr.Kind)
			assert.Equal(t, "Incorrect email or password", appErr.Message)
		})
	}
}

func TestLogin_UnknownEmailStillComparesPassword(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	signup(t, svc, "jane@example.com", "password123")

	var hashes []string
	auth := svc.(*authService)
	auth.checkPassword = func(password, hash string) bool {
		hashes = append(hashes, hash)
		return utils.CheckPasswordHash(password, hash)
	}

	_, err := svc.Login(context.Background(), &request.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.True(t, apperror.Is(err, apperror.KindAuthentication), "got %v", err)

	require.Len(t, hashes, 1)
	assert.Equal(t, dummyPasswordHash(), hashes[0])
	assert.False(t, utils.CheckPasswordHash("password123", hashes[0]))
}

// =============================================================================
// Authenticate
// =============================================================================

func TestAuthenticate_Rejections(t *testing.T) {
	svc, users, tokens := newTestAuthService(t)
	tok := signup(t, svc, "jane@example.com", "password123")

	var user *entity.User
	for _, u := range users {
		user = u
	}

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "not-a-jwt")
		assert.Equal(t, msgInvalidToken, apperror.From(err).Message)
	})

	t.Run("unknown user", func(t *testing.T) {
		orphan, err := tokens.Generate(uuid.New())
		require.NoError(t, err)
		_, err = svc.Authenticate(context.Background(), orphan)
		assert.Equal(t, msgUserGone, apperror.From(err).Message)
	})

	t.Run("password changed after issue", func(t *testing.T) {
		changed := time.Now().Add(time.Hour)
		user.PasswordChangedAt = &changed
		defer func() { user.PasswordChangedAt = nil }()

		_, err := svc.Authenticate(context.Background(), tok)
		assert.Equal(t, msgPasswordChanged, apperror.From(err).Message)
	})

	t.Run("inactive user", func(t *testing.T) {
		user.Active = false
		defer func() { user.Active = true }()

		_, err := svc.Authenticate(context.Background(), tok)
		assert.True(t, apperror.Is(err, apperror.KindAuthentication))
	})
}

// =============================================================================
// Password flows
// =============================================================================

func TestForgotAndResetPassword(t *testing.T) {
	repo, users := newMemUserRepo()
	core, logs := observer.New(zap.InfoLevel)
	svc := NewAuthService(repo, token.NewJWTService(testSecret, time.Hour), zap.New(core))
	ctx := context.Background()

	signup(t, svc, "jane@example.com", "password123")

	// Unknown email still succeeds
	require.NoError(t, svc.ForgotPassword(ctx, &request.ForgotPasswordRequest{Email: "nobody@example.com"}))

	require.NoError(t, svc.ForgotPassword(ctx, &request.ForgotPasswordRequest{Email: "jane@example.com"}))

	entries := logs.FilterMessage("Password reset token generated").All()
	require.Len(t, entries, 1)
	plain := entries[0].ContextMap()["reset_token"].(string)
	require.NotEmpty(t, plain)

	// Only the digest is persisted
	for _, u := range users {
		require.NotNil(t, u.PasswordResetToken)
		assert.Equal(t, utils.HashResetToken(plain), *u.PasswordResetToken)
		assert.NotEqual(t, plain, *u.PasswordResetToken)
	}

	_, err := svc.ResetPassword(ctx, "wrong-token", &request.ResetPasswordRequest{Password: "newpassword1", PasswordConfirm: "newpassword1"})
	assert.Equal(t, msgResetTokenInvalid, apperror.From(err).Message)

	resp, err := svc.ResetPassword(ctx, plain, &request.ResetPasswordRequest{Password: "newpassword1", PasswordConfirm: "newpassword1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	// Token is single use
	_, err = svc.ResetPassword(ctx, plain, &request.ResetPasswordRequest{Password: "another123", PasswordConfirm: "another123"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Login(ctx, &request.LoginRequest{Email: "jane@example.com", Password: "newpassword1"})
	assert.NoError(t, err)
}

func TestUpdatePassword(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	ctx := context.Background()
	signup(t, svc, "jane@example.com", "password123")

	var userID uuid.UUID
	for id := range users {
		userID = id
	}

	_, err := svc.UpdatePassword(ctx, userID, &request.UpdatePasswordRequest{
		PasswordCurrent: "wrong-current",
		Password:        "newpassword1",
		PasswordConfirm: "newpassword1",
	})
	assert.True(t, apperror.Is(err, apperror.KindAuthentication))

	resp, err := svc.UpdatePassword(ctx, userID, &request.UpdatePasswordRequest{
		PasswordCurrent: "password123",
		Password:        "newpassword1",
		PasswordConfirm: "newpassword1",
	})
	require.NoError(t, err)

	// The freshly issued token survives the changed-password check
	_, err = svc.Authenticate(ctx, resp.Token)
	assert.NoError(t, err)

	_, err = svc.Login(ctx, &request.LoginRequest{Email: "jane@example.com", Password: "password123"})
	assert.True(t, apperror.Is(err, apperror.KindAuthentication))
}
