package adaptor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"civic-report/internal/data/entity"
	"civic-report/internal/dto/request"
	"civic-report/internal/dto/response"
	"civic-report/pkg/apperror"
	"civic-report/pkg/storage"
	"civic-report/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockAuthService struct {
	SignupFunc         func(ctx context.Context, req *request.SignupRequest) (*response.AuthResponse, error)
	LoginFunc          func(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	AuthenticateFunc   func(ctx context.Context, tokenString string) (*entity.User, error)
	ForgotPasswordFunc func(ctx context.Context, req *request.ForgotPasswordRequest) error
	ResetPasswordFunc  func(ctx context.Context, resetToken string, req *request.ResetPasswordRequest) (*response.AuthResponse, error)
	UpdatePasswordFunc func(ctx context.Context, userID uuid.UUID, req *request.UpdatePasswordRequest) (*response.AuthResponse, error)
}

func (m *mockAuthService) Signup(ctx context.Context, req *request.SignupRequest) (*response.AuthResponse, error) {
	return m.SignupFunc(ctx, req)
}

func (m *mockAuthService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	return m.LoginFunc(ctx, req)
}

func (m *mockAuthService) Authenticate(ctx context.Context, tokenString string) (*entity.User, error) {
	return m.AuthenticateFunc(ctx, tokenString)
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error {
	return m.ForgotPasswordFunc(ctx, req)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, resetToken string, req *request.ResetPasswordRequest) (*response.AuthResponse, error) {
	return m.ResetPasswordFunc(ctx, resetToken, req)
}

func (m *mockAuthService) UpdatePassword(ctx context.Context, userID uuid.UUID, req *request.UpdatePasswordRequest) (*response.AuthResponse, error) {
	return m.UpdatePasswordFunc(ctx, userID, req)
}

func authResponse() *response.AuthResponse {
	return &response.AuthResponse{
		Token:     "signed.jwt.token",
		ExpiresAt: time.Now().Add(time.Hour),
		User:      response.UserResponse{ID: uuid.NewString(), Email: "jane@example.com", Role: entity.RoleUser},
	}
}

func newAuthHandler(svc *mockAuthService) *AuthHandler {
	return NewAuthHandler(svc, apperror.NewTranslator(zap.NewNop(), false), zap.NewNop())
}

func TestAuthHandler_Signup(t *testing.T) {
	svc := &mockAuthService{
		SignupFunc: func(_ context.Context, req *request.SignupRequest) (*response.AuthResponse, error) {
			assert.Equal(t, "password123", req.PasswordConfirm)
			return authResponse(), nil
		},
	}

	body := `{"name":"Jane","email":"jane@example.com","password":"password123","passwordConfirm":"password123"}`
	rec := httptest.NewRecorder()
	newAuthHandler(svc).Signup(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users/signup", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "signed.jwt.token", env.Token)

	var data struct {
		User response.UserResponse `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "jane@example.com", data.User.Email)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &mockAuthService{
		LoginFunc: func(_ context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
			if req.Password == "password123" {
				return authResponse(), nil
			}
			return nil, apperror.Unauthenticated("Incorrect email or password")
		},
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"success", `{"email":"jane@example.com","password":"password123"}`, http.StatusOK},
		{"wrong password", `{"email":"jane@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"invalid json", `not-json`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newAuthHandler(svc).Login(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAuthHandler_ResetPasswordReadsToken(t *testing.T) {
	svc := &mockAuthService{
		ResetPasswordFunc: func(_ context.Context, resetToken string, _ *request.ResetPasswordRequest) (*response.AuthResponse, error) {
			assert.Equal(t, "abc123", resetToken)
			return authResponse(), nil
		},
	}

	r := chi.NewRouter()
	r.Patch("/resetPassword/{token}", newAuthHandler(svc).ResetPassword)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/resetPassword/abc123",
		strings.NewReader(`{"password":"newpassword1","passwordConfirm":"newpassword1"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// User handler
// =============================================================================

type mockUserService struct {
	GetMeFunc       func(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	UpdateMeFunc    func(ctx context.Context, userID uuid.UUID, req *request.UpdateMeRequest, photo *storage.Image) (*response.UserResponse, error)
	DeleteMeFunc    func(ctx context.Context, userID uuid.UUID) error
	GetAllUsersFunc func(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	GetUserFunc     func(ctx context.Context, userID string) (*response.UserResponse, error)
	UpdateUserFunc  func(ctx context.Context, userID string, req *request.AdminUpdateUserRequest) (*response.UserResponse, error)
	DeleteUserFunc  func(ctx context.Context, userID string) error
}

func (m *mockUserService) GetMe(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	return m.GetMeFunc(ctx, userID)
}

func (m *mockUserService) UpdateMe(ctx context.Context, userID uuid.UUID, req *request.UpdateMeRequest, photo *storage.Image) (*response.UserResponse, error) {
	return m.UpdateMeFunc(ctx, userID, req, photo)
}

func (m *mockUserService) DeleteMe(ctx context.Context, userID uuid.UUID) error {
	return m.DeleteMeFunc(ctx, userID)
}

func (m *mockUserService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	return m.GetAllUsersFunc(ctx, req)
}

func (m *mockUserService) GetUser(ctx context.Context, userID string) (*response.UserResponse, error) {
	return m.GetUserFunc(ctx, userID)
}

func (m *mockUserService) UpdateUser(ctx context.Context, userID string, req *request.AdminUpdateUserRequest) (*response.UserResponse, error) {
	return m.UpdateUserFunc(ctx, userID, req)
}

func (m *mockUserService) DeleteUser(ctx context.Context, userID string) error {
	return m.DeleteUserFunc(ctx, userID)
}

func TestUserHandler_UpdateMeMultipart(t *testing.T) {
	caller := utils.Caller{ID: uuid.New(), Role: "user"}
	svc := &mockUserService{
		UpdateMeFunc: func(_ context.Context, userID uuid.UUID, req *request.UpdateMeRequest, photo *storage.Image) (*response.UserResponse, error) {
			assert.Equal(t, caller.ID, userID)
			require.NotNil(t, req.Name)
			assert.Equal(t, "Jane Doe", *req.Name)
			assert.Nil(t, req.Email)
			require.NotNil(t, photo)
			return &response.UserResponse{ID: userID.String(), Name: *req.Name}, nil
		},
	}
	handler := NewUserHandler(svc, apperror.NewTranslator(zap.NewNop(), false), 1<<20, zap.NewNop())

	body, contentType := multipartBody(t, map[string]string{"name": "Jane Doe"}, "photo", "me.png", pngBytes)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/updateMe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UpdateMe(rec, withCaller(req, caller))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Jane Doe"`)
}

func TestUserHandler_UpdateMePasswordForwarded(t *testing.T) {
	svc := &mockUserService{
		UpdateMeFunc: func(_ context.Context, _ uuid.UUID, req *request.UpdateMeRequest, _ *storage.Image) (*response.UserResponse, error) {
			require.NotNil(t, req.Password)
			return nil, apperror.Validation("This route is not for password updates. Please use /updatePassword.")
		},
	}
	handler := NewUserHandler(svc, apperror.NewTranslator(zap.NewNop(), false), 1<<20, zap.NewNop())

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/updateMe", strings.NewReader(`{"password":"password123"}`))
	rec := httptest.NewRecorder()
	handler.UpdateMe(rec, withCaller(req, utils.Caller{ID: uuid.New(), Role: "user"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "This route is not for password updates. Please use /updatePassword.", decodeEnvelope(t, rec).Message)
}

func TestUserHandler_GetAllUsersPagination(t *testing.T) {
	svc := &mockUserService{
		GetAllUsersFunc: func(_ context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
			assert.Equal(t, 2, req.Page)
			assert.Equal(t, 5, req.PerPage)
			return response.NewPaginatedResponse([]response.UserResponse{{ID: "1"}}, req.Page, req.PerPage, 6), nil
		},
	}
	handler := NewUserHandler(svc, apperror.NewTranslator(zap.NewNop(), false), 1<<20, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.GetAllUsers(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users?page=2&per_page=5", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_pages":2`)
}
