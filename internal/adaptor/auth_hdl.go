package adaptor

import (
	"net/http"

	"civic-report/internal/dto/request"
	"civic-report/internal/dto/response"
	"civic-report/internal/usecase"
	"civic-report/pkg/apperror"
	"civic-report/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	errs    *apperror.Translator
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, errs *apperror.Translator, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		errs:    errs,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Signup handles POST /api/v1/users/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.SignupRequest

	// Decode request body
	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	// Call service (validates)
	resp, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	h.sendToken(w, http.StatusCreated, resp)
}

// Login handles POST /api/v1/users/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest

	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	h.sendToken(w, http.StatusOK, resp)
}

// ForgotPassword handles POST /api/v1/users/forgotPassword
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ForgotPasswordRequest

	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseMessage(w, "If that email is registered, a reset token has been issued")
}

// ResetPassword handles PATCH /api/v1/users/resetPassword/{token}
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest

	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	resp, err := h.service.ResetPassword(r.Context(), chi.URLParam(r, "token"), &req)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	h.sendToken(w, http.StatusOK, resp)
}

// UpdatePassword handles PATCH /api/v1/users/updatePassword
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	// Get user ID from context (set by Protect)
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		h.errs.Write(w, r, apperror.Unauthenticated("You are not logged in! Please log in to get access"))
		return
	}

	var req request.UpdatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	resp, err := h.service.UpdatePassword(r.Context(), userID, &req)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	h.sendToken(w, http.StatusOK, resp)
}

func (h *AuthHandler) sendToken(w http.ResponseWriter, code int, resp *response.AuthResponse) {
	utils.ResponseToken(w, code, resp.Token, map[string]any{
		"user":      resp.User,
		"expiresAt": resp.ExpiresAt,
	})
}
