package adaptor

import (
	"net/http"

	"civic-report/internal/dto/request"
	"civic-report/internal/usecase"
	"civic-report/pkg/apperror"
	"civic-report/pkg/storage"
	"civic-report/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserHandler struct {
	service  usecase.UserService
	errs     *apperror.Translator
	maxBytes int64
	log      *zap.Logger
}

func NewUserHandler(service usecase.UserService, errs *apperror.Translator, maxBytes int64, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service:  service,
		errs:     errs,
		maxBytes: maxBytes,
		log:      log.With(zap.String("handler", "user")),
	}
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		h.errs.Write(w, r, apperror.Unauthenticated("You are not logged in! Please log in to get access"))
		return
	}

	user, err := h.service.GetMe(r.Context(), userID)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseSuccess(w, map[string]any{"user": user})
}

// UpdateMe handles PATCH /api/v1/users/updateMe (JSON or multipart with "photo")
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		h.errs.Write(w, r, apperror.Unauthenticated("You are not logged in! Please log in to get access"))
		return
	}

	var (
		req   request.UpdateMeRequest
		photo *storage.Image
	)

	if isMultipart(r) {
		if err := parseMultipart(w, r, h.maxBytes); err != nil {
			h.errs.Write(w, r, err)
			return
		}
		req.Name = formString(r, "name")
		req.Email = formString(r, "email")
		req.Password = formString(r, "password")
		req.PasswordConfirm = formString(r, "passwordConfirm")

		var err error
		if photo, err = formImage(r, "photo"); err != nil {
			h.errs.Write(w, r, err)
			return
		}
	} else if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	user, err := h.service.UpdateMe(r.Context(), userID, &req, photo)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseSuccess(w, map[string]any{"user": user})
}

// DeleteMe handles DELETE /api/v1/users/deleteMe
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		h.errs.Write(w, r, apperror.Unauthenticated("You are not logged in! Please log in to get access"))
		return
	}

	if err := h.service.DeleteMe(r.Context(), userID); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseNoContent(w)
}

// GetAllUsers handles GET /api/v1/users (admin only)
func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	users, err := h.service.GetAllUsers(r.Context(), req)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseList(w, len(users.Data), map[string]any{
		"users":      users.Data,
		"pagination": users.Pagination,
	})
}

// GetUser handles GET /api/v1/users/{id} (admin only)
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseSuccess(w, map[string]any{"user": user})
}

// UpdateUser handles PATCH /api/v1/users/{id} (admin only)
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req request.AdminUpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseSuccess(w, map[string]any{"user": user})
}

// DeleteUser handles DELETE /api/v1/users/{id} (admin only)
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseNoContent(w)
}
