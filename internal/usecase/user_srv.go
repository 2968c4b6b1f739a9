package usecase

import (
	"context"
	"errors"

	"civic-report/internal/data/entity"
	"civic-report/internal/data/repository"
	"civic-report/internal/dto/request"
	"civic-report/internal/dto/response"
	"civic-report/pkg/apperror"
	"civic-report/pkg/storage"
	"civic-report/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgUserNotFound     = "No user found with that ID"
	msgNotPasswordRoute = "This route is not for password updates. Please use /updatePassword."
)

type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, req *request.UpdateMeRequest, photo *storage.Image) (*response.UserResponse, error)
	DeleteMe(ctx context.Context, userID uuid.UUID) error
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	GetUser(ctx context.Context, userID string) (*response.UserResponse, error)
	UpdateUser(ctx context.Context, userID string, req *request.AdminUpdateUserRequest) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, userID string) error
}

type userService struct {
	userRepo repository.UserRepository
	uploader *storage.Uploader
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, uploader *storage.Uploader, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		uploader: uploader,
		log:      log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetMe(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateMe(ctx context.Context, userID uuid.UUID, req *request.UpdateMeRequest, photo *storage.Image) (*response.UserResponse, error) {
	// 1. Reject password changes on this route
	if req.Password != nil || req.PasswordConfirm != nil {
		return nil, apperror.Validation(msgNotPasswordRoute)
	}

	// 2. Validate input
	if err := validate(req); err != nil {
		return nil, err
	}

	// 3. Load user
	user, err := us.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 4. Apply allowed fields only
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = utils.NormalizeEmail(*req.Email)
	}

	// 5. Store the new photo before touching the row
	var uploaded string
	if photo != nil {
		uploaded, err = us.uploader.Upload(ctx, "users", "user", photo)
		if err != nil {
			us.log.Error("Failed to store photo", zap.Error(err), zap.String("user_id", userID.String()))
			return nil, apperror.Internal("failed to store photo", err)
		}
		user.Photo = &uploaded
	}

	if err := us.save(ctx, user); err != nil {
		if uploaded != "" {
			us.cleanup(ctx, uploaded)
		}
		return nil, err
	}

	us.log.Info("Profile updated", zap.String("user_id", userID.String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) DeleteMe(ctx context.Context, userID uuid.UUID) error {
	return us.deactivate(ctx, userID)
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	// Set defaults
	if req.Page < 1 {
		req.Page = 1
	}
	req.PerPage = req.Limit()

	users, err := us.userRepo.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		us.log.Error("Failed to get all users",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, apperror.Internal("failed to list users", err)
	}

	total, err := us.userRepo.CountAll(ctx)
	if err != nil {
		us.log.Error("Failed to count users", zap.Error(err))
		return nil, apperror.Internal("failed to count users", err)
	}

	data := make([]response.UserResponse, len(users))
	for i, user := range users {
		data[i] = response.UserToResponse(user)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (us *userService) GetUser(ctx context.Context, userID string) (*response.UserResponse, error) {
	id, err := utils.ParseUUID(userID)
	if err != nil {
		return nil, apperror.NotFound(msgUserNotFound)
	}

	user, err := us.find(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateUser(ctx context.Context, userID string, req *request.AdminUpdateUserRequest) (*response.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	id, err := utils.ParseUUID(userID)
	if err != nil {
		return nil, apperror.NotFound(msgUserNotFound)
	}

	user, err := us.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = utils.NormalizeEmail(*req.Email)
	}
	if req.Role != nil {
		user.Role = entity.UserRole(*req.Role)
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := us.save(ctx, user); err != nil {
		return nil, err
	}

	us.log.Info("User updated by admin",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.Bool("active", user.Active),
	)

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) DeleteUser(ctx context.Context, userID string) error {
	id, err := utils.ParseUUID(userID)
	if err != nil {
		return apperror.NotFound(msgUserNotFound)
	}
	return us.deactivate(ctx, id)
}

// ==================== HELPER METHODS ====================

func (us *userService) find(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", id.String()))
		return nil, apperror.Internal("failed to find user", err)
	}
	if user == nil {
		return nil, apperror.NotFound(msgUserNotFound)
	}
	return user, nil
}

func (us *userService) save(ctx context.Context, user *entity.User) error {
	err := us.userRepo.Update(ctx, user)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		return apperror.Duplicate(user.Email)
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(msgUserNotFound)
	default:
		us.log.Error("Failed to update user", zap.Error(err), zap.String("user_id", user.ID.String()))
		return apperror.Internal("failed to update user", err)
	}
}

// deactivate soft-deletes; reports keep their author
func (us *userService) deactivate(ctx context.Context, id uuid.UUID) error {
	err := us.userRepo.Deactivate(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(msgUserNotFound)
	}
	if err != nil {
		us.log.Error("Failed to deactivate user", zap.Error(err), zap.String("user_id", id.String()))
		return apperror.Internal("failed to delete user", err)
	}

	us.log.Info("User deactivated", zap.String("user_id", id.String()))
	return nil
}

func (us *userService) cleanup(ctx context.Context, ref string) {
	if err := us.uploader.Remove(context.WithoutCancel(ctx), ref); err != nil {
		us.log.Warn("Failed to remove orphaned upload", zap.String("ref", ref), zap.Error(err))
	}
}
