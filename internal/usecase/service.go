package usecase

import (
	"civic-report/internal/data/repository"
	"civic-report/pkg/apperror"
	"civic-report/pkg/events"
	"civic-report/pkg/storage"
	"civic-report/pkg/token"
	"civic-report/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth   AuthService
	User   UserService
	Report ReportService
}

func NewService(
	repo *repository.Repository,
	tokens token.JWTService,
	uploader *storage.Uploader,
	publisher events.Publisher,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth:   NewAuthService(repo.User, tokens, log),
		User:   NewUserService(repo.User, uploader, log),
		Report: NewReportService(repo.Report, uploader, publisher, log),
	}
}

// validate runs struct tags and returns a ValidationError listing every field
func validate(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperror.ValidationFields("Invalid input. "+utils.FormatValidationErrors(errs), errs)
	}
	return nil
}
