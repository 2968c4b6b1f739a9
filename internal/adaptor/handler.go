package adaptor

import (
	"civic-report/internal/usecase"
	"civic-report/pkg/apperror"

	"go.uber.org/zap"
)

type Handler struct {
	Auth   *AuthHandler
	User   *UserHandler
	Report *ReportHandler
}

func NewHandler(service *usecase.Service, errs *apperror.Translator, maxUploadBytes int64, log *zap.Logger) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(service.Auth, errs, log),
		User:   NewUserHandler(service.User, errs, maxUploadBytes, log),
		Report: NewReportHandler(service.Report, errs, maxUploadBytes, log),
	}
}
