package usecase

import (
	"context"
	"errors"
	"time"

	"civic-report/internal/data/entity"
	"civic-report/internal/data/repository"
	"civic-report/internal/dto/request"
	"civic-report/internal/dto/response"
	"civic-report/pkg/apperror"
	"civic-report/pkg/events"
	"civic-report/pkg/storage"
	"civic-report/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgReportNotFound = "No report found with that ID"
	msgReportImage    = "A report must have an image"
	msgNoPermission   = "You do not have permission to perform this action"
	msgMissingFields  = "Please provide reportId and progress"
	msgInvalidStatus  = "Invalid progress status"
)

type ReportService interface {
	CreateReport(ctx context.Context, caller utils.Caller, req *request.CreateReportRequest, image *storage.Image) (*response.ReportResponse, error)
	ListAllReports(ctx context.Context) ([]response.ReportResponse, error)
	ListMyReports(ctx context.Context, caller utils.Caller) ([]response.ReportResponse, error)
	GetReportByID(ctx context.Context, reportID string) (*response.ReportResponse, error)
	ChangeProgress(ctx context.Context, caller utils.Caller, req *request.ChangeProgressRequest) (*response.ReportResponse, error)
	UpdateReport(ctx context.Context, caller utils.Caller, reportID string, req *request.UpdateReportRequest) (*response.ReportResponse, error)
	DeleteReport(ctx context.Context, caller utils.Caller, reportID string) error
	VoteReport(ctx context.Context, caller utils.Caller, reportID string, req *request.VoteRequest) (*response.ReportResponse, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
	uploader   *storage.Uploader
	publisher  events.Publisher
	log        *zap.Logger
	now        func() time.Time
}

func NewReportService(
	reportRepo repository.ReportRepository,
	uploader *storage.Uploader,
	publisher events.Publisher,
	log *zap.Logger,
) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		uploader:   uploader,
		publisher:  publisher,
		log:        log.With(zap.String("service", "report")),
		now:        time.Now,
	}
}

func (rs *reportService) CreateReport(ctx context.Context, caller utils.Caller, req *request.CreateReportRequest, image *storage.Image) (*response.ReportResponse, error) {
	// 1. Validate fields and image
	if err := validate(req); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, apperror.Validation(msgReportImage)
	}

	// 2. Store the image
	ref, err := rs.uploader.Upload(ctx, "reports", "report", image)
	if err != nil {
		rs.log.Error("Failed to store report image", zap.Error(err))
		return nil, apperror.Internal("failed to store image", err)
	}

	// 3. Insert the report
	now := rs.now()
	authorID := caller.ID
	report := &entity.Report{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Address:     req.Address,
		Image:       ref,
		AuthorID:    &authorID,
		Status:      entity.StatusPending,
	}

	if err := rs.reportRepo.Create(ctx, report); err != nil {
		rs.log.Error("Failed to create report", zap.Error(err), zap.String("author_id", caller.ID.String()))
		rs.cleanup(ctx, ref)
		return nil, apperror.Internal("failed to create report", err)
	}

	rs.log.Info("Report created",
		zap.String("report_id", report.ID.String()),
		zap.String("author_id", caller.ID.String()),
		zap.String("category", report.Category),
	)

	rs.publish(ctx, events.SubjectReportCreated, report, caller.ID)

	resp := response.ReportToResponse(report)
	return &resp, nil
}

func (rs *reportService) ListAllReports(ctx context.Context) ([]response.ReportResponse, error) {
	reports, err := rs.reportRepo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to list reports", err)
	}
	return response.ReportsToResponse(reports), nil
}

func (rs *reportService) ListMyReports(ctx context.Context, caller utils.Caller) ([]response.ReportResponse, error) {
	reports, err := rs.reportRepo.FindByAuthor(ctx, caller.ID)
	if err != nil {
		return nil, apperror.Internal("failed to list reports", err)
	}
	return response.ReportsToResponse(reports), nil
}

func (rs *reportService) GetReportByID(ctx context.Context, reportID string) (*response.ReportResponse, error) {
	report, err := rs.find(ctx, reportID)
	if err != nil {
		return nil, err
	}

	resp := response.ReportToResponse(report)
	return &resp, nil
}

func (rs *reportService) ChangeProgress(ctx context.Context, caller utils.Caller, req *request.ChangeProgressRequest) (*response.ReportResponse, error) {
	// 1. Validate before touching storage
	if req.ReportID == "" || req.Progress == "" {
		return nil, apperror.Validation(msgMissingFields)
	}
	status := entity.ReportStatus(req.Progress)
	if !status.Valid() {
		return nil, apperror.Validation(msgInvalidStatus)
	}

	id, err := utils.ParseUUID(req.ReportID)
	if err != nil {
		return nil, apperror.NotFound(msgReportNotFound)
	}

	// 2. Conditional update in one statement
	report, err := rs.reportRepo.UpdateStatus(ctx, id, status, caller.ID, caller.IsAdmin())
	if err != nil {
		return nil, apperror.Internal("failed to update report", err)
	}

	// 3. No row: either missing or not ours
	if report == nil {
		existing, err := rs.reportRepo.FindByID(ctx, id)
		if err != nil {
			return nil, apperror.Internal("failed to find report", err)
		}
		if existing == nil {
			return nil, apperror.NotFound(msgReportNotFound)
		}
		rs.log.Warn("Progress change denied",
			zap.String("report_id", id.String()),
			zap.String("user_id", caller.ID.String()),
		)
		return nil, apperror.Forbidden(msgNoPermission)
	}

	rs.log.Info("Report progress changed",
		zap.String("report_id", report.ID.String()),
		zap.String("status", string(report.Status)),
		zap.String("user_id", caller.ID.String()),
	)

	rs.publish(ctx, events.SubjectReportStatusChanged, report, caller.ID)

	resp := response.ReportToResponse(report)
	return &resp, nil
}

func (rs *reportService) UpdateReport(ctx context.Context, caller utils.Caller, reportID string, req *request.UpdateReportRequest) (*response.ReportResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	report, err := rs.findOwned(ctx, caller, reportID)
	if err != nil {
		return nil, err
	}

	previousStatus := report.Status

	if req.Title != nil {
		report.Title = *req.Title
	}
	if req.Description != nil {
		report.Description = *req.Description
	}
	if req.Category != nil {
		report.Category = *req.Category
	}
	if req.Address != nil {
		report.Address = *req.Address
	}
	report.UpdatedAt = rs.now()

	err = rs.reportRepo.Update(ctx, report)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound(msgReportNotFound)
	}
	if err != nil {
		return nil, apperror.Internal("failed to update report", err)
	}

	// Status goes through the same conditional update as changeProgress
	if req.Status != nil {
		report, err = rs.reportRepo.UpdateStatus(ctx, report.ID, entity.ReportStatus(*req.Status), caller.ID, caller.IsAdmin())
		if err != nil {
			return nil, apperror.Internal("failed to update report", err)
		}
		if report == nil {
			return nil, apperror.NotFound(msgReportNotFound)
		}
	}

	rs.log.Info("Report updated",
		zap.String("report_id", report.ID.String()),
		zap.String("user_id", caller.ID.String()),
	)

	if report.Status != previousStatus {
		rs.publish(ctx, events.SubjectReportStatusChanged, report, caller.ID)
	}

	resp := response.ReportToResponse(report)
	return &resp, nil
}

func (rs *reportService) DeleteReport(ctx context.Context, caller utils.Caller, reportID string) error {
	report, err := rs.findOwned(ctx, caller, reportID)
	if err != nil {
		return err
	}

	err = rs.reportRepo.Delete(ctx, report.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(msgReportNotFound)
	}
	if err != nil {
		return apperror.Internal("failed to delete report", err)
	}

	rs.cleanup(ctx, report.Image)

	rs.log.Info("Report deleted",
		zap.String("report_id", report.ID.String()),
		zap.String("user_id", caller.ID.String()),
	)

	rs.publish(ctx, events.SubjectReportDeleted, report, caller.ID)
	return nil
}

func (rs *reportService) VoteReport(ctx context.Context, caller utils.Caller, reportID string, req *request.VoteRequest) (*response.ReportResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	id, err := utils.ParseUUID(reportID)
	if err != nil {
		return nil, apperror.NotFound(msgReportNotFound)
	}

	report, err := rs.reportRepo.Vote(ctx, id, caller.ID, entity.VoteDirection(req.Direction))
	if err != nil {
		return nil, apperror.Internal("failed to record vote", err)
	}
	if report == nil {
		return nil, apperror.NotFound(msgReportNotFound)
	}

	resp := response.ReportToResponse(report)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

func (rs *reportService) find(ctx context.Context, reportID string) (*entity.Report, error) {
	// A malformed id cannot match any report
	id, err := utils.ParseUUID(reportID)
	if err != nil {
		return nil, apperror.NotFound(msgReportNotFound)
	}

	report, err := rs.reportRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to find report", err)
	}
	if report == nil {
		return nil, apperror.NotFound(msgReportNotFound)
	}
	return report, nil
}

func (rs *reportService) findOwned(ctx context.Context, caller utils.Caller, reportID string) (*entity.Report, error) {
	report, err := rs.find(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !report.OwnedBy(caller.ID) && !caller.IsAdmin() {
		return nil, apperror.Forbidden(msgNoPermission)
	}
	return report, nil
}

// publish is best effort; a broker outage never fails the request
func (rs *reportService) publish(ctx context.Context, subject string, report *entity.Report, actorID uuid.UUID) {
	event := events.ReportEvent{
		ReportID:   report.ID.String(),
		ActorID:    actorID.String(),
		Status:     string(report.Status),
		OccurredAt: rs.now(),
	}
	if report.AuthorID != nil {
		event.AuthorID = report.AuthorID.String()
	}

	if err := rs.publisher.Publish(ctx, subject, event); err != nil {
		rs.log.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

func (rs *reportService) cleanup(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := rs.uploader.Remove(context.WithoutCancel(ctx), ref); err != nil {
		rs.log.Warn("Failed to remove image", zap.String("ref", ref), zap.Error(err))
	}
}
