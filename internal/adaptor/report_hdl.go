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

type ReportHandler struct {
	service  usecase.ReportService
	errs     *apperror.Translator
	maxBytes int64
	log      *zap.Logger
}

func NewReportHandler(service usecase.ReportService, errs *apperror.Translator, maxBytes int64, log *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service:  service,
		errs:     errs,
		maxBytes: maxBytes,
		log:      log.With(zap.String("handler", "report")),
	}
}

// ListAll handles GET /api/v1/reports (public)
func (h *ReportHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.ListAllReports(r.Context())
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseList(w, len(reports), map[string]any{"reports": reports})
}

// ListMine handles GET /api/v1/reports/my-reports
func (h *ReportHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	reports, err := h.service.ListMyReports(r.Context(), caller)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseList(w, len(reports), map[string]any{"reports": reports})
}

// Create handles POST /api/v1/reports/create (multipart with "image")
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var (
		req   request.CreateReportRequest
		image *storage.Image
	)

	// A JSON body cannot carry the image; the service rejects it as missing
	if isMultipart(r) {
		if err := parseMultipart(w, r, h.maxBytes); err != nil {
			h.errs.Write(w, r, err)
			return
		}
		req.Title = r.FormValue("title")
		req.Description = r.FormValue("description")
		req.Category = r.FormValue("category")
		req.Address = r.FormValue("address")

		var err error
		if image, err = formImage(r, "image"); err != nil {
			h.errs.Write(w, r, err)
			return
		}
	} else if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	report, err := h.service.CreateReport(r.Context(), caller, &req, image)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseCreated(w, map[string]any{"report": report})
}

// ChangeProgress handles PATCH /api/v1/reports/changeProgress
func (h *ReportHandler) ChangeProgress(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req request.ChangeProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	report, err := h.service.ChangeProgress(r.Context(), caller, &req)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseSuccess(w, map[string]any{"report": report})
}

// GetOne handles POST /api/v1/reports/getOne with {"reportId": "..."}
func (h *ReportHandler) GetOne(w http.ResponseWriter, r *http.Request) {
	var req request.GetReportRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	h.writeReport(w, r, req.ReportID)
}

// Get handles GET /api/v1/reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeReport(w, r, chi.URLParam(r, "id"))
}

// Update handles PATCH /api/v1/reports/{id}
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req request.UpdateReportRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	report, err := h.service.UpdateReport(r.Context(), caller, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseSuccess(w, map[string]any{"report": report})
}

// Delete handles DELETE /api/v1/reports/{id}
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteReport(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseNoContent(w)
}

// Vote handles PATCH /api/v1/reports/{id}/vote
func (h *ReportHandler) Vote(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req request.VoteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	report, err := h.service.VoteReport(r.Context(), caller, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseSuccess(w, map[string]any{"report": report})
}

func (h *ReportHandler) writeReport(w http.ResponseWriter, r *http.Request, reportID string) {
	report, err := h.service.GetReportByID(r.Context(), reportID)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	utils.ResponseSuccess(w, map[string]any{"report": report})
}

func (h *ReportHandler) caller(w http.ResponseWriter, r *http.Request) (utils.Caller, bool) {
	caller, ok := utils.GetCallerFromContext(r.Context())
	if !ok {
		h.errs.Write(w, r, apperror.Unauthenticated("You are not logged in! Please log in to get access"))
	}
	return caller, ok
}
