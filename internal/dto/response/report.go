package response

import (
	"time"

	"civic-report/internal/data/entity"
)

type AuthorResponse struct {
	ID   string  `json:"id"`
	Name *string `json:"name,omitempty"`
}

type ReportResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Address     string              `json:"address"`
	Image       string              `json:"image"`
	Author      *AuthorResponse     `json:"author,omitempty"`
	Status      entity.ReportStatus `json:"status"`
	Upvotes     int                 `json:"upvotes"`
	Downvotes   int                 `json:"downvotes"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// Helper converter
func ReportToResponse(report *entity.Report) ReportResponse {
	resp := ReportResponse{
		ID:          report.ID.String(),
		Title:       report.Title,
		Description: report.Description,
		Category:    report.Category,
		Address:     report.Address,
		Image:       report.Image,
		Status:      report.Status,
		Upvotes:     report.Upvotes,
		Downvotes:   report.Downvotes,
		CreatedAt:   report.CreatedAt,
		UpdatedAt:   report.UpdatedAt,
	}

	if report.AuthorID != nil {
		resp.Author = &AuthorResponse{
			ID:   report.AuthorID.String(),
			Name: report.AuthorName,
		}
	}

	return resp
}

func ReportsToResponse(reports []*entity.Report) []ReportResponse {
	out := make([]ReportResponse, len(reports))
	for i, report := range reports {
		out[i] = ReportToResponse(report)
	}
	return out
}
