package request

type CreateReportRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
	Category    string `json:"category" validate:"required,max=100"`
	Address     string `json:"address" validate:"required,max=500"`
}

type UpdateReportRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=1,max=5000"`
	Category    *string `json:"category,omitempty" validate:"omitempty,min=1,max=100"`
	Address     *string `json:"address,omitempty" validate:"omitempty,min=1,max=500"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=pending in-progress resolved"`
}

type ChangeProgressRequest struct {
	ReportID string `json:"reportId" validate:"required"`
	Progress string `json:"progress" validate:"required"`
}

type GetReportRequest struct {
	ReportID string `json:"reportId" validate:"required"`
}

type VoteRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}
