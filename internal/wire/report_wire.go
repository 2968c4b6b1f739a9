package wire

import (
	"civic-report/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireReport(r chi.Router, reportHandler *adaptor.ReportHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/", reportHandler.ListAll)

	// ==================== PROTECTED ROUTES ====================
	// Static paths first, then /{id}
	r.Group(func(r chi.Router) {
		r.Use(g.protect)

		r.Get("/my-reports", reportHandler.ListMine)
		r.Post("/create", reportHandler.Create)
		r.Patch("/changeProgress", reportHandler.ChangeProgress)
		r.Post("/getOne", reportHandler.GetOne)

		r.Get("/{id}", reportHandler.Get)
		r.Patch("/{id}", reportHandler.Update)
		r.Delete("/{id}", reportHandler.Delete)
		r.Patch("/{id}/vote", reportHandler.Vote)
	})
}
