package wire

import (
	"civic-report/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireUser configures profile and user management routes
func wireUser(r chi.Router, userHandler *adaptor.UserHandler, g guards) {
	// ==================== PROTECTED USER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.protect)

		r.Get("/me", userHandler.GetMe)
		r.Patch("/updateMe", userHandler.UpdateMe)
		r.Delete("/deleteMe", userHandler.DeleteMe)
	})

	// ==================== ADMIN ROUTES ====================
	// Requires both authentication AND admin role
	r.Group(func(r chi.Router) {
		r.Use(g.protect, g.adminOnly)

		r.Get("/", userHandler.GetAllUsers)       // GET /api/v1/users?page=1&per_page=10
		r.Get("/{id}", userHandler.GetUser)       // GET /api/v1/users/{user-id}
		r.Patch("/{id}", userHandler.UpdateUser)  // PATCH /api/v1/users/{user-id}
		r.Delete("/{id}", userHandler.DeleteUser) // DELETE /api/v1/users/{user-id}
	})
}
