package wire

import (
	"civic-report/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/signup", authHandler.Signup)
	r.With(g.throttle).Post("/login", authHandler.Login)
	r.With(g.throttle).Post("/forgotPassword", authHandler.ForgotPassword)
	r.Patch("/resetPassword/{token}", authHandler.ResetPassword)

	// ==================== PROTECTED ROUTES ====================
	r.With(g.protect).Patch("/updatePassword", authHandler.UpdatePassword)
}
