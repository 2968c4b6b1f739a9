package wire

import (
	"context"
	"net/http"
	"strings"
	"time"

	"civic-report/internal/adaptor"
	"civic-report/internal/data/entity"
	"civic-report/internal/data/repository"
	"civic-report/internal/usecase"
	"civic-report/pkg/apperror"
	"civic-report/pkg/database"
	"civic-report/pkg/events"
	"civic-report/pkg/middleware"
	"civic-report/pkg/ratelimit"
	"civic-report/pkg/storage"
	"civic-report/pkg/token"
	"civic-report/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Deps are the infrastructure pieces built at startup
type Deps struct {
	DB        database.PgxIface
	Repo      *repository.Repository
	Tokens    token.JWTService
	Uploader  *storage.Uploader
	Publisher events.Publisher
	Limiter   ratelimit.Limiter
	Config    *utils.Config
	Logger    *zap.Logger
}

// App holds the wired router
type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and routes
func Wiring(deps Deps) *App {
	service := usecase.NewService(deps.Repo, deps.Tokens, deps.Uploader, deps.Publisher, deps.Logger)
	errs := apperror.NewTranslator(deps.Logger, deps.Config.App.IsDevelopment())
	handler := adaptor.NewHandler(service, errs, deps.Config.Upload.MaxBytes, deps.Logger)

	router := setupRouter(handler, service, errs, deps)

	return &App{
		Router: router,
	}
}

// guards are the middleware shared by the route groups
type guards struct {
	protect   func(http.Handler) http.Handler
	adminOnly func(http.Handler) http.Handler
	throttle  func(http.Handler) http.Handler
}

func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	errs *apperror.Translator,
	deps Deps,
) *chi.Mux {
	r := chi.NewRouter()
	log := deps.Logger

	// Apply global middleware
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recover(errs, log))
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))

	g := guards{
		protect:   middleware.Protect(service.Auth, errs, log),
		adminOnly: middleware.RestrictTo(errs, log, entity.RoleAdmin),
		throttle:  middleware.RateLimit(deps.Limiter, errs, log),
	}

	// Apply routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			wireAuth(r, handler.Auth, g)
			wireUser(r, handler.User, g)
		})
		r.Route("/reports", func(r chi.Router) {
			wireReport(r, handler.Report, g)
		})
	})

	// Uploaded images on the local store
	if deps.Config.Upload.Driver != "s3" {
		prefix := deps.Config.Upload.PublicPrefix
		fileServer := http.StripPrefix(prefix, http.FileServer(http.Dir(deps.Config.Upload.Dir)))
		r.Get(prefix+"/*", func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	}

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := deps.DB.Ping(ctx); err != nil {
			log.Warn("Health check failed", zap.Error(err))
			utils.ResponseJSON(w, http.StatusServiceUnavailable, utils.Response{
				Status:  utils.StatusError,
				Message: "database unavailable",
			})
			return
		}
		utils.ResponseMessage(w, "OK")
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errs.Write(w, r, apperror.NotFound("Can't find "+r.URL.Path+" on this server!"))
	})

	return r
}
