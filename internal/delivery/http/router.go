package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventmanagement/internal/delivery/http/controllers"
	"eventmanagement/internal/delivery/http/middleware"
	"eventmanagement/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth         *controllers.AuthController
	Category     *controllers.CategoryController
	User         *controllers.UserController
	Event        *controllers.EventController
	Registration *controllers.RegistrationController
	Health       *controllers.HealthController
}

// RouterConfig holds the cross-cutting settings of the HTTP stack.
type RouterConfig struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// NewRouter initializes the HTTP router with all application routes under /api.
// Requests pass CORS, tracing, access logging and the body limit, in that order.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /api/auth/login", c.Auth.Login)

	// Health
	mux.HandleFunc("GET /api/health", c.Health.Health)

	// Categories
	mux.HandleFunc("POST /api/categories", c.Category.Create)
	mux.HandleFunc("GET /api/categories", c.Category.List)
	mux.HandleFunc("GET /api/categories/{categoryID}", c.Category.Get)
	mux.HandleFunc("PUT /api/categories/{categoryID}", c.Category.Update)
	mux.HandleFunc("DELETE /api/categories/{categoryID}", c.Category.Delete)

	// Users
	mux.HandleFunc("POST /api/users/register", c.User.Register)
	mux.HandleFunc("GET /api/users", c.User.List)
	mux.HandleFunc("GET /api/users/{userID}", c.User.Get)
	mux.HandleFunc("PUT /api/users/{userID}", c.User.Update)
	mux.HandleFunc("DELETE /api/users/{userID}", c.User.Delete)
	mux.HandleFunc("GET /api/users/username/{username}", c.User.GetByUsername)
	mux.HandleFunc("GET /api/users/email/{email}", c.User.GetByEmail)

	// Events
	mux.HandleFunc("POST /api/events", auth(c.Event.Create))
	mux.HandleFunc("GET /api/events", c.Event.ListPublished)
	mux.HandleFunc("GET /api/events/all", c.Event.ListAll)
	mux.HandleFunc("GET /api/events/search", c.Event.Search)
	mux.HandleFunc("GET /api/events/upcoming", c.Event.ListUpcoming)
	mux.HandleFunc("GET /api/events/available", c.Event.ListAvailable)
	mux.HandleFunc("GET /api/events/category/{categoryID}", c.Event.ListByCategory)
	mux.HandleFunc("GET /api/events/organizer/{organizerID}", c.Event.ListByOrganizer)
	mux.HandleFunc("GET /api/events/{eventID}", c.Event.Get)
	mux.HandleFunc("PUT /api/events/{eventID}", auth(c.Event.Update))
	mux.HandleFunc("PATCH /api/events/{eventID}/publish", auth(c.Event.Publish))
	mux.HandleFunc("PATCH /api/events/{eventID}/cancel", auth(c.Event.Cancel))
	mux.HandleFunc("DELETE /api/events/{eventID}", auth(c.Event.Delete))

	// Registrations
	mux.HandleFunc("POST /api/registrations", c.Registration.Register)
	mux.HandleFunc("GET /api/registrations/{registrationID}", c.Registration.Get)
	mux.HandleFunc("GET /api/registrations/event/{eventID}", c.Registration.ListByEvent)
	mux.HandleFunc("GET /api/registrations/event/{eventID}/count", c.Registration.CountConfirmed)
	mux.HandleFunc("GET /api/registrations/user/{userID}", c.Registration.ListByUser)
	mux.HandleFunc("PATCH /api/registrations/{registrationID}/confirm", c.Registration.Confirm)
	mux.HandleFunc("PATCH /api/registrations/{registrationID}/cancel", c.Registration.Cancel)
	mux.HandleFunc("DELETE /api/registrations/{registrationID}", c.Registration.Delete)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.BodyLimit(cfg.MaxBodyBytes, handler)
	handler = middleware.AccessLog(logger, handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	return handler
}
