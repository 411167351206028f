package api

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/savemyigcse/backend/internal/api/handlers"
	"github.com/savemyigcse/backend/internal/api/response"
	"github.com/savemyigcse/backend/internal/auth"
	"github.com/savemyigcse/backend/internal/config"
	"github.com/savemyigcse/backend/internal/services"
	"github.com/savemyigcse/backend/internal/types"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(cfg *config.Config, userService services.UserServiceProvider, subjectService services.SubjectServiceProvider, questionService services.QuestionServiceProvider) *chi.Mux {
	response.IncludeStacks = !cfg.IsProduction()

	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(recoverJSON)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, cfg.IsProduction())
	userHandler := handlers.NewUserHandler(userService)
	subjectHandler := handlers.NewSubjectHandler(subjectService)
	questionHandler := handlers.NewQuestionHandler(questionService)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   "Server is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// API versioning
	r.Route("/api/"+cfg.APIVersion, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			response.WriteJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"message": "SaveMyIGCSE API",
				"version": cfg.APIVersion,
			})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/request-verification", authHandler.RequestVerification)
			r.Post("/verify-email", authHandler.VerifyEmail)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(auth.JWTMiddleware())
			r.Get("/me", userHandler.GetMe)
			r.With(auth.RequireRole(types.RoleAdmin)).Get("/", userHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.Get)
				// Account writes are allowed to the account owner or an admin
				r.Group(func(r chi.Router) {
					r.Use(requireSelfOrAdmin)
					r.Put("/", userHandler.Update)
					r.Put("/password", userHandler.ChangePassword)
					r.Delete("/", userHandler.Delete)
				})
			})
		})

		r.Route("/subjects", func(r chi.Router) {
			r.Get("/", subjectHandler.GetAll)
			r.Get("/{id}", subjectHandler.Get)
			// Content writes are restricted to admins
			r.Group(func(r chi.Router) {
				r.Use(auth.JWTMiddleware(), auth.RequireRole(types.RoleAdmin))
				r.Post("/", subjectHandler.Create)
				r.Put("/{id}", subjectHandler.Update)
				r.Delete("/{id}", subjectHandler.Delete)
			})
		})

		r.Route("/questions", func(r chi.Router) {
			r.Get("/", questionHandler.List)
			r.Get("/{id}", questionHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(auth.JWTMiddleware(), auth.RequireRole(types.RoleAdmin))
				r.Post("/", questionHandler.Create)
				r.Put("/{id}", questionHandler.Update)
				r.Delete("/{id}", questionHandler.Delete)
			})
		})
	})

	// Uniform JSON 404 for unmatched routes
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.Fail(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		response.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// requireSelfOrAdmin lets a request through only when the authenticated
// user is the account named by {id}, or an admin. Must run after
// JWTMiddleware.
func requireSelfOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok || (claims.Role != types.RoleAdmin && claims.UserID != chi.URLParam(r, "id")) {
			response.Fail(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverJSON converts panics into the uniform error envelope. The stack
// is logged always but returned to the client only outside production.
func recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				stack := string(debug.Stack())
				log.Error().Any("panic", rec).Str("stack", stack).Msg("Recovered from panic")
				response.Panic(w, "Internal Server Error", stack)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
