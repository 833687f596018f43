package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/projexhq/projex-api/internal/httpapi/handlers"
)

// RouterDeps defines router construction dependencies.
type RouterDeps struct {
	HealthHandler      http.HandlerFunc
	MetricsHandler     http.Handler
	Auth               *handlers.AuthHandler
	Projects           *handlers.ProjectHandler
	Tasks              *handlers.TaskHandler
	Activity           *handlers.ActivityHandler
	Notifications      *handlers.NotificationHandler
	RequireAuthHandler func(http.Handler) http.Handler
}

// NewRouter wires HTTP routes.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if deps.HealthHandler != nil {
		r.Get("/healthz", deps.HealthHandler)
	}
	if deps.MetricsHandler != nil {
		r.Method("GET", "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.Auth.Register)
			r.Post("/login", deps.Auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(deps.RequireAuthHandler)
				r.Get("/me", deps.Auth.Me)
				r.Post("/logout", deps.Auth.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.RequireAuthHandler)

			r.Put("/users/profile", deps.Auth.UpdateProfile)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", deps.Projects.List)
				r.Post("/", deps.Projects.Create)
				r.Route("/{projectID}", func(r chi.Router) {
					r.Put("/", deps.Projects.Update)
					r.Delete("/", deps.Projects.Delete)
					r.Post("/members", deps.Projects.AddMember)
					r.Delete("/members", deps.Projects.RemoveMember)
					r.Put("/members", deps.Projects.UpdateMemberRole)
					r.Get("/tasks", deps.Tasks.ListByProject)
					r.Post("/tasks", deps.Tasks.Create)
				})
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/mine", deps.Tasks.ListMine)
				r.Route("/{taskID}", func(r chi.Router) {
					r.Put("/", deps.Tasks.Update)
					r.Delete("/", deps.Tasks.Delete)
					r.Post("/comments", deps.Tasks.AddComment)
					r.Post("/attachments", deps.Tasks.AddAttachment)
					r.Post("/time", deps.Tasks.LogTime)
				})
			})

			r.Route("/activity", func(r chi.Router) {
				r.Get("/project/{projectID}", deps.Activity.ProjectActivity)
				r.Get("/user/me", deps.Activity.UserActivity)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", deps.Notifications.List)
				r.Put("/{notificationID}/read", deps.Notifications.MarkRead)
			})
		})
	})

	return r
}
