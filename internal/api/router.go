package api

import (
	"net/http"

	"github.com/awakenedyouth/awakened-be/internal/api/handlers"
	"github.com/awakenedyouth/awakened-be/internal/auth"
	"github.com/awakenedyouth/awakened-be/internal/metrics"
	"github.com/awakenedyouth/awakened-be/internal/services"
	"github.com/awakenedyouth/awakened-be/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Dependencies are the services and settings the router wires into handlers.
type Dependencies struct {
	Hub     *websocket.Hub
	Tokens  *auth.TokenManager
	Metrics *metrics.Metrics

	Auth          services.AuthServiceProvider
	Submissions   services.SubmissionServiceProvider
	Columns       services.ColumnServiceProvider
	Search        services.SearchServiceProvider
	Notifications services.NotificationServiceProvider
	Activities    services.ActivityServiceProvider
	Engagement    services.EngagementServiceProvider

	AllowedOrigins     []string
	SecureCookies      bool
	LoginRatePerMinute int

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Leave it off unless a proxy that overwrites those headers is in front.
	TrustProxy bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(d Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	if d.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(d.Tokens.SessionMiddleware())

	// Initialize handlers
	userHandler := handlers.NewUserHandler(d.Auth, d.Tokens, d.SecureCookies)
	submissionHandler := handlers.NewSubmissionHandler(d.Submissions)
	columnHandler := handlers.NewColumnHandler(d.Columns, d.Engagement)
	searchHandler := handlers.NewSearchHandler(d.Search)
	notificationHandler := handlers.NewNotificationHandler(d.Notifications)
	activityHandler := handlers.NewActivityHandler(d.Activities)
	engagementHandler := handlers.NewEngagementHandler(d.Engagement)
	wsHandler := handlers.NewWebSocketHandler(d.Hub, d.AllowedOrigins)

	limiter := newLoginLimiter(d.LoginRatePerMinute)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	// Bell notification routes the site has always called unversioned.
	r.Get("/ws/notifications", wsHandler.Serve)
	r.Route("/api/notifications", func(r chi.Router) {
		r.Get("/", notificationHandler.List)
		r.Get("/unread-count", notificationHandler.UnreadCount)
		r.Post("/mark-read", notificationHandler.MarkRead)
		r.Post("/mark-all-read", notificationHandler.MarkAllRead)
	})

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.With(limiter.Middleware).Post("/login", userHandler.Login)
			r.Post("/logout", userHandler.Logout)
			r.With(auth.RequireSession).Get("/me", userHandler.GetMe)
			r.Post("/password-reset", userHandler.RequestPasswordReset)
			r.Post("/password-reset/confirm", userHandler.ResetPassword)
		})

		r.Route("/submissions", func(r chi.Router) {
			r.Use(auth.RequireSession)
			r.Get("/", submissionHandler.GetAll)
			r.Post("/", submissionHandler.Create)
			r.Get("/mine", submissionHandler.GetMine)
			r.Get("/stats", submissionHandler.Stats)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", submissionHandler.Get)
				r.Put("/", submissionHandler.Update)
				r.Delete("/", submissionHandler.Delete)
				r.Post("/status", submissionHandler.UpdateStatus)
			})
		})

		r.Route("/columns", func(r chi.Router) {
			r.Get("/", columnHandler.GetAll)
			r.Get("/latest", columnHandler.Latest)
			r.With(auth.RequireSession).Post("/", columnHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", columnHandler.Get)
				r.Get("/comments", columnHandler.GetComments)
				r.Post("/comments", columnHandler.AddComment)
			})
		})

		r.Get("/search", searchHandler.Search)
		r.Post("/newsletter", engagementHandler.Subscribe)
		r.Post("/views/{page}", engagementHandler.RecordView)

		// Admin routes; the services enforce the role.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession)
			r.Get("/users", userHandler.GetAll)
			r.Put("/users/{id}/status", userHandler.UpdateStatus)
			r.Get("/activities", activityHandler.GetRecent)
			r.Get("/dashboard", engagementHandler.Dashboard)
			r.Get("/admin/notifications", notificationHandler.AdminList)
		})
	})

	return r
}
