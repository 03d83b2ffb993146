package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kosar/admin-be/internal/api/handlers"
	"github.com/kosar/admin-be/internal/auth"
	"github.com/kosar/admin-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	credentialService services.CredentialServiceProvider,
	accountService services.AccountServiceProvider,
	userService services.UserServiceProvider,
	jwtSecret []byte,
	allowedOrigins []string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(credentialService, jwtSecret)
	dashboardHandler := handlers.NewDashboardHandler(accountService)
	accountHandler := handlers.NewAccountHandler(accountService)
	userHandler := handlers.NewUserHandler(userService, accountService, jwtSecret)

	// Public pages
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/login", authHandler.ShowLogin)
	r.Post("/login", authHandler.Login)

	// Everything else requires a session; requests without one land
	// back on the login page.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(jwtSecret))

		r.Get("/logout", authHandler.Logout)
		r.Get("/dashboard", dashboardHandler.Show)

		r.Route("/account", func(r chi.Router) {
			r.Get("/add", accountHandler.ShowAdd)
			r.Post("/add", accountHandler.Add)
			r.Get("/manage", accountHandler.ShowManage)
			r.Post("/manage", accountHandler.Manage)
			r.Get("/listing", accountHandler.Listing)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Get("/new", userHandler.ShowNew)
				r.Post("/new", userHandler.SubmitNew)
				r.Get("/edit/{id}", userHandler.ShowEdit)
				r.Post("/edit/{id}", userHandler.SubmitEdit)
				r.Post("/confirm", userHandler.Confirm)
				r.Get("/inactivate/{id}", userHandler.ShowInactivate)
				r.Post("/inactivate/{id}", userHandler.Inactivate)
			})
		})

		// Aliases kept from a later revision of the workflow.
		r.Get("/users/manage", userHandler.ShowNew)
		r.Post("/users/manage", userHandler.SubmitNew)
		r.Get("/users/manage/{id}", userHandler.ShowEdit)
		r.Post("/users/manage/{id}", userHandler.SubmitEdit)
	})

	return r
}
