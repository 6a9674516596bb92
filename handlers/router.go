package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kevinaaaquil/novels/middleware"
)

// Routes holds everything the router needs.
type Routes struct {
	Logger    *slog.Logger
	JWTSecret string
	// AuthLimiter guards sign-in, sign-up and the contact form. Nil disables it.
	AuthLimiter *middleware.RateLimiter

	Novels  *NovelsHandler
	Users   *UsersHandler
	Auth    *AuthHandler
	Contact *ContactHandler
	Health  *HealthHandler
}

func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(rt.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.AllowAll())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"welcome to novels."}`))
	})
	r.Get("/health", rt.Health.Health)

	limited := func(r chi.Router) {
		if rt.AuthLimiter != nil {
			r.Use(rt.AuthLimiter.Handler)
		}
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/novels", rt.Novels.List)
		r.Get("/covers/{name}", rt.Novels.Cover)
		r.With(middleware.OptionalAuth(rt.JWTSecret)).Get("/novels/{id}", rt.Novels.Get)

		r.Group(func(r chi.Router) {
			limited(r)
			r.Post("/auth/signup", rt.Auth.Signup)
			r.Post("/auth/signin", rt.Auth.Signin)
			r.Post("/contact", rt.Contact.Submit)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(rt.JWTSecret))
			r.Post("/novels/create", rt.Novels.Create)
			r.Get("/user", rt.Users.Profile)
			r.Get("/user/novels", rt.Users.Novels)
			r.Get("/user/history", rt.Users.History)
		})
	})
	return r
}
