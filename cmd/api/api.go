package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"elshome/docs" //this is required to generate swagger docs
	"elshome/internal/auth"
	"elshome/internal/domain/branches"
	"elshome/internal/domain/roles"
	"elshome/internal/geo"
	"elshome/internal/mailer"
	"elshome/internal/ratelimiter"
	"elshome/internal/refs"
	"elshome/internal/sessioncache"
	"elshome/internal/store"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	roles         roles.Store
	branches      branches.Store
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	geocoder      *geo.Client
	authenticator auth.Authenticator
	sessions      *sessioncache.Cache
	rateLimiter   ratelimiter.Limiter
	refs          *refs.Generator
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	frontendURL string
	adminEmail  string
	auth        authConfig
	mail        mailConfig
	geocoder    geoConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret          string
	refreshSecret   string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type geoConfig struct {
	baseURL string
	apiKey  string
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(app.RateLimiterMiddleware)

	// Session resolution runs first so every later check, the route guard
	// included, sees the same identity. The guard re-evaluates paths on
	// every request; nothing about its decision is cached.
	r.Use(app.SessionMiddleware)
	r.Use(app.RouteGuard)

	r.Get("/login", app.loginPageHandler)

	// Intranet page-data routes. The guard has already gated these by path
	// pattern; handlers still re-check what they need.
	r.Route("/admin", func(r chi.Router) {
		r.Get("/users", app.adminListUsersHandler)
		r.Post("/users", app.adminCreateUserHandler)
		r.Put("/users/{userID}/role", app.adminSetUserRoleHandler)
		r.Get("/contacts", app.adminListContactsHandler)
	})

	r.Route("/employees/mypage", func(r chi.Router) {
		r.Get("/", app.mypageHandler)
	})

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/authentication", func(r chi.Router) {
			r.Use(httprate.LimitByIP(10, time.Minute))
			r.Post("/login", app.loginHandler)
			r.Post("/refresh", app.refreshTokenHandler)
			r.Post("/logout", app.logoutHandler)
			r.Get("/session", app.sessionHandler)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", app.listPostsHandler)
			r.Get("/{postID}", app.getPostHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.RequireAuthenticated)
				r.Post("/", app.createPostHandler)
				r.Patch("/{postID}", app.updatePostHandler)
				r.Delete("/{postID}", app.deletePostHandler)
			})
		})

		r.Route("/documents", func(r chi.Router) {
			r.Use(app.RequireAuthenticated)
			r.Get("/", app.listDocumentsHandler)
			r.Get("/{documentID}", app.getDocumentHandler)
			r.Post("/", app.uploadDocumentHandler)
			r.Delete("/{documentID}", app.deleteDocumentHandler)
		})

		r.Route("/branches", func(r chi.Router) {
			r.Get("/", app.listBranchesHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.RequireAuthenticated)
				r.Post("/", app.createBranchHandler)
				r.Patch("/{branchID}/tags", app.updateBranchTagsHandler)
			})
		})

		r.Get("/geocode", app.geocodeHandler)

		r.Post("/contacts", app.createContactHandler)
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
