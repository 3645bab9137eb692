package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/uvify/apiserver/config"
	"github.com/uvify/apiserver/internal/db"
	"github.com/uvify/apiserver/internal/events"
	"github.com/uvify/apiserver/internal/handlers"
	"github.com/uvify/apiserver/internal/live"
	"github.com/uvify/apiserver/internal/logging"
	"github.com/uvify/apiserver/internal/services"
	"github.com/uvify/apiserver/internal/storage"
	"github.com/uvify/apiserver/internal/store"
)

// Server wraps the HTTP server and its long-lived dependencies.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	slog.SetDefault(logging.New(cfg.Env))

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	readingRepo := store.NewReadingRepository(dbConn)

	userService := services.NewUserService(userRepo)
	readingService := services.NewReadingService(readingRepo)

	slot := live.NewSlot()

	publisher, err := events.NewFromConfig(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	images, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		_ = publisher.Close()
		return nil, err
	}
	if images != nil {
		if err := images.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			_ = publisher.Close()
			return nil, err
		}
	}

	authHandler := handlers.NewAuthHandler(userService)
	profileHandler := handlers.NewProfileHandler(userService, images)
	readingHandler := handlers.NewReadingHandler(readingService, slot, publisher, cfg.Ingest.DefaultUserID)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  newOriginPolicy(cfg.CORS).Allow,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Get("/health", handlers.Health)
	router.Post("/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/history", func(r chi.Router) {
		r.Get("/", readingHandler.ListAll)
		r.Route("/{userID}", func(r chi.Router) {
			r.Post("/", readingHandler.CreateForUser)
			r.Get("/", readingHandler.ListForUser)
			r.Delete("/", readingHandler.DeleteForUser)
		})
	})

	router.Route("/profile/{userID}", func(r chi.Router) {
		r.Get("/", profileHandler.GetProfile)
		r.Put("/", profileHandler.UpdateProfile)
		if images != nil {
			r.Post("/image", profileHandler.UploadProfileImage)
			r.Get("/image", profileHandler.GetProfileImage)
		}
	})

	router.Post("/receive-data", readingHandler.ReceiveData)
	router.Get("/latest", readingHandler.Latest)

	port := cfg.ServerPort
	if port == 0 {
		port = 4000
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		publisher:  publisher,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	slog.Info("server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
