package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	firebase "firebase.google.com/go/v4"
	"github.com/Dias221467/Beer_Rating/internal/auth"
	"github.com/Dias221467/Beer_Rating/internal/config"
	"github.com/Dias221467/Beer_Rating/internal/database"
	"github.com/Dias221467/Beer_Rating/internal/handlers"
	"github.com/Dias221467/Beer_Rating/internal/jobs"
	"github.com/Dias221467/Beer_Rating/internal/metrics"
	"github.com/Dias221467/Beer_Rating/internal/places"
	"github.com/Dias221467/Beer_Rating/internal/repository"
	cron "github.com/Dias221467/Beer_Rating/internal/scheduler"
	"github.com/Dias221467/Beer_Rating/internal/services"
	"github.com/Dias221467/Beer_Rating/pkg/email"
	"github.com/Dias221467/Beer_Rating/pkg/logger"
	"github.com/Dias221467/Beer_Rating/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Load configuration from .env file and the environment
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Firebase backs the realtime database driver and the firebase auth provider
	var app *firebase.App
	if cfg.StoreDriver == "firebase" || cfg.AuthProvider == "firebase" {
		var err error
		app, err = database.NewFirebaseApp(ctx, cfg.Firebase)
		if err != nil {
			log.Fatalf("Firebase initialization error: %v", err)
		}
	}

	db, err := database.OpenStore(ctx, cfg, app)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Error("Failed to close the record store")
		}
	}()

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db.Client)
	friendRepo := repository.NewFriendRepository(db.Client)
	reviewRepo := repository.NewReviewRepository(db.Client)
	accountRepo := repository.NewAccountRepository(db.Client)

	// --- Identity provider ---
	var provider auth.Provider
	switch cfg.AuthProvider {
	case "firebase":
		authClient, err := app.Auth(ctx)
		if err != nil {
			log.Fatalf("Firebase auth initialization error: %v", err)
		}
		provider = auth.NewFirebaseProvider(authClient)
		accountRepo = nil
	default:
		provider = auth.NewLocalProvider(accountRepo, cfg.JWTSecret, cfg.TokenExpiry)
	}

	finder, err := places.NewFinder(cfg.GoogleMapsAPIKey)
	if err != nil {
		log.Fatalf("Places client error: %v", err)
	}

	// --- Services ---
	friendService := services.NewFriendService(friendRepo, userRepo)
	userService := services.NewUserService(userRepo, friendService, provider, email.NewSender(cfg.SMTP))
	reviewService := services.NewReviewService(reviewRepo, friendService)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService)
	friendHandler := handlers.NewFriendHandler(friendService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	streamHandler := handlers.NewRequestStreamHandler(friendService, cfg.AllowedOrigins)
	barsHandler := handlers.NewBarsHandler(finder)
	adminHandler := handlers.NewAdminHandler(friendService)
	healthHandler := &handlers.HealthHandler{Check: func(ctx context.Context) error {
		_, err := db.Get(ctx, "health")
		return err
	}}

	// --- Maintenance ---
	scheduler, err := cron.StartMaintenanceCronJobs(ctx, cfg.SweepSchedule, jobs.NewMaintenance(friendService, accountRepo))
	if err != nil {
		log.Fatalf("Invalid sweep schedule %q: %v", cfg.SweepSchedule, err)
	}
	defer scheduler.Stop()

	router := mux.NewRouter()
	authenticated := middleware.AuthMiddleware(provider)
	lastActive := middleware.UpdateLastActiveMiddleware(userService)

	router.HandleFunc("/healthz", healthHandler.HealthzHandler).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Register User routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes (only authenticated users can access)
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(authenticated, lastActive)
	protectedUserRoutes.HandleFunc("/logout", userHandler.LogoutUserHandler).Methods("POST")
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/me", userHandler.UpdateMeHandler).Methods("PATCH")
	protectedUserRoutes.HandleFunc("", userHandler.DirectoryHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}/reviews", reviewHandler.FriendReviewsHandler).Methods("GET")

	// Friend routes
	protectedFriendRoutes := router.PathPrefix("/friends").Subrouter()
	protectedFriendRoutes.Use(authenticated, lastActive)
	protectedFriendRoutes.HandleFunc("/{id}/request", friendHandler.SendFriendRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("/requests", friendHandler.GetPendingRequestsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/requests/{id}/accept", friendHandler.AcceptFriendRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("/requests/{id}", friendHandler.RejectFriendRequestHandler).Methods("DELETE")
	protectedFriendRoutes.HandleFunc("", friendHandler.GetFriendsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/{id}", friendHandler.RemoveFriendHandler).Methods("DELETE")
	protectedFriendRoutes.HandleFunc("/{id}/mutual", friendHandler.MutualFriendsHandler).Methods("GET")

	// Live pending requests
	wsRoutes := router.PathPrefix("/ws").Subrouter()
	wsRoutes.Use(authenticated)
	wsRoutes.HandleFunc("/requests", streamHandler.PendingRequestsWebSocketHandler)

	// Review routes
	protectedReviewRoutes := router.PathPrefix("/reviews").Subrouter()
	protectedReviewRoutes.Use(authenticated, lastActive)
	protectedReviewRoutes.HandleFunc("", reviewHandler.CreateReviewHandler).Methods("POST")
	protectedReviewRoutes.HandleFunc("", reviewHandler.GetReviewsHandler).Methods("GET")
	protectedReviewRoutes.HandleFunc("/feed", reviewHandler.FeedHandler).Methods("GET")
	protectedReviewRoutes.HandleFunc("/map", reviewHandler.MapHandler).Methods("GET")
	protectedReviewRoutes.HandleFunc("/overview", reviewHandler.OverviewHandler).Methods("GET")
	protectedReviewRoutes.HandleFunc("/bars", reviewHandler.BarsHandler).Methods("GET")
	protectedReviewRoutes.HandleFunc("/{id}", reviewHandler.DeleteReviewHandler).Methods("DELETE")

	// Bar search
	protectedBarRoutes := router.PathPrefix("/bars").Subrouter()
	protectedBarRoutes.Use(authenticated)
	protectedBarRoutes.HandleFunc("/nearby", barsHandler.NearbyBarsHandler).Methods("GET")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(authenticated)
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/maintenance/sweep", adminHandler.SweepRequestsHandler).Methods("POST")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: c.Handler(router),
	}

	go func() {
		<-ctx.Done()
		logger.Log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("Graceful shutdown failed")
		}
	}()

	logger.Log.Infof("Server running on port %s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.WithError(err).Error("Server stopped")
	}
}
