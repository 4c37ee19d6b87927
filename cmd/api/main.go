//	@title			Image Derivative API
//	@version		1.0
//	@description	Accepts one uploaded image and stores resized WebP derivatives in S3-compatible object storage.
//
//	@host		localhost:5000
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token, required only when JWT_SECRET is set. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/radif/imageproc/internal/config"
	appMiddleware "github.com/radif/imageproc/internal/middleware"
	"github.com/radif/imageproc/internal/response"
	"github.com/radif/imageproc/internal/storage"
	"github.com/radif/imageproc/internal/transform"
	"github.com/radif/imageproc/internal/upload"

	_ "github.com/radif/imageproc/docs/swagger"
)

func main() {
	cfg := config.Load()

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := storage.NewMinioStorage(initCtx, storage.Options{
		Endpoint:     cfg.StorageEndpoint,
		Region:       cfg.StorageRegion,
		AccessKey:    cfg.StorageAccessKey,
		SecretKey:    cfg.StorageSecretKey,
		Bucket:       cfg.StorageBucket,
		PublicBase:   cfg.StoragePublicBase,
		UseSSL:       cfg.StorageUseSSL,
		EnsureBucket: cfg.StorageEnsureBucket,
	})
	cancelInit()
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// Wire dependencies: storage + encoder → service → handler
	encoder := transform.NewEncoder(cfg.WebPQuality, cfg.WebPMethod)
	profiles := upload.DefaultProfiles()
	uploadSvc := upload.NewService(store, encoder, profiles, cfg.StoreTimeout)
	uploadHandler := upload.NewHandler(uploadSvc, cfg.MaxUploadBytes)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "unknown endpoint")
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger UI — available at http://localhost:5000/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Get("/profiles", uploadHandler.ListProfiles)

	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
		for _, name := range profiles.Names() {
			r.Post("/"+name, uploadHandler.Resized(name))
		}
		r.Post("/upload", uploadHandler.Original)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s, bucket=%s, webp q=%d m=%d, auth=%t)",
			cfg.Port, cfg.AppEnv, cfg.StorageBucket, encoder.Quality(), encoder.Method(), cfg.AuthEnabled())
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
