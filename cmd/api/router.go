package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/gameshots/uploader/internal/health"
	"github.com/gameshots/uploader/internal/listing"
	appMiddleware "github.com/gameshots/uploader/internal/middleware"
	"github.com/gameshots/uploader/internal/upload"
	"github.com/gameshots/uploader/internal/web"

	_ "github.com/gameshots/uploader/docs/swagger"
)

type routes struct {
	health  *health.Handler
	upload  *upload.Handler
	listing *listing.Handler
	grants  bool // mount the ledger listing
	swagger bool
}

func newRouter(corsOrigins []string, h routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health.Check)

	if h.swagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload-url", h.upload.CreateUploadURL)
		r.Get("/uploads", h.listing.ListUploads)
		if h.grants {
			r.Get("/upload-grants", h.upload.ListGrants)
		}
	})

	r.Handle("/*", http.FileServerFS(web.Files))
	return r
}
