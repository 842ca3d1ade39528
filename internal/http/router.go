package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/attar/internal/auth"
	"github.com/MrJamesThe3rd/attar/internal/http/catalog"
	"github.com/MrJamesThe3rd/attar/internal/http/customer"
	"github.com/MrJamesThe3rd/attar/internal/http/ingest"
	"github.com/MrJamesThe3rd/attar/internal/http/transaction"
)

type Options struct {
	Signer         *auth.Signer
	AllowedOrigins []string
}

func New(
	opts Options,
	transactionsV1 *transaction.Handler,
	ingestV1 *ingest.Handler,
	catalogV1 *catalog.Handler,
	customersV1 *customer.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", transactionsV1.Routes)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(opts.Signer))

			r.Route("/sync", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				ingestV1.Routes(r)
			})

			r.Route("/catalog", catalogV1.Routes)
			r.Route("/customers", customersV1.Routes)
		})
	})

	return router
}
