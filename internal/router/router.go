package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/thetechguyfromvietnam/lolibub/internal/config"
	"github.com/thetechguyfromvietnam/lolibub/internal/handler"
	"github.com/thetechguyfromvietnam/lolibub/internal/menu"
	"github.com/thetechguyfromvietnam/lolibub/internal/notify"
	"github.com/thetechguyfromvietnam/lolibub/internal/storage"
	"github.com/thetechguyfromvietnam/lolibub/internal/ws"
)

// New creates a Chi router with all storefront routes wired up. Routes are
// mounted at the root and under /api for parity with the hosted frontend.
func New(cfg *config.Config, provider *menu.Provider, fanout *notify.Fanout, proofs *storage.UploadStore, orders *storage.OrderLog, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration: public storefront, any origin may browse and order
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	menuHandler := handler.NewMenuHandler(provider)
	orderHandler := handler.NewOrderHandler(fanout, proofs, orders)

	mount := func(r chi.Router) {
		r.Route("/menu", menuHandler.RegisterRoutes)
		r.Route("/orders", orderHandler.RegisterRoutes)
	}
	mount(r)
	r.Route("/api", mount)

	// Live order feed for the merchant dashboard (disabled without a key)
	if cfg.FeedKey != "" {
		r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWS(hub, cfg.FeedKey, w, r)
		})
	}

	log.Println("Router initialized with all handlers")
	return r
}
