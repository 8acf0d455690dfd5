package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/secondserve/secondserve-backend/api/controllers"
	"github.com/secondserve/secondserve-backend/api/middleware"
	cartsvc "github.com/secondserve/secondserve-backend/internal/cart"
	"github.com/secondserve/secondserve-backend/internal/catalog"
	"github.com/secondserve/secondserve-backend/internal/ledger"
	userssvc "github.com/secondserve/secondserve-backend/internal/users"
	"github.com/secondserve/secondserve-backend/pkg/config"
	"github.com/secondserve/secondserve-backend/pkg/db"
	"github.com/secondserve/secondserve-backend/pkg/logger"
	"github.com/secondserve/secondserve-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	catalogService catalog.Service,
	cartService cartsvc.Service,
	usersService userssvc.Service,
	ledgerService ledger.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg, logg))
		r.Get("/ready", readyHandler(dbP, redisClient, logg))
	})

	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.UserContext(logg))
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Route("/listings", func(r chi.Router) {
			r.Get("/", controllers.ListingsBrowse(catalogService, logg))
			r.Post("/", controllers.ListingsSubmit(catalogService, logg))
			r.Get("/mine", controllers.ListingsMine(catalogService, logg))
			r.Get("/{listingId}", controllers.ListingsGet(catalogService, logg))
			r.Post("/{listingId}/approve", controllers.ListingsApprove(catalogService, logg))
			r.Post("/{listingId}/reject", controllers.ListingsReject(catalogService, logg))
			r.Post("/{listingId}/complete", controllers.ListingsComplete(catalogService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Delete("/items/{listingId}", controllers.CartRemoveItem(cartService, logg))
		})
		r.Post("/checkout", controllers.CartCheckout(cartService, logg))

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", controllers.UsersMe(usersService, logg))
			r.Patch("/", controllers.UsersUpdateProfile(usersService, logg))
			r.Put("/preferences", controllers.UsersUpdatePreferences(usersService, logg))
			r.Put("/privacy", controllers.UsersUpdatePrivacy(usersService, logg))
			r.Get("/points", controllers.UsersPoints(ledgerService, logg))
		})
	})

	return r
}

// readyHandler avoids handing a typed nil redis client to the
// readiness check when caching is disabled.
func readyHandler(dbP db.Pinger, redisClient *redis.Client, logg *logger.Logger) http.HandlerFunc {
	if redisClient == nil {
		return controllers.HealthReady(dbP, nil, logg)
	}
	return controllers.HealthReady(dbP, redisClient, logg)
}
