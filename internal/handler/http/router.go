package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// Services bundles the application services the routes call.
type Services struct {
	Catalog       *service.CatalogService
	Cart          *service.CartService
	Wishlist      *service.WishlistService
	Notifications *service.NotificationService
	Checkout      *service.CheckoutService
}

// RouterConfig holds the ambient pieces of the router.
type RouterConfig struct {
	ServiceName string
	Health      *health.Handler
	Metrics     *middleware.HTTPMetrics
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.RateLimiter
	CORS        middleware.CORSConfig
	PprofCIDRs  []string
	// ProductCacheMaxAge is the Cache-Control max-age of product listings in seconds.
	ProductCacheMaxAge int
	Logger             *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	l := cfg.Logger
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(l))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(l))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(l))

	// Health check endpoints
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.LivenessHandler())
		r.Get("/health/ready", cfg.Health.ReadinessHandler())
	}
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	middleware.RegisterPprof(r, cfg.PprofCIDRs, l)

	catalogHandler := NewCatalogHandler(svc.Catalog, l)
	cartHandler := NewCartHandler(svc.Cart, l)
	wishlistHandler := NewWishlistHandler(svc.Wishlist, l)
	notificationHandler := NewNotificationHandler(svc.Notifications, l)
	checkoutHandler := NewCheckoutHandler(svc.Checkout, l)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}
		r.Use(ContentTypeJSON)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/categories", catalogHandler.Categories)
			r.Get("/brands", catalogHandler.Brands)
			r.Get("/deals", catalogHandler.Deals)
			r.Get("/search", catalogHandler.Search)
			r.Get("/home", catalogHandler.Home)
			r.Get("/directory/brands", catalogHandler.BrandDirectory)
			r.Get("/directory/categories", catalogHandler.CategoryOverview)

			r.Route("/categories/{category}", func(r chi.Router) {
				r.With(middleware.CacheControl(cfg.ProductCacheMaxAge)).Get("/products", catalogHandler.Browse)
				r.Post("/products/filters", catalogHandler.ApplyFilter)
				r.Get("/brands/{brand}/products/{slug}", catalogHandler.ProductBySlug)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{productId}", cartHandler.UpdateQuantity)
				r.Delete("/items/{productId}", cartHandler.RemoveItem)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlistHandler.GetWishlist)
				r.Delete("/", wishlistHandler.ClearWishlist)
				r.Post("/items", wishlistHandler.AddItem)
				r.Post("/items/toggle", wishlistHandler.Toggle)
				r.Delete("/items/{productId}", wishlistHandler.RemoveItem)
				r.Post("/items/{productId}/move-to-cart", wishlistHandler.MoveToCart)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.Active)
				r.Delete("/{id}", notificationHandler.Dismiss)
			})

			r.Post("/checkout/summary", checkoutHandler.Summary)
		})
	})

	return r
}
