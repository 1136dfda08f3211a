package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CarlosPavajeau/cetus/api/controllers"
	"github.com/CarlosPavajeau/cetus/api/middleware"
	"github.com/CarlosPavajeau/cetus/internal/inventory"
	"github.com/CarlosPavajeau/cetus/internal/orders"
	"github.com/CarlosPavajeau/cetus/pkg/config"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

// Dependencies carries everything the router needs; cmd/api assembles it.
type Dependencies struct {
	Config           *config.Config
	Logger           *logger.Logger
	OrdersService    orders.Service
	InventoryService inventory.Service
	HealthDeps       map[string]controllers.Pinger
	Metrics          prometheus.Gatherer
}

// NewRouter assembles the HTTP surface of the order-processing core.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	logg := deps.Logger

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Get("/healthz", controllers.Healthz(deps.Config, logg, deps.HealthDeps))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.StoreContext(logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(deps.OrdersService, logg))
			r.Get("/", controllers.ListOrders(deps.OrdersService, logg))
			r.Get("/{id}", controllers.OrderDetail(deps.OrdersService, logg))
			r.Post("/{id}/confirm-payment", controllers.ConfirmPayment(deps.OrdersService, logg))
			r.Post("/{id}/cancel", controllers.CancelOrder(deps.OrdersService, logg))
			r.Post("/{id}/deliver", controllers.DeliverOrder(deps.OrdersService, logg))
			r.Patch("/{id}/status", controllers.UpdateOrderStatus(deps.OrdersService, logg))
		})

		r.Route("/variants/{id}", func(r chi.Router) {
			r.Post("/stock-adjustment", controllers.AdjustStock(deps.InventoryService, logg))
			r.Get("/inventory-transactions", controllers.ListInventoryTransactions(deps.InventoryService, logg))
		})
	})

	return r
}
