package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-grocery-store/internal/catalog"
	kafkax "github.com/ariefcatur/go-grocery-store/internal/kafka"
	"github.com/ariefcatur/go-grocery-store/internal/orders"
	"github.com/ariefcatur/go-grocery-store/internal/sales"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type ProductStore interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	InsertProduct(ctx context.Context, p catalog.NewProduct) (int64, error)
	DeleteProduct(ctx context.Context, id int64) (int64, error)
	ListUOMs(ctx context.Context) ([]catalog.UOM, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, in orders.NewOrder) (int64, error)
	ListOrders(ctx context.Context) ([]orders.Order, error)
	ListOrderLines(ctx context.Context, orderID int64) ([]orders.OrderLine, error)
}

type SalesReader interface {
	Daily(ctx context.Context, day string) (sales.Summary, error)
}

type Handler struct {
	Products ProductStore
	Orders   OrderStore
	Sales    SalesReader
	DB       Checker
	Producer kafkax.Publisher
	Service  string
	Log      logrus.FieldLogger
	Timeout  time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(RequireDB(h.DB, h.Log))
		r.Get("/getProducts", h.listProducts)
		r.Get("/getUOM", h.listUOMs)
		r.Post("/insertProduct", h.insertProduct)
		r.Post("/deleteProduct", h.deleteProduct)
		r.Post("/insertOrder", h.insertOrder)
		r.Get("/getAllOrders", h.listOrders)
		r.Get("/getOrderDetails", h.orderDetails)
	})
	r.Get("/getDailySales", h.dailySales)
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.Timeout)
}
