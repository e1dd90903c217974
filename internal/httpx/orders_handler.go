package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/ariefcatur/go-grocery-store/internal/apperr"
	kafkax "github.com/ariefcatur/go-grocery-store/internal/kafka"
	"github.com/ariefcatur/go-grocery-store/internal/orders"
	"github.com/ariefcatur/go-grocery-store/internal/sales"
	"github.com/go-chi/chi/v5/middleware"
)

type insertOrderResp struct {
	OrderID int64 `json:"order_id"`
}

// parseNewOrder decodes the order form payload. An absent or empty
// datetime is replaced by now.
func parseNewOrder(data string, now time.Time) (orders.NewOrder, error) {
	var in orders.NewOrder
	if data == "" {
		return in, apperr.Invalid("data", "is required")
	}
	obj, err := decodeObject([]byte(data), "data")
	if err != nil {
		return in, err
	}
	if in.CustomerName, err = obj.requiredText("customer_name"); err != nil {
		return in, err
	}
	if in.GrandTotal, err = obj.float("grand_total"); err != nil {
		return in, err
	}
	ts, _, err := obj.text("datetime")
	if err != nil {
		return in, err
	}
	if strings.TrimSpace(ts) == "" {
		ts = now.Format(orders.TimestampLayout)
	}
	in.Timestamp = ts

	details, err := obj.objects("order_details")
	if err != nil {
		return in, err
	}
	in.Lines = make([]orders.LineInput, 0, len(details))
	for _, d := range details {
		var l orders.LineInput
		if l.ProductID, err = d.int("product_id", maxSerial); err != nil {
			return in, err
		}
		if l.Quantity, err = d.float("quantity"); err != nil {
			return in, err
		}
		if l.TotalPrice, err = d.float("total_price"); err != nil {
			return in, err
		}
		in.Lines = append(in.Lines, l)
	}
	return in, nil
}

func (h *Handler) insertOrder(w http.ResponseWriter, r *http.Request) {
	in, err := parseNewOrder(r.FormValue("data"), h.now())
	if err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	id, err := h.Orders.CreateOrder(ctx, in)
	if err != nil {
		writeError(w, r, h.Log, err, "Failed to insert order")
		return
	}

	h.publishOrderCreated(r, id, in)
	writeJSON(w, http.StatusCreated, insertOrderResp{OrderID: id})
}

// publishOrderCreated never fails the request; the order is already
// committed.
func (h *Handler) publishOrderCreated(r *http.Request, id int64, in orders.NewOrder) {
	if h.Producer == nil {
		return
	}
	traceID := r.Header.Get("X-Request-Id")
	if traceID == "" {
		traceID = middleware.GetReqID(r.Context())
	}
	ev, err := orders.NewOrderCreated(h.Service, traceID, orders.OrderCreatedPayload{
		OrderID:      id,
		CustomerName: in.CustomerName,
		TotalCost:    in.GrandTotal,
		Datetime:     in.Timestamp,
		Lines:        in.Lines,
	})
	if err != nil {
		h.Log.WithError(err).WithField("order_id", id).Error("build order event")
		return
	}
	h.Producer.Publish(
		orders.PartitionKey(id),
		kafkax.MustMarshal(ev),
		kafkax.EventHeaders(ev.EventType, ev.EventVersion)...,
	)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	list, err := h.Orders.ListOrders(ctx)
	if err != nil {
		writeError(w, r, h.Log, err, "Failed to retrieve orders")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) orderDetails(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("order_id", r.URL.Query().Get("order_id"), maxBigSerial)
	if err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	lines, err := h.Orders.ListOrderLines(ctx, id)
	if err != nil {
		writeError(w, r, h.Log, err, "Failed to retrieve order details")
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *Handler) dailySales(w http.ResponseWriter, r *http.Request) {
	day := strings.TrimSpace(r.URL.Query().Get("date"))
	if day == "" {
		day = h.now().Format(sales.DayLayout)
	}
	if _, err := time.Parse(sales.DayLayout, day); err != nil {
		writeError(w, r, h.Log, apperr.Invalid("date", "must be YYYY-MM-DD"), "")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	s, err := h.Sales.Daily(ctx, day)
	if err != nil {
		writeError(w, r, h.Log, &apperr.Error{
			Kind:    apperr.KindUnavailable,
			Message: "sales store is currently unavailable",
			Err:     err,
		}, "")
		return
	}
	writeJSON(w, http.StatusOK, s)
}
