package orders

import (
	"fmt"
	"time"
)

// TimestampLayout is the wire and storage format of an order datetime.
const TimestampLayout = "2006-01-02 15:04:05"

type Order struct {
	OrderID      int64   `json:"order_id"`
	CustomerName string  `json:"customer_name"`
	TotalCost    float64 `json:"total_cost"`
	Datetime     string  `json:"datetime"`
}

type OrderLine struct {
	OrderID    int64   `json:"order_id"`
	ProductID  int64   `json:"product_id"`
	Quantity   float64 `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

// NewOrder is the input of CreateOrder. Timestamp is required.
type NewOrder struct {
	CustomerName string
	GrandTotal   float64
	Timestamp    string
	Lines        []LineInput
}

type LineInput struct {
	ProductID  int64   `json:"product_id"`
	Quantity   float64 `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

// FormatTimestamp renders a datetime column value. Non-temporal values
// fall back to their plain text form.
func FormatTimestamp(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format(TimestampLayout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format(TimestampLayout)
	case []byte:
		return string(t)
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
