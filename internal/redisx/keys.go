package redisx

import "time"

const (
	// dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// hash sales:daily:{YYYY-MM-DD} -> orders, revenue
	KeySalesDaily = "sales:daily:%s"
)

var TTLDedup = 48 * time.Hour
