// Package sales keeps per-day order totals in Redis, fed by OrderCreated
// events.
package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/go-grocery-store/internal/kafka"
	"github.com/ariefcatur/go-grocery-store/internal/orders"
	"github.com/ariefcatur/go-grocery-store/internal/redisx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const DayLayout = "2006-01-02"

type Summary struct {
	Date    string  `json:"date"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// dedupScope namespaces this projection's processed-event markers.
const dedupScope = "sales"

type Service struct {
	Redis *redis.Client
	Log   logrus.FieldLogger
}

// HandleOrderCreated is installed as the consumer handler. Each event id is
// counted at most once.
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.Log.WithError(err).WithField("offset", m.Offset).Warn("skipping undecodable message")
		return nil
	}
	if env.EventType != orders.EventOrderCreated {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
	if err != nil {
		s.Log.WithError(err).WithField("event_id", env.EventID).Warn("skipping event")
		return nil
	}
	ts, err := time.Parse(orders.TimestampLayout, p.Datetime)
	if err != nil {
		s.Log.WithError(err).WithField("event_id", env.EventID).Warn("skipping event with bad datetime")
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, dedupScope, env.EventID)
	fresh, err := s.Redis.SetNX(ctx, dkey, "1", redisx.TTLDedup).Result()
	if err != nil {
		return errors.Wrap(err, "dedup")
	}
	if !fresh {
		return nil
	}

	key := fmt.Sprintf(redisx.KeySalesDaily, ts.Format(DayLayout))
	_, err = s.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, "orders", 1)
		pipe.HIncrByFloat(ctx, key, "revenue", p.TotalCost)
		return nil
	})
	if err != nil {
		// let a redelivery count it
		_ = s.Redis.Del(ctx, dkey).Err()
		return errors.Wrap(err, "record sale")
	}

	s.Log.WithFields(logrus.Fields{"order_id": p.OrderID, "day": ts.Format(DayLayout)}).Debug("sale recorded")
	return nil
}

// Daily returns the totals for day (YYYY-MM-DD). Days without orders are
// zero.
func (s *Service) Daily(ctx context.Context, day string) (Summary, error) {
	out := Summary{Date: day}
	vals, err := s.Redis.HGetAll(ctx, fmt.Sprintf(redisx.KeySalesDaily, day)).Result()
	if err != nil {
		return out, errors.Wrap(err, "read daily sales")
	}
	if v, ok := vals["orders"]; ok {
		if out.Orders, err = strconv.ParseInt(v, 10, 64); err != nil {
			return out, errors.Wrap(err, "parse orders")
		}
	}
	if v, ok := vals["revenue"]; ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return out, errors.Wrap(err, "parse revenue")
		}
		out.Revenue = d.Round(2).InexactFloat64()
	}
	return out, nil
}
