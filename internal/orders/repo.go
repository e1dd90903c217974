package orders

import (
	"context"
	"time"

	"github.com/ariefcatur/go-grocery-store/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const (
	insertOrderSQL = `
		INSERT INTO orders (customer_name, total_cost, datetime)
		VALUES ($1, $2, $3)
		RETURNING order_id`
	insertLineSQL = `
		INSERT INTO order_details (order_id, product_id, quantity, total_price)
		VALUES ($1, $2, $3, $4)`
	listOrdersSQL = `
		SELECT order_id, customer_name, total_cost, datetime
		FROM orders
		ORDER BY datetime DESC`
	listLinesSQL = `
		SELECT order_id, product_id, quantity, total_price
		FROM order_details
		WHERE order_id = $1
		ORDER BY product_id`
)

// DB is the slice of *pgxpool.Pool the repository needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Repo struct{ DB DB }

// CreateOrder writes the order and all of its lines in one transaction and
// returns the generated order id. Nothing persists unless every insert
// succeeds.
func (r *Repo) CreateOrder(ctx context.Context, in NewOrder) (int64, error) {
	ts, err := time.Parse(TimestampLayout, in.Timestamp)
	if err != nil {
		return 0, apperr.Invalid("datetime", "expected format YYYY-MM-DD HH:MM:SS")
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "begin order tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var orderID int64
	if err := tx.QueryRow(ctx, insertOrderSQL, in.CustomerName, in.GrandTotal, ts).Scan(&orderID); err != nil {
		return 0, errors.Wrap(err, "insert order")
	}

	if len(in.Lines) > 0 {
		if err := insertLines(ctx, tx, orderID, in.Lines); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errors.Wrap(err, "commit order")
	}
	return orderID, nil
}

func insertLines(ctx context.Context, tx pgx.Tx, orderID int64, lines []LineInput) error {
	b := &pgx.Batch{}
	for _, l := range lines {
		b.Queue(insertLineSQL, orderID, l.ProductID, l.Quantity, l.TotalPrice)
	}

	br := tx.SendBatch(ctx, b)
	for i := range lines {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return errors.Wrapf(err, "insert order line %d", i)
		}
	}
	return errors.Wrap(br.Close(), "close order line batch")
}

// ListOrders returns every order, most recent first.
func (r *Repo) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := r.DB.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		var (
			o  Order
			dt any
		)
		if err := rows.Scan(&o.OrderID, &o.CustomerName, &o.TotalCost, &dt); err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		o.Datetime = FormatTimestamp(dt)
		out = append(out, o)
	}
	return out, errors.Wrap(rows.Err(), "iterate orders")
}

// ListOrderLines returns the lines written with orderID.
func (r *Repo) ListOrderLines(ctx context.Context, orderID int64) ([]OrderLine, error) {
	rows, err := r.DB.Query(ctx, listLinesSQL, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "query order lines")
	}
	defer rows.Close()

	out := make([]OrderLine, 0)
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.OrderID, &l.ProductID, &l.Quantity, &l.TotalPrice); err != nil {
			return nil, errors.Wrap(err, "scan order line")
		}
		out = append(out, l)
	}
	return out, errors.Wrap(rows.Err(), "iterate order lines")
}
