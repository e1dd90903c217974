package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ariefcatur/go-grocery-store/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeRow struct {
	id  int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.id
	return nil
}

type fakeBatchResults struct {
	pgx.BatchResults
	failAt int
	err    error
	execs  int
	closed bool
}

func (b *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	b.execs++
	if b.execs == b.failAt {
		return pgconn.CommandTag{}, b.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (b *fakeBatchResults) Close() error {
	b.closed = true
	return nil
}

type fakeTx struct {
	pgx.Tx
	row       fakeRow
	results   *fakeBatchResults
	commitErr error

	orderArgs  []any
	sent       *pgx.Batch
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	tx.orderArgs = args
	return tx.row
}

func (tx *fakeTx) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	tx.sent = b
	return tx.results
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.commitErr != nil {
		return tx.commitErr
	}
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.committed {
		return pgx.ErrTxClosed
	}
	tx.rolledBack = true
	return nil
}

type fakeRows struct {
	pgx.Rows
	data   [][]any
	i      int
	err    error
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	for j, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = row[j].(int64)
		case *string:
			*p = row[j].(string)
		case *float64:
			*p = row[j].(float64)
		case *any:
			*p = row[j]
		}
	}
	return nil
}

func (r *fakeRows) Err() error { return r.err }
func (r *fakeRows) Close()     { r.closed = true }

type fakeDB struct {
	tx       *fakeTx
	beginErr error
	began    bool

	rows     *fakeRows
	queryErr error
	args     []any
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	db.began = true
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	return db.tx, nil
}

func (db *fakeDB) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	db.args = args
	if db.queryErr != nil {
		return nil, db.queryErr
	}
	return db.rows, nil
}

func aliceOrder() NewOrder {
	return NewOrder{
		CustomerName: "Alice",
		GrandTotal:   45.50,
		Timestamp:    "2024-03-01 09:00:00",
		Lines: []LineInput{
			{ProductID: 7, Quantity: 2, TotalPrice: 20.0},
			{ProductID: 3, Quantity: 1, TotalPrice: 25.5},
		},
	}
}

// --- CreateOrder ---

func TestCreateOrder_WritesOrderAndLines(t *testing.T) {
	tx := &fakeTx{row: fakeRow{id: 42}, results: &fakeBatchResults{}}
	repo := &Repo{DB: &fakeDB{tx: tx}}

	id, err := repo.CreateOrder(context.Background(), aliceOrder())

	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)

	require.Len(t, tx.orderArgs, 3)
	assert.Equal(t, "Alice", tx.orderArgs[0])
	assert.Equal(t, 45.5, tx.orderArgs[1])
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), tx.orderArgs[2])

	require.NotNil(t, tx.sent)
	require.Equal(t, 2, tx.sent.Len())
	for _, q := range tx.sent.QueuedQueries {
		assert.Equal(t, int64(42), q.Arguments[0], "line must reference its parent order")
	}
	assert.Equal(t, int64(7), tx.sent.QueuedQueries[0].Arguments[1])
	assert.Equal(t, 25.5, tx.sent.QueuedQueries[1].Arguments[3])
	assert.Equal(t, 2, tx.results.execs)
	assert.True(t, tx.results.closed)
}

func TestCreateOrder_EmptyLinesSkipsBatch(t *testing.T) {
	tx := &fakeTx{row: fakeRow{id: 5}, results: &fakeBatchResults{}}
	repo := &Repo{DB: &fakeDB{tx: tx}}

	in := aliceOrder()
	in.Lines = nil
	id, err := repo.CreateOrder(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.Nil(t, tx.sent)
	assert.True(t, tx.committed)
}

func TestCreateOrder_LineFailureRollsBackEverything(t *testing.T) {
	injected := errors.New("insert or update on table \"order_details\" violates foreign key constraint")
	tx := &fakeTx{row: fakeRow{id: 9}, results: &fakeBatchResults{failAt: 2, err: injected}}
	repo := &Repo{DB: &fakeDB{tx: tx}}

	in := aliceOrder()
	in.Lines = append(in.Lines, LineInput{ProductID: 1, Quantity: 1, TotalPrice: 1})
	id, err := repo.CreateOrder(context.Background(), in)

	require.Error(t, err)
	assert.ErrorIs(t, err, injected)
	assert.Zero(t, id)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
	assert.True(t, tx.results.closed)
	assert.Equal(t, 2, tx.results.execs)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestCreateOrder_OrderInsertFailure(t *testing.T) {
	injected := errors.New("connection reset")
	tx := &fakeTx{row: fakeRow{err: injected}, results: &fakeBatchResults{}}
	repo := &Repo{DB: &fakeDB{tx: tx}}

	_, err := repo.CreateOrder(context.Background(), aliceOrder())

	assert.ErrorIs(t, err, injected)
	assert.Nil(t, tx.sent)
	assert.True(t, tx.rolledBack)
}

func TestCreateOrder_CommitFailure(t *testing.T) {
	injected := errors.New("commit failed")
	tx := &fakeTx{row: fakeRow{id: 1}, results: &fakeBatchResults{}, commitErr: injected}
	repo := &Repo{DB: &fakeDB{tx: tx}}

	_, err := repo.CreateOrder(context.Background(), aliceOrder())

	assert.ErrorIs(t, err, injected)
	assert.True(t, tx.rolledBack)
}

func TestCreateOrder_BeginFailure(t *testing.T) {
	injected := errors.New("pool closed")
	repo := &Repo{DB: &fakeDB{beginErr: injected}}

	_, err := repo.CreateOrder(context.Background(), aliceOrder())

	assert.ErrorIs(t, err, injected)
}

func TestCreateOrder_InvalidTimestamp(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	repo := &Repo{DB: db}

	in := aliceOrder()
	in.Timestamp = "01/03/2024 9am"
	_, err := repo.CreateOrder(context.Background(), in)

	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	assert.Equal(t, "datetime", apperr.As(err).Field)
	assert.False(t, db.began)
}

// --- ListOrders ---

func TestListOrders_FormatsTimestamps(t *testing.T) {
	rows := &fakeRows{data: [][]any{
		{int64(2), "Bob", 12.0, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{int64(1), "Alice", 45.5, "2023-12-31"},
	}}
	repo := &Repo{DB: &fakeDB{rows: rows}}

	got, err := repo.ListOrders(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []Order{
		{OrderID: 2, CustomerName: "Bob", TotalCost: 12.0, Datetime: "2024-01-15 10:30:00"},
		{OrderID: 1, CustomerName: "Alice", TotalCost: 45.5, Datetime: "2023-12-31"},
	}, got)
	assert.True(t, rows.closed)
}

func TestListOrders_EmptyIsNotNil(t *testing.T) {
	repo := &Repo{DB: &fakeDB{rows: &fakeRows{}}}

	got, err := repo.ListOrders(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListOrders_RowsError(t *testing.T) {
	injected := errors.New("lost connection")
	rows := &fakeRows{err: injected}
	repo := &Repo{DB: &fakeDB{rows: rows}}

	_, err := repo.ListOrders(context.Background())

	assert.ErrorIs(t, err, injected)
	assert.True(t, rows.closed)
}

func TestListOrders_QueryError(t *testing.T) {
	injected := errors.New("relation \"orders\" does not exist")
	repo := &Repo{DB: &fakeDB{queryErr: injected}}

	_, err := repo.ListOrders(context.Background())

	assert.ErrorIs(t, err, injected)
}

func TestListOrderLines(t *testing.T) {
	rows := &fakeRows{data: [][]any{
		{int64(4), int64(7), 2.0, 20.0},
	}}
	db := &fakeDB{rows: rows}
	repo := &Repo{DB: db}

	got, err := repo.ListOrderLines(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, []any{int64(4)}, db.args)
	assert.Equal(t, []OrderLine{{OrderID: 4, ProductID: 7, Quantity: 2, TotalPrice: 20}}, got)
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	var nilTime *time.Time

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"time", ts, "2024-01-15 10:30:00"},
		{"time pointer", &ts, "2024-01-15 10:30:00"},
		{"nil time pointer", nilTime, ""},
		{"bytes", []byte("2024-01-15"), "2024-01-15"},
		{"string", "yesterday", "yesterday"},
		{"number", 20240115, "20240115"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.in))
		})
	}
}
