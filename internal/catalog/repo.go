package catalog

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type Repo struct{ DB *sqlx.DB }

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	out := []Product{}
	err := r.DB.SelectContext(ctx, &out, `
		SELECT p.product_id, p.name, p.uom_id, p.price_per_unit::float8 AS price_per_unit, u.uom_name
		FROM products p
		INNER JOIN uom u ON u.uom_id = p.uom_id
		ORDER BY p.product_id`)
	if err != nil {
		return nil, errors.Wrap(err, "select products")
	}
	return out, nil
}

// InsertProduct returns the generated product id.
func (r *Repo) InsertProduct(ctx context.Context, p NewProduct) (int64, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin product tx")
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO products (name, uom_id, price_per_unit)
		VALUES ($1, $2, $3)
		RETURNING product_id`, p.Name, p.UOMID, p.PricePerUnit).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "insert product")
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit product")
	}
	return id, nil
}

// DeleteProduct returns the number of rows removed; zero means the id did
// not exist.
func (r *Repo) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin delete tx")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return 0, errors.Wrap(err, "delete product")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected")
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit delete")
	}
	return n, nil
}

func (r *Repo) ListUOMs(ctx context.Context) ([]UOM, error) {
	out := []UOM{}
	if err := r.DB.SelectContext(ctx, &out, `SELECT uom_id, uom_name FROM uom ORDER BY uom_id`); err != nil {
		return nil, errors.Wrap(err, "select uom")
	}
	return out, nil
}
