package catalog

type Product struct {
	ProductID    int64   `db:"product_id" json:"product_id"`
	Name         string  `db:"name" json:"name"`
	UOMID        int64   `db:"uom_id" json:"uom_id"`
	PricePerUnit float64 `db:"price_per_unit" json:"price_per_unit"`
	UOMName      string  `db:"uom_name" json:"uom_name"`
}

type NewProduct struct {
	Name         string
	UOMID        int64
	PricePerUnit float64
}

type UOM struct {
	UOMID   int64  `db:"uom_id" json:"uom_id"`
	UOMName string `db:"uom_name" json:"uom_name"`
}
