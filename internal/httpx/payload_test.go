package httpx

import (
	"math"
	"testing"

	"github.com/ariefcatur/go-grocery-store/internal/apperr"
	"github.com/ariefcatur/go-grocery-store/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNewProduct_Coercion(t *testing.T) {
	tests := []struct {
		name string
		data string
		want catalog.NewProduct
	}{
		{"native types", `{"name":"Milk","uom_id":2,"price_per_unit":0.99}`, catalog.NewProduct{Name: "Milk", UOMID: 2, PricePerUnit: 0.99}},
		{"numeric strings", `{"name":"Milk","uom_id":" 2 ","price_per_unit":"12.50"}`, catalog.NewProduct{Name: "Milk", UOMID: 2, PricePerUnit: 12.5}},
		{"malformed json", `{"name":7up,"uom_id":2,"price_per_unit":1}`, catalog.NewProduct{}},
		{"number as name", `{"name":1234,"uom_id":2.0,"price_per_unit":1e1}`, catalog.NewProduct{Name: "1234", UOMID: 2, PricePerUnit: 10}},
		{"uom beyond int64", `{"name":"Milk","uom_id":18446744073709551618,"price_per_unit":1}`, catalog.NewProduct{}},
		{"uom beyond serial", `{"name":"Milk","uom_id":"2147483648","price_per_unit":1}`, catalog.NewProduct{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseNewProduct(tt.data)
			if tt.want == (catalog.NewProduct{}) {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("product_id", " 12 ", maxSerial)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	id, err = parseID("order_id", "9223372036854775807", maxBigSerial)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), id)

	for _, v := range []string{"12abc", "18446744073709551617", "9223372036854775808", "-9223372036854775809"} {
		_, err = parseID("order_id", v, maxBigSerial)
		require.Error(t, err, v)
		assert.Equal(t, "order_id", apperr.As(err).Field, v)
	}

	_, err = parseID("product_id", "2147483648", maxSerial)
	assert.Error(t, err)
	id, err = parseID("product_id", "2147483647", maxSerial)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt32), id)
}

func TestParseNewOrder_LineIDOutOfRange(t *testing.T) {
	_, err := parseNewOrder(`{"customer_name":"A","grand_total":1,"order_details":[
		{"product_id":"18446744073709551619","quantity":1,"total_price":1}]}`, fixedNow)

	require.Error(t, err)
	assert.Equal(t, "order_details[0].product_id", apperr.As(err).Field)
}

func TestParseNewOrder_EmptyCustomerName(t *testing.T) {
	in, err := parseNewOrder(`{"customer_name":"","grand_total":1,"order_details":[]}`, fixedNow)

	require.NoError(t, err)
	assert.Equal(t, "", in.CustomerName)
}
