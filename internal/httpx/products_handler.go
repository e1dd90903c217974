package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-grocery-store/internal/apperr"
	"github.com/ariefcatur/go-grocery-store/internal/catalog"
)

type insertProductResp struct {
	ProductID int64 `json:"product_id"`
}

type deleteProductResp struct {
	Message      string `json:"message"`
	ProductID    int64  `json:"product_id"`
	RowsAffected int64  `json:"rows_affected"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	ps, err := h.Products.ListProducts(ctx)
	if err != nil {
		writeError(w, r, h.Log, err, "Failed to retrieve products")
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *Handler) listUOMs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	us, err := h.Products.ListUOMs(ctx)
	if err != nil {
		writeError(w, r, h.Log, err, "Failed to retrieve UOMs")
		return
	}
	writeJSON(w, http.StatusOK, us)
}

func parseNewProduct(data string) (catalog.NewProduct, error) {
	var p catalog.NewProduct
	if data == "" {
		return p, apperr.Invalid("data", "is required")
	}
	obj, err := decodeObject([]byte(data), "data")
	if err != nil {
		return p, err
	}
	if p.Name, err = obj.requiredText("name"); err != nil {
		return p, err
	}
	if p.UOMID, err = obj.int("uom_id", maxSerial); err != nil {
		return p, err
	}
	if p.PricePerUnit, err = obj.float("price_per_unit"); err != nil {
		return p, err
	}
	return p, nil
}

func (h *Handler) insertProduct(w http.ResponseWriter, r *http.Request) {
	p, err := parseNewProduct(r.FormValue("data"))
	if err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	id, err := h.Products.InsertProduct(ctx, p)
	if err != nil {
		writeError(w, r, h.Log, err, "Failed to insert product")
		return
	}
	writeJSON(w, http.StatusCreated, insertProductResp{ProductID: id})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("product_id", r.FormValue("product_id"), maxSerial)
	if err != nil {
		writeError(w, r, h.Log, err, "")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	n, err := h.Products.DeleteProduct(ctx, id)
	if err != nil {
		writeError(w, r, h.Log, err, "Failed to delete product")
		return
	}
	if n == 0 {
		writeJSON(w, http.StatusNotFound, deleteProductResp{
			Message:   "Product not found or not deleted",
			ProductID: id,
		})
		return
	}
	writeJSON(w, http.StatusOK, deleteProductResp{
		Message:      "Product deleted successfully",
		ProductID:    id,
		RowsAffected: n,
	})
}
