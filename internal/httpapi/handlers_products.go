package httpapi

import (
	"encoding/json"
	"net/http"

	"negotiatord/internal/money"
	"negotiatord/internal/negotiation"
)

// HandleCreateProduct adds or replaces a catalogue entry. Admin-key gated.
func (h *Handlers) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	anchor, err := money.New(req.AnchorPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "anchor_price must be finite")
		return
	}
	cost, err := money.New(req.CostPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cost_price must be finite")
		return
	}

	product := negotiation.Product{
		ID:           req.ID,
		Name:         req.Name,
		Category:     req.Category,
		AnchorPrice:  anchor,
		CostPrice:    cost,
		MinMargin:    req.MinMargin,
		TargetMargin: req.TargetMargin,
	}
	if err := product.Validate(); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	products, err := h.catalogue.Load()
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if products == nil {
		products = make(map[string]negotiation.Product)
	}
	products[product.ID] = product

	if err := h.catalogue.Save(products); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// HandleGetProduct returns a single catalogue entry.
func (h *Handlers) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	products, err := h.catalogue.Load()
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	product, ok := products[id]
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// HandleListProducts returns the full catalogue.
func (h *Handlers) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogue.Load()
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	out := make([]negotiation.Product, 0, len(products))
	for _, p := range products {
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}
