package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/poslogithub/magic-league-generator/internal/api/response"
	"github.com/poslogithub/magic-league-generator/internal/league"
	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

// CatalogHandler handles card lookups.
type CatalogHandler struct {
	service *league.Service
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *league.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// SetInfo returns the rarity counts of a set.
func (h *CatalogHandler) SetInfo(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "set"))
	info := h.service.Catalog().SetInfo(code)
	response.Success(w, map[string]any{
		"info":       info,
		"sealedable": info.Sealedable(),
	})
}

// GetCard returns the printing at a set and collector number.
func (h *CatalogHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "set"))
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		response.BadRequest(w, fmt.Errorf("invalid collector number"))
		return
	}

	found := h.service.Catalog().Query(cards.Filter{Set: code, SetNumber: number})
	if len(found) == 0 {
		writeError(w, fmt.Errorf("%s %d: %w", code, number, cards.ErrCardNotFound))
		return
	}
	response.Success(w, found[len(found)-1])
}
