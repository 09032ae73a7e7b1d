// HTTP handlers for the category, user, and summary read endpoints.
package handlers

import (
	"log"
	"net/http"

	"github.com/expensahq/expensa/internal/domain/expense"
)

// CatalogHandler serves the reference-data and aggregate endpoints.
type CatalogHandler struct {
	store  *expense.Store
	logger *log.Logger
}

func NewCatalogHandler(store *expense.Store, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{store: store, logger: logger}
}

func (h *CatalogHandler) facade() *expense.Facade {
	return expense.NewFacade(h.store, expense.NewErrorState(), h.logger)
}

// ListCategories handles GET /api/v1/categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	facade := h.facade()
	items := facade.ListCategories(r.Context())
	writeFacadeData(w, http.StatusOK, items, facade.State())
}

// ListUsers handles GET /api/v1/users.
func (h *CatalogHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	facade := h.facade()
	items := facade.ListUsers(r.Context())
	writeFacadeData(w, http.StatusOK, items, facade.State())
}

// SummarizeByStatus handles GET /api/v1/summary/status.
func (h *CatalogHandler) SummarizeByStatus(w http.ResponseWriter, r *http.Request) {
	facade := h.facade()
	items := facade.SummarizeByStatus(r.Context())
	writeFacadeData(w, http.StatusOK, items, facade.State())
}

// SummarizeByCategory handles GET /api/v1/summary/category.
func (h *CatalogHandler) SummarizeByCategory(w http.ResponseWriter, r *http.Request) {
	facade := h.facade()
	items := facade.SummarizeByCategory(r.Context())
	writeFacadeData(w, http.StatusOK, items, facade.State())
}
