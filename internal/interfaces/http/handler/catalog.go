package handler

import (
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves AM.net events and products
type CatalogHandler struct {
	BaseHandler
	catalog CatalogReader
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog CatalogReader) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Event godoc
// @Summary      Get an AM.net event
// @Tags         catalog
// @Produce      json
// @Param        code path string true "Event code"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /catalog/events/{code} [get]
func (h *CatalogHandler) Event(c *gin.Context) {
	event, err := h.catalog.Event(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, event)
}

// Product godoc
// @Summary      Get an AM.net product
// @Tags         catalog
// @Produce      json
// @Param        code path string true "Product code"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /catalog/products/{code} [get]
func (h *CatalogHandler) Product(c *gin.Context) {
	product, err := h.catalog.Product(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
