package handler

import (
	"context"
	"net/http"

	inventoryapp "github.com/erp/inventory/internal/application/inventory"
	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ItemHandler handles inventory item endpoints
type ItemHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(inventoryService *inventoryapp.InventoryService) *ItemHandler {
	return &ItemHandler{inventoryService: inventoryService}
}

// ItemsByLocationQuery selects the items stored at a location
type ItemsByLocationQuery struct {
	LocationID string `form:"location_id" binding:"required,uuid"`
}

// Create handles POST /items
func (h *ItemHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.CreateItem(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	setETag(c, item.ETag)
	h.Created(c, item)
}

// GetByID handles GET /items/:id. A matching If-None-Match yields 304.
func (h *ItemHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	item, err := h.inventoryService.GetItem(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	setETag(c, item.ETag)
	if tag := c.GetHeader(HeaderIfNoneMatch); tag != "" && inventory.Matches(tag, item.ETag) {
		c.Status(http.StatusNotModified)
		return
	}
	h.Success(c, item)
}

// GetByBarcode handles GET /items/by-barcode/:code
func (h *ItemHandler) GetByBarcode(c *gin.Context) {
	item, err := h.inventoryService.GetItemByBarcode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	setETag(c, item.ETag)
	h.Success(c, item)
}

// ListByLocation handles GET /items?location_id=
func (h *ItemHandler) ListByLocation(c *gin.Context) {
	var query ItemsByLocationQuery
	if !h.bindQuery(c, &query) {
		return
	}

	items, err := h.inventoryService.ListItemsByLocation(c.Request.Context(), uuid.MustParse(query.LocationID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Update handles PUT /items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.UpdateItem(c.Request.Context(), id, req, ifMatch(c))
	if err != nil {
		h.HandleConditionalError(c, err)
		return
	}
	setETag(c, item.ETag)
	h.Success(c, item)
}

// Adjust handles POST /items/:id/adjust
func (h *ItemHandler) Adjust(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req inventoryapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.AdjustStock(c.Request.Context(), id, req, ifMatch(c), actor)
	if err != nil {
		h.HandleConditionalError(c, err)
		return
	}
	setETag(c, item.ETag)
	h.Success(c, item)
}

// Deactivate handles POST /items/:id/deactivate
func (h *ItemHandler) Deactivate(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	item, err := h.inventoryService.DeactivateItem(c.Request.Context(), id, ifMatch(c))
	if err != nil {
		h.HandleConditionalError(c, err)
		return
	}
	setETag(c, item.ETag)
	h.Success(c, item)
}

// Reserve handles POST /items/:id/reserve
func (h *ItemHandler) Reserve(c *gin.Context) {
	h.changeReservation(c, h.inventoryService.ReserveStock)
}

// Release handles POST /items/:id/release
func (h *ItemHandler) Release(c *gin.Context) {
	h.changeReservation(c, h.inventoryService.ReleaseStock)
}

type reservationFunc func(ctx context.Context, itemID uuid.UUID, quantity int64, suppliedTag string) (*inventoryapp.ItemResponse, error)

func (h *ItemHandler) changeReservation(c *gin.Context, change reservationFunc) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.ReserveStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := change(c.Request.Context(), id, req.Quantity, ifMatch(c))
	if err != nil {
		h.HandleConditionalError(c, err)
		return
	}
	setETag(c, item.ETag)
	h.Success(c, item)
}

// ReorderPoint handles GET /items/:id/reorder-point
func (h *ItemHandler) ReorderPoint(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	point, err := h.inventoryService.ReorderPoint(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, point)
}
