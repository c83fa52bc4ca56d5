package handler

import (
	inventoryapp "github.com/erp/inventory/internal/application/inventory"
	locationapp "github.com/erp/inventory/internal/application/location"
	"github.com/gin-gonic/gin"
)

// LocationHandler handles location hierarchy endpoints
type LocationHandler struct {
	BaseHandler
	locationService  *locationapp.LocationService
	inventoryService *inventoryapp.InventoryService
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(locationService *locationapp.LocationService, inventoryService *inventoryapp.InventoryService) *LocationHandler {
	return &LocationHandler{
		locationService:  locationService,
		inventoryService: inventoryService,
	}
}

// Create handles POST /locations
func (h *LocationHandler) Create(c *gin.Context) {
	var req locationapp.CreateLocationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	loc, err := h.locationService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, loc)
}

// GetByID handles GET /locations/:id
func (h *LocationHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	loc, err := h.locationService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loc)
}

// Update handles PUT /locations/:id
func (h *LocationHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req locationapp.UpdateLocationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	loc, err := h.locationService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loc)
}

// Move handles PUT /locations/:id/parent
func (h *LocationHandler) Move(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req locationapp.MoveLocationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	loc, err := h.locationService.Move(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loc)
}

// Delete handles DELETE /locations/:id
func (h *LocationHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.locationService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ValidateParent handles POST /locations/validate-parent
func (h *LocationHandler) ValidateParent(c *gin.Context) {
	var req locationapp.ValidateParentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.locationService.ValidateParent(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ValidationResult{Valid: true})
}

// Tree handles GET /locations/tree
func (h *LocationHandler) Tree(c *gin.Context) {
	tree, err := h.locationService.Tree(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tree)
}

// Ancestors handles GET /locations/:id/ancestors
func (h *LocationHandler) Ancestors(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	locs, err := h.locationService.Ancestors(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, locs)
}

// Descendants handles GET /locations/:id/descendants
func (h *LocationHandler) Descendants(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	locs, err := h.locationService.Descendants(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, locs)
}

// Capacity handles GET /locations/:id/capacity
func (h *LocationHandler) Capacity(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	capacity, err := h.locationService.Capacity(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, capacity)
}

// Items handles GET /locations/:id/items
func (h *LocationHandler) Items(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if _, err := h.locationService.GetByID(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	items, err := h.inventoryService.ListItemsByLocation(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
