package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldroute/backend/internal/models"
)

type storeRequest struct {
	Name      string   `json:"name" binding:"required"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// CreateStore registers a store with a server-generated QR token. The token
// is the check-in entry point; rendering it as an image happens client-side.
func (h *Handler) CreateStore(c *gin.Context) {
	var req storeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "name is required", err.Error())
		return
	}

	store, err := h.Store.InsertStore(c.Request.Context(), models.Store{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		QRCode:    uuid.NewString(),
		IsActive:  true,
		CreatedAt: h.Visits.Now().UTC(),
	})
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create store", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "store created", "store": store})
}

func (h *Handler) StoresList(c *gin.Context) {
	stores, err := h.Store.ListStores(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list stores", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"stores": stores})
}

func (h *Handler) StoreByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	store, err := h.Store.FindStore(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to fetch store", err.Error())
		return
	}
	if store == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Store not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"store": store})
}
