package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fieldroute/backend/internal/http/middleware"
	"github.com/fieldroute/backend/internal/service"
)

type assignmentRequest struct {
	DealerID      int64  `json:"dealer_id" binding:"required"`
	StoreID       int64  `json:"store_id" binding:"required"`
	Type          string `json:"type" binding:"required,oneof=PERMANENT TEMPORARY"`
	FrequencyDays *int   `json:"frequency_days"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	IsActive      *bool  `json:"is_active"`
}

func (h *Handler) assignmentInput(c *gin.Context) (service.AssignmentInput, bool) {
	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "dealer_id, store_id and type (PERMANENT|TEMPORARY) are required", err.Error())
		return service.AssignmentInput{}, false
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "start_date must be YYYY-MM-DD", nil)
		return service.AssignmentInput{}, false
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "end_date must be YYYY-MM-DD", nil)
		return service.AssignmentInput{}, false
	}

	return service.AssignmentInput{
		DealerID:      req.DealerID,
		StoreID:       req.StoreID,
		Type:          req.Type,
		FrequencyDays: req.FrequencyDays,
		StartDate:     startDate,
		EndDate:       endDate,
		IsActive:      req.IsActive,
	}, true
}

// @Summary Create an assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Param request body assignmentRequest true "Assignment payload"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/assignments [post]
func (h *Handler) CreateAssignment(c *gin.Context) {
	in, ok := h.assignmentInput(c)
	if !ok {
		return
	}
	assignment, err := h.Assignments.Create(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "assignment created", "assignment": assignment})
}

func (h *Handler) UpdateAssignment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, ok := h.assignmentInput(c)
	if !ok {
		return
	}
	assignment, err := h.Assignments.Update(c.Request.Context(), id, in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "assignment updated", "assignment": assignment})
}

func (h *Handler) ToggleAssignment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	assignment, err := h.Assignments.ToggleActive(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "assignment toggled", "assignment": assignment})
}

func (h *Handler) AssignmentsList(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	assignments, err := h.Assignments.List(c.Request.Context(), activeOnly)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

func (h *Handler) AssignmentByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	assignment, err := h.Assignments.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

func (h *Handler) AssignmentsByDealer(c *gin.Context) {
	dealerID, ok := pathID(c, "dealerId")
	if !ok {
		return
	}
	assignments, err := h.Assignments.ListByDealer(c.Request.Context(), dealerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

func (h *Handler) AssignmentsByStore(c *gin.Context) {
	storeID, ok := pathID(c, "storeId")
	if !ok {
		return
	}
	assignments, err := h.Assignments.ListByStore(c.Request.Context(), storeID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// MyAssignments lists the caller's own active assignments.
func (h *Handler) MyAssignments(c *gin.Context) {
	assignments, err := h.Assignments.ListByDealer(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// MyAssignmentByID fetches one assignment, rejecting foreign ones.
func (h *Handler) MyAssignmentByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	assignment, err := h.Assignments.GetOwned(c.Request.Context(), middleware.CallerID(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}
