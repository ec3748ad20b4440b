package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fieldroute/backend/internal/http/middleware"
	"github.com/fieldroute/backend/internal/service"
)

type qrCheckInRequest struct {
	QRCode    string   `json:"qr_code" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// @Summary Check in at a store by QR code
// @Tags visits
// @Accept json
// @Produce json
// @Param request body qrCheckInRequest true "QR check-in payload"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/visits/check-in/qr [post]
func (h *Handler) CheckInByQR(c *gin.Context) {
	var req qrCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "qr_code, latitude and longitude are required", err.Error())
		return
	}

	visit, err := h.Visits.CheckInByQR(c.Request.Context(),
		middleware.CallerID(c), middleware.CallerRole(c),
		req.QRCode, *req.Latitude, *req.Longitude)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "check-in successful", "visit": visit})
}

type completeVisitRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Notes     string   `json:"notes"`
}

func (h *Handler) CompleteVisit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req completeVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "latitude and longitude are required", err.Error())
		return
	}

	visit, err := h.Visits.CompleteVisit(c.Request.Context(), middleware.CallerID(c), id, *req.Latitude, *req.Longitude, req.Notes)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "visit completed", "visit": visit})
}

type skipVisitRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) SkipVisit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req skipVisitRequest
	_ = c.ShouldBindJSON(&req)

	visit, err := h.Visits.SkipVisit(c.Request.Context(), middleware.CallerID(c), id, req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "visit skipped", "visit": visit})
}

// TodayVisits materializes and returns the caller's schedule for today.
func (h *Handler) TodayVisits(c *gin.Context) {
	visits, err := h.Visits.MaterializeTodaysVisits(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

func (h *Handler) OpenVisits(c *gin.Context) {
	visits, err := h.Visits.OpenVisits(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

func (h *Handler) VisitByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	visit, err := h.Visits.GetVisit(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visit": visit})
}

// VisitsByDealerOnly lists every active visit of one dealer for the admin
// panel.
func (h *Handler) VisitsByDealerOnly(c *gin.Context) {
	dealerID, ok := pathID(c, "dealerId")
	if !ok {
		return
	}
	visits, err := h.Visits.FilterVisits(c.Request.Context(), service.VisitFilter{DealerID: &dealerID})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

func (h *Handler) VisitsByDealerAndDate(c *gin.Context) {
	dealerID, ok := pathID(c, "dealerId")
	if !ok {
		return
	}
	date, err := parseDate(c.Param("date"))
	if err != nil || date == nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "date must be YYYY-MM-DD", nil)
		return
	}
	visits, err := h.Visits.VisitsByDealerAndDate(c.Request.Context(), dealerID, *date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

func (h *Handler) VisitsByStoreAndDate(c *gin.Context) {
	storeID, ok := pathID(c, "storeId")
	if !ok {
		return
	}
	date, err := parseDate(c.Param("date"))
	if err != nil || date == nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "date must be YYYY-MM-DD", nil)
		return
	}
	visits, err := h.Visits.VisitsByStoreAndDate(c.Request.Context(), storeID, *date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

func (h *Handler) FilterVisits(c *gin.Context) {
	var filter service.VisitFilter

	if v := c.Query("dealer_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid dealer_id", nil)
			return
		}
		filter.DealerID = &id
	}
	if v := c.Query("store_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid store_id", nil)
			return
		}
		filter.StoreID = &id
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	var err error
	if filter.StartDate, err = parseDate(c.Query("start_date")); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "start_date must be YYYY-MM-DD", nil)
		return
	}
	if filter.EndDate, err = parseDate(c.Query("end_date")); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "end_date must be YYYY-MM-DD", nil)
		return
	}

	visits, err := h.Visits.FilterVisits(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

type manualVisitRequest struct {
	DealerID      int64  `json:"dealer_id" binding:"required"`
	StoreID       int64  `json:"store_id" binding:"required"`
	AssignmentID  *int64 `json:"assignment_id"`
	Status        string `json:"status" binding:"required"`
	Origin        string `json:"origin"`
	VisitDate     string `json:"visit_date"`
	ScheduledDate string `json:"scheduled_date"`
	Notes         string `json:"notes"`
}

func (h *Handler) CreateManualVisit(c *gin.Context) {
	var req manualVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "dealer_id, store_id and status are required", err.Error())
		return
	}

	visitDate, err := parseDate(req.VisitDate)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "visit_date must be YYYY-MM-DD", nil)
		return
	}
	scheduledDate, err := parseDate(req.ScheduledDate)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "scheduled_date must be YYYY-MM-DD", nil)
		return
	}

	visit, err := h.Visits.CreateManualVisit(c.Request.Context(), service.ManualVisitInput{
		DealerID:      req.DealerID,
		StoreID:       req.StoreID,
		AssignmentID:  req.AssignmentID,
		Status:        req.Status,
		Origin:        req.Origin,
		VisitDate:     visitDate,
		ScheduledDate: scheduledDate,
		Notes:         req.Notes,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "visit created", "visit": visit})
}

type updateVisitRequest struct {
	Status      *string    `json:"status"`
	VisitDate   string     `json:"visit_date"`
	CheckInAt   *time.Time `json:"check_in_at"`
	CheckOutAt  *time.Time `json:"check_out_at"`
	CheckInLat  *float64   `json:"check_in_lat"`
	CheckInLng  *float64   `json:"check_in_lng"`
	CheckOutLat *float64   `json:"check_out_lat"`
	CheckOutLng *float64   `json:"check_out_lng"`
	Notes       *string    `json:"notes"`
	IsActive    *bool      `json:"is_active"`
}

// UpdateVisit is the admin force-update outside the state machine.
func (h *Handler) UpdateVisit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid payload", err.Error())
		return
	}

	visitDate, err := parseDate(req.VisitDate)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "visit_date must be YYYY-MM-DD", nil)
		return
	}

	visit, err := h.Visits.AdminUpdateVisit(c.Request.Context(), id, service.VisitUpdateInput{
		Status:      req.Status,
		VisitDate:   visitDate,
		CheckInAt:   req.CheckInAt,
		CheckOutAt:  req.CheckOutAt,
		CheckInLat:  req.CheckInLat,
		CheckInLng:  req.CheckInLng,
		CheckOutLat: req.CheckOutLat,
		CheckOutLng: req.CheckOutLng,
		Notes:       req.Notes,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "visit updated", "visit": visit})
}
