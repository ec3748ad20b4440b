package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/fieldroute/backend/internal/db"
	"github.com/fieldroute/backend/internal/notify"
	"github.com/fieldroute/backend/internal/service"
)

type Handler struct {
	Store         *db.Store
	Visits        *service.VisitService
	Assignments   *service.AssignmentService
	Notifications *notify.Service
	Validator     *validator.Validate
	Logger        zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// writeServiceError maps the business-error taxonomy onto HTTP statuses with
// stable machine-checkable codes.
func writeServiceError(c *gin.Context, err error) {
	var se *service.Error
	if errors.As(err, &se) {
		status := http.StatusBadRequest
		switch se.Kind {
		case service.KindNotFound:
			status = http.StatusNotFound
		case service.KindConflict:
			status = http.StatusConflict
		case service.KindForbidden:
			status = http.StatusForbidden
		}
		writeError(c, status, string(se.Kind), se.Message, nil)
		return
	}
	writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error", err.Error())
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

func parseID(value string) (int64, error) {
	return strconv.ParseInt(value, 10, 64)
}

// parseDate accepts plain calendar dates ("2006-01-02").
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
