package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fieldroute/backend/internal/http/middleware"
)

func (h *Handler) NotificationsList(c *gin.Context) {
	notifications, err := h.Store.ListNotifications(c.Request.Context(), middleware.CallerID(c), false)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list notifications", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (h *Handler) UnreadNotifications(c *gin.Context) {
	notifications, err := h.Store.ListNotifications(c.Request.Context(), middleware.CallerID(c), true)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list notifications", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (h *Handler) UnreadNotificationCount(c *gin.Context) {
	count, err := h.Store.CountUnreadNotifications(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to count notifications", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	updated, err := h.Store.MarkNotificationRead(c.Request.Context(), id, middleware.CallerID(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to mark notification", err.Error())
		return
	}
	if !updated {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Notification not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	count, err := h.Store.MarkAllNotificationsRead(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to mark notifications", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notifications marked as read", "count": count})
}
