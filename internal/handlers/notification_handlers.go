package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"pt_studio_backend/internal/models"
	"pt_studio_backend/internal/services"
	"pt_studio_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// NotificationHandler holds the notification service.
type NotificationHandler struct {
	notificationService services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(ns services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

func respondNotificationError(c *gin.Context, err error, action string) {
	utils.LogError(err, action+": Error from notificationService")
	switch {
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrClientNotFound), errors.Is(err, services.ErrClientForSessionNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), err.Error()))
	case errors.Is(err, services.ErrUnknownChannel):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
	case errors.Is(err, services.ErrNoContactInfo):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeBadRequest, err.Error(), err.Error()))
	case errors.Is(err, services.ErrNotificationFailure):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadGateway, utils.ErrCodeInternalServerError, err.Error(), err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Notification dispatch failed.", "Internal error"))
	}
}

// SendSessionReminder dispatches a reminder for the given session over the
// requested channel (email by default).
func (h *NotificationHandler) SendSessionReminder(c *gin.Context) {
	idStr := c.Param("id")
	sessionID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid session ID format.", err.Error()))
		return
	}

	result, err := h.notificationService.SendSessionReminder(c.Request.Context(), sessionID, c.Query("channel"))
	if err != nil {
		respondNotificationError(c, err, "SendSessionReminder")
		return
	}
	c.JSON(http.StatusOK, result)
}

// SendBirthdayGreeting dispatches a birthday message to the given client.
func (h *NotificationHandler) SendBirthdayGreeting(c *gin.Context) {
	idStr := c.Param("id")
	clientID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid client ID format.", err.Error()))
		return
	}

	result, err := h.notificationService.SendBirthdayGreeting(c.Request.Context(), clientID, c.Query("channel"))
	if err != nil {
		respondNotificationError(c, err, "SendBirthdayGreeting")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetBirthdaysToday lists clients whose birthday falls on today's month and
// day.
func (h *NotificationHandler) GetBirthdaysToday(c *gin.Context) {
	clients, err := h.notificationService.BirthdaysToday()
	if err != nil {
		utils.LogError(err, "GetBirthdaysToday: Error from notificationService.BirthdaysToday")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch birthdays.", "Internal error"))
		return
	}

	if clients == nil {
		clients = []models.Client{}
	}
	c.JSON(http.StatusOK, gin.H{"data": clients})
}
