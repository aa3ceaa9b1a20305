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

// SessionHandler holds the session scheduler service.
type SessionHandler struct {
	sessionService services.SessionService
	clientService  services.ClientService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(ss services.SessionService, cs services.ClientService) *SessionHandler {
	return &SessionHandler{sessionService: ss, clientService: cs}
}

func respondSessionError(c *gin.Context, err error, action string) {
	utils.LogError(err, action+": Error from sessionService")
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Session not found.", err.Error()))
	case errors.Is(err, services.ErrNoSessionsRemaining):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
	case errors.Is(err, services.ErrSessionValidation), errors.Is(err, services.ErrSessionStatusTransition):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
	case errors.Is(err, services.ErrClientForSessionNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Session operation failed.", "Internal error"))
	}
}

// ScheduleSession handles booking a new session, charging the client's
// balance atomically.
func (h *SessionHandler) ScheduleSession(c *gin.Context) {
	var req services.ScheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ScheduleSession: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	session, err := h.sessionService.ScheduleSession(req)
	if err != nil {
		respondSessionError(c, err, "ScheduleSession")
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetSessions handles fetching sessions with pagination and filters.
func (h *SessionHandler) GetSessions(c *gin.Context) {
	var filters models.SessionFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid query parameters: "+err.Error(), err.Error()))
		return
	}
	if filters.Status != nil && !models.IsValidSessionStatus(*filters.Status) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid status value.", "status: "+*filters.Status))
		return
	}

	sessions, totalCount, err := h.sessionService.GetSessions(filters)
	if err != nil {
		utils.LogError(err, "GetSessions: Error from sessionService.GetSessions")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch sessions.", "Internal error"))
		return
	}

	if sessions == nil {
		sessions = []models.Session{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      sessions,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetSessionByID handles fetching a single session.
func (h *SessionHandler) GetSessionByID(c *gin.Context) {
	idStr := c.Param("id")
	sessionID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid session ID format.", err.Error()))
		return
	}

	session, err := h.sessionService.GetSessionByID(sessionID)
	if err != nil {
		respondSessionError(c, err, "GetSessionByID")
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateSession handles editing a session. Status transitions are validated;
// the client balance is never touched here.
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	idStr := c.Param("id")
	sessionID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid session ID format.", err.Error()))
		return
	}

	var req services.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateSession: Failed to bind JSON for ID "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	session, err := h.sessionService.UpdateSession(sessionID, req)
	if err != nil {
		respondSessionError(c, err, "UpdateSession")
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession handles removing a booking and refunding one session to the
// client's balance.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	idStr := c.Param("id")
	sessionID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid session ID format.", err.Error()))
		return
	}

	if err := h.sessionService.DeleteSession(sessionID); err != nil {
		respondSessionError(c, err, "DeleteSession")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

// CompleteSession marks a session completed.
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	h.transition(c, h.sessionService.CompleteSession, "CompleteSession")
}

// CancelSession marks a session cancelled. No refund; deleting the session is
// the refund path.
func (h *SessionHandler) CancelSession(c *gin.Context) {
	h.transition(c, h.sessionService.CancelSession, "CancelSession")
}

func (h *SessionHandler) transition(c *gin.Context, op func(int64) (*models.Session, error), action string) {
	idStr := c.Param("id")
	sessionID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid session ID format.", err.Error()))
		return
	}

	session, err := op(sessionID)
	if err != nil {
		respondSessionError(c, err, action)
		return
	}
	c.JSON(http.StatusOK, session)
}

// MatchSlot resolves a calendar cell (date + display time such as "5:00 PM")
// to the booking occupying it. An empty slot returns 200 with a null body so
// the calendar can render a free cell without treating it as an error.
func (h *SessionHandler) MatchSlot(c *gin.Context) {
	date := c.Query("date")
	displayTime := c.Query("time")
	if date == "" || displayTime == "" {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Both 'date' and 'time' query parameters are required.", ""))
		return
	}

	session, err := h.sessionService.MatchSlot(date, displayTime)
	if err != nil {
		respondSessionError(c, err, "MatchSlot")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// GetSessionOrdinal reports a session's position among its client's bookings
// as "session N of M".
func (h *SessionHandler) GetSessionOrdinal(c *gin.Context) {
	idStr := c.Param("id")
	sessionID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid session ID format.", err.Error()))
		return
	}

	ordinal, err := h.sessionService.SessionOrdinal(sessionID)
	if err != nil {
		respondSessionError(c, err, "GetSessionOrdinal")
		return
	}
	c.JSON(http.StatusOK, ordinal)
}

// GenerateRecurring expands a client's regular weekly slot into the next four
// weeks of bookings, stopping when the balance runs out.
func (h *SessionHandler) GenerateRecurring(c *gin.Context) {
	idStr := c.Param("id")
	clientID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid client ID format.", err.Error()))
		return
	}

	client, err := h.clientService.GetClientByID(clientID)
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
		} else {
			utils.LogError(err, "GenerateRecurring: Error from clientService.GetClientByID for ID "+idStr)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch client.", "Internal error"))
		}
		return
	}

	result, err := h.sessionService.GenerateRecurringSessions(client)
	if err != nil {
		if errors.Is(err, services.ErrPartialUpdate) && result != nil {
			c.JSON(http.StatusOK, gin.H{
				"created": result.Created,
				"skipped": result.Skipped,
				"warning": err.Error(),
				"code":    utils.ErrCodePartialUpdate,
			})
			return
		}
		respondSessionError(c, err, "GenerateRecurring")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportCalendar streams the filtered sessions as an iCalendar file.
func (h *SessionHandler) ExportCalendar(c *gin.Context) {
	var filters models.SessionFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid query parameters: "+err.Error(), err.Error()))
		return
	}
	// Export everything matching the filters, not a single page.
	filters.Page = 1
	filters.PageSize = 1000

	sessions, _, err := h.sessionService.GetSessions(filters)
	if err != nil {
		utils.LogError(err, "ExportCalendar: Error from sessionService.GetSessions")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to export calendar.", "Internal error"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="sessions.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(services.ExportICS(sessions)))
}
