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

// PurchaseHandler holds the purchase ledger service.
type PurchaseHandler struct {
	purchaseService services.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(ps services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: ps}
}

// AddPurchase handles recording a package purchase. The response carries both
// the ledger row and the client's updated balance.
func (h *PurchaseHandler) AddPurchase(c *gin.Context) {
	var req services.AddPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "AddPurchase: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	purchase, client, err := h.purchaseService.AddPurchase(req)
	if err != nil {
		if errors.Is(err, services.ErrPartialUpdate) && purchase != nil {
			c.JSON(http.StatusCreated, gin.H{
				"purchase": purchase,
				"warning":  err.Error(),
				"code":     utils.ErrCodePartialUpdate,
			})
			return
		}
		utils.LogError(err, "AddPurchase: Error from purchaseService.AddPurchase")
		if errors.Is(err, services.ErrPurchaseValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrClientForPurchaseNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record purchase.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"purchase": purchase, "client": client})
}

// GetPurchases handles fetching the purchase ledger with filters.
func (h *PurchaseHandler) GetPurchases(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	var filters models.PurchaseFilters
	filters.Page = page
	filters.PageSize = pageSize

	if clientIDStr := c.Query("client_id"); clientIDStr != "" {
		id, err := strconv.ParseInt(clientIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid client_id format.", err.Error()))
			return
		}
		filters.ClientID = &id
	}
	if statusStr := c.Query("payment_status"); statusStr != "" {
		if !models.IsValidPaymentStatus(statusStr) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid payment_status value.", "payment_status: "+statusStr))
			return
		}
		filters.PaymentStatus = &statusStr
	}
	if dateFrom := c.Query("date_from"); dateFrom != "" {
		filters.DateFrom = &dateFrom
	}
	if dateTo := c.Query("date_to"); dateTo != "" {
		filters.DateTo = &dateTo
	}

	purchases, totalCount, err := h.purchaseService.GetPurchases(filters)
	if err != nil {
		utils.LogError(err, "GetPurchases: Error from purchaseService.GetPurchases")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch purchases.", "Internal error"))
		return
	}

	if purchases == nil {
		purchases = []models.PackagePurchase{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      purchases,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetPurchaseByID handles fetching a single ledger row.
func (h *PurchaseHandler) GetPurchaseByID(c *gin.Context) {
	idStr := c.Param("id")
	purchaseID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid purchase ID format.", err.Error()))
		return
	}

	purchase, err := h.purchaseService.GetPurchaseByID(purchaseID)
	if err != nil {
		if errors.Is(err, services.ErrPurchaseNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Purchase not found.", err.Error()))
		} else {
			utils.LogError(err, "GetPurchaseByID: Error from purchaseService.GetPurchaseByID for ID "+idStr)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch purchase.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, purchase)
}

// UpdatePurchase handles editing a ledger row; any session-count difference
// is applied to the client's balance in the same transaction.
func (h *PurchaseHandler) UpdatePurchase(c *gin.Context) {
	idStr := c.Param("id")
	purchaseID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid purchase ID format.", err.Error()))
		return
	}

	var req services.UpdatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdatePurchase: Failed to bind JSON for ID "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	purchase, err := h.purchaseService.UpdatePurchase(purchaseID, req)
	if err != nil {
		utils.LogError(err, "UpdatePurchase: Error from purchaseService.UpdatePurchase for ID "+idStr)
		if errors.Is(err, services.ErrPurchaseNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Purchase not found.", err.Error()))
		} else if errors.Is(err, services.ErrPurchaseValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update purchase.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, purchase)
}

// DeletePurchase handles removing a ledger row and debiting its sessions back
// off the client's balance.
func (h *PurchaseHandler) DeletePurchase(c *gin.Context) {
	idStr := c.Param("id")
	purchaseID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid purchase ID format.", err.Error()))
		return
	}

	if err := h.purchaseService.DeletePurchase(purchaseID); err != nil {
		if errors.Is(err, services.ErrPurchaseNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Purchase not found.", err.Error()))
		} else {
			utils.LogError(err, "DeletePurchase: Error from purchaseService.DeletePurchase for ID "+idStr)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete purchase.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Purchase deleted successfully"})
}
