package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"pt_studio_backend/internal/services"
	"pt_studio_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PackageHandler holds the training package service.
type PackageHandler struct {
	packageService services.PackageService
}

// NewPackageHandler creates a new PackageHandler.
func NewPackageHandler(ps services.PackageService) *PackageHandler {
	return &PackageHandler{packageService: ps}
}

// CreatePackage handles adding a new bundle to the catalog.
func (h *PackageHandler) CreatePackage(c *gin.Context) {
	var req services.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreatePackage: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	pkg, err := h.packageService.CreatePackage(req)
	if err != nil {
		utils.LogError(err, "CreatePackage: Error from packageService.CreatePackage")
		if errors.Is(err, services.ErrPackageNameExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrPackageValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create package.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

// GetPackages handles fetching the full catalog.
func (h *PackageHandler) GetPackages(c *gin.Context) {
	packages, err := h.packageService.GetPackages()
	if err != nil {
		utils.LogError(err, "GetPackages: Error from packageService.GetPackages")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch packages.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": packages})
}

// GetPackageByID handles fetching a single catalog entry.
func (h *PackageHandler) GetPackageByID(c *gin.Context) {
	idStr := c.Param("id")
	pkgID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid package ID format.", err.Error()))
		return
	}

	pkg, err := h.packageService.GetPackageByID(pkgID)
	if err != nil {
		if errors.Is(err, services.ErrPackageNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Package not found.", err.Error()))
		} else {
			utils.LogError(err, "GetPackageByID: Error from packageService.GetPackageByID for ID "+idStr)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch package.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, pkg)
}

// UpdatePackage handles editing a catalog entry.
func (h *PackageHandler) UpdatePackage(c *gin.Context) {
	idStr := c.Param("id")
	pkgID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid package ID format.", err.Error()))
		return
	}

	var req services.UpdatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdatePackage: Failed to bind JSON for ID "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	pkg, err := h.packageService.UpdatePackage(pkgID, req)
	if err != nil {
		utils.LogError(err, "UpdatePackage: Error from packageService.UpdatePackage for ID "+idStr)
		if errors.Is(err, services.ErrPackageNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Package not found.", err.Error()))
		} else if errors.Is(err, services.ErrPackageNameExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrPackageValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update package.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, pkg)
}

// DeletePackage handles removing a catalog entry. Clients referencing it keep
// their name snapshot; the foreign key is set to NULL.
func (h *PackageHandler) DeletePackage(c *gin.Context) {
	idStr := c.Param("id")
	pkgID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid package ID format.", err.Error()))
		return
	}

	if err := h.packageService.DeletePackage(pkgID); err != nil {
		if errors.Is(err, services.ErrPackageNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Package not found.", err.Error()))
		} else {
			utils.LogError(err, "DeletePackage: Error from packageService.DeletePackage for ID "+idStr)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete package.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Package deleted successfully"})
}
