package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"reward_platform/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetPackages(c *gin.Context) {
	packages, err := h.PackageService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load packages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

func (h *Handler) PurchasePackage(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}

	packageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid package id"})
		return
	}

	purchase, balance, err := h.PackageService.Purchase(c.Request.Context(), accountID, packageID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPackageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
		case errors.Is(err, service.ErrInsufficientFunds):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient balance"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "purchase failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"purchase": purchase, "balance": balance})
}
