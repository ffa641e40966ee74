package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerr "github.com/gscube/bulkerpay/internal/domain/error"
	coreport "github.com/gscube/bulkerpay/internal/domain/port/core"
	"github.com/gscube/bulkerpay/internal/domain/port/usecase"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/api/dto"
)

// CreditHandler handles credit balance HTTP requests
type CreditHandler struct {
	paymentService usecase.PaymentService
	logger         coreport.Logger
}

// NewCreditHandler creates a new credit handler instance
func NewCreditHandler(paymentService usecase.PaymentService, logger coreport.Logger) *CreditHandler {
	return &CreditHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// GetBalance handles GET /users/:userId/credits
func (h *CreditHandler) GetBalance(c *gin.Context) {
	userID := c.Param("userId")

	balance, err := h.paymentService.GetCreditBalance(c.Request.Context(), userID)
	if err != nil {
		code := domainerr.ErrorCode(err)
		switch {
		case domainerr.IsValidationError(err):
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(code, err.Error()))
		case domainerr.IsNotFoundError(err):
			c.JSON(http.StatusNotFound, dto.NewErrorResponse(code, err.Error()))
		default:
			h.logger.Error("Credit balance lookup failed", map[string]any{
				"user_id": userID,
				"error":   err.Error(),
			})
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(code, "Internal server error"))
		}
		return
	}

	c.JSON(http.StatusOK, dto.CreditBalanceResponse{
		UserID:           balance.UserID,
		AvailableCredits: balance.AvailableCredits,
		UsedCredits:      balance.UsedCredits,
		LastUpdated:      balance.LastUpdated,
	})
}
