package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gscube/bulkerpay/internal/domain/entity"
	domainerr "github.com/gscube/bulkerpay/internal/domain/error"
	coreport "github.com/gscube/bulkerpay/internal/domain/port/core"
	"github.com/gscube/bulkerpay/internal/domain/port/usecase"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/api/dto"
)

// PaymentHandler handles payment lifecycle HTTP requests
type PaymentHandler struct {
	paymentService usecase.PaymentService
	logger         coreport.Logger
}

// NewPaymentHandler creates a new payment handler instance
func NewPaymentHandler(paymentService usecase.PaymentService, logger coreport.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// Initialize handles POST /api/payments/initialize
func (h *PaymentHandler) Initialize(c *gin.Context) {
	var req dto.InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid initialize request format", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			domainerr.CodeValidation,
			"Invalid request format: "+err.Error(),
		))
		return
	}

	out, err := h.paymentService.Initialize(c.Request.Context(), usecase.InitializeInput{
		Email:     req.Email,
		Amount:    req.Amount.String(),
		Currency:  req.Currency,
		UserID:    req.UserID,
		PackageID: req.PackageID,
		Credits:   req.Credits,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.InitializeResponse{
		Success:          true,
		TransactionID:    out.TransactionID,
		GatewayReference: out.GatewayReference,
		Message:          out.Message,
	})
}

// Verify handles GET /api/payments/verify/:reference. A settled FAILED
// transaction answers 400 with the record so the mobile client surfaces the
// decline, SUCCESS answers 200.
func (h *PaymentHandler) Verify(c *gin.Context) {
	reference := c.Param("reference")

	txn, err := h.paymentService.Verify(c.Request.Context(), reference)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondRecord(c, txn)
}

// RetryCreditUpdate handles POST /api/payments/retry/:transactionId
func (h *PaymentHandler) RetryCreditUpdate(c *gin.Context) {
	transactionID := c.Param("transactionId")

	txn, err := h.paymentService.RetryCreditUpdate(c.Request.Context(), transactionID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondRecord(c, txn)
}

// respondRecord writes a transaction record with the status code its
// lifecycle state calls for
func (h *PaymentHandler) respondRecord(c *gin.Context, txn *entity.PaymentTransaction) {
	status := http.StatusOK
	if txn.Status == entity.StatusFailed || txn.Status == entity.StatusCancelled {
		status = http.StatusBadRequest
	}
	c.JSON(status, dto.NewTransactionRecord(txn))
}

// respondError maps a domain error to an HTTP status and error body
func (h *PaymentHandler) respondError(c *gin.Context, err error) {
	code := domainerr.ErrorCode(err)

	var status int
	switch {
	case domainerr.IsValidationError(err),
		domainerr.IsGatewayRejectedError(err),
		domainerr.IsDuplicateReferenceError(err):
		status = http.StatusBadRequest
	case domainerr.IsNotFoundError(err):
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
		h.logger.Error("Payment request failed", map[string]any{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
	}

	c.JSON(status, dto.NewErrorResponse(code, err.Error()))
}
