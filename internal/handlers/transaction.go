package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/yungbote/bankbridge-backend/internal/logger"
	"github.com/yungbote/bankbridge-backend/internal/repos"
	"github.com/yungbote/bankbridge-backend/internal/services"
	"github.com/yungbote/bankbridge-backend/internal/types"
)

type TransactionHandler struct {
	log             *logger.Logger
	transferService services.TransferService
}

func NewTransactionHandler(log *logger.Logger, transferService services.TransferService) *TransactionHandler {
	return &TransactionHandler{
		log:             log.With("handler", "TransactionHandler"),
		transferService: transferService,
	}
}

type createTransactionRequest struct {
	SourceAccountID      uint            `json:"sourceAccountId" binding:"required"`
	DestinationAccountID uint            `json:"destinationAccountId" binding:"required"`
	Amount               decimal.Decimal `json:"amount" binding:"required"`
	Metadata             datatypes.JSON  `json:"metadata"`
}

type updateTransactionRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// POST /api/v1/transactions
func (th *TransactionHandler) Create(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	txn, err := th.transferService.Transfer(c.Request.Context(), req.SourceAccountID, req.DestinationAccountID, req.Amount, req.Metadata)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, txn)
}

// GET /api/v1/transactions
func (th *TransactionHandler) List(c *gin.Context) {
	var filter repos.TransactionFilter
	if raw := c.Query("accountId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_query", err)
			return
		}
		filter.AccountID = uint(id)
	}
	if raw := c.Query("status"); raw != "" {
		filter.Status = types.TransactionStatus(raw)
	}
	txns, err := th.transferService.List(c.Request.Context(), filter)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, txns)
}

// GET /api/v1/transactions/:transactionId
func (th *TransactionHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "transactionId")
	if !ok {
		return
	}
	txn, err := th.transferService.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, txn)
}

// PUT /api/v1/transactions/:transactionId
// Amends the amount of a transfer that is still pending. Completed history
// is immutable.
func (th *TransactionHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "transactionId")
	if !ok {
		return
	}
	var req updateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	txn, err := th.transferService.UpdateAmount(c.Request.Context(), id, req.Amount)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, txn)
}

// DELETE /api/v1/transactions/:transactionId
// Completed transfers are never hard-deleted; this records a compensating
// reversal instead.
func (th *TransactionHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "transactionId")
	if !ok {
		return
	}
	txn, err := th.transferService.Reverse(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "Transaction reversed", "transaction": txn})
}
