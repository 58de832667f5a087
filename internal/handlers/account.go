package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yungbote/bankbridge-backend/internal/logger"
	"github.com/yungbote/bankbridge-backend/internal/services"
)

type AccountHandler struct {
	log            *logger.Logger
	accountService services.AccountService
}

func NewAccountHandler(log *logger.Logger, accountService services.AccountService) *AccountHandler {
	return &AccountHandler{
		log:            log.With("handler", "AccountHandler"),
		accountService: accountService,
	}
}

type createAccountRequest struct {
	UserID            uint            `json:"userId" binding:"required"`
	BankName          string          `json:"bank_name" binding:"required"`
	BankAccountNumber string          `json:"bank_account_number" binding:"required"`
	Balance           decimal.Decimal `json:"balance"`
}

type updateAccountRequest struct {
	BankName          string `json:"bank_name" binding:"required"`
	BankAccountNumber string `json:"bank_account_number" binding:"required"`
}

// POST /api/v1/accounts
func (ah *AccountHandler) Create(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	account, err := ah.accountService.Create(c.Request.Context(), req.UserID, req.BankName, req.BankAccountNumber, req.Balance)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, account)
}

// GET /api/v1/accounts
func (ah *AccountHandler) List(c *gin.Context) {
	accounts, err := ah.accountService.List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, accounts)
}

// GET /api/v1/accounts/:accountId
func (ah *AccountHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "accountId")
	if !ok {
		return
	}
	account, err := ah.accountService.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, account)
}

// PUT /api/v1/accounts/:accountId
func (ah *AccountHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "accountId")
	if !ok {
		return
	}
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	account, err := ah.accountService.Update(c.Request.Context(), id, req.BankName, req.BankAccountNumber)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, account)
}

// DELETE /api/v1/accounts/:accountId
func (ah *AccountHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "accountId")
	if !ok {
		return
	}
	if err := ah.accountService.Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "Account deleted"})
}
