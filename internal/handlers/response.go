package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bankbridge-backend/internal/types"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondDomainError maps the domain error taxonomy onto HTTP statuses:
// missing entities 404, caller mistakes 400, state conflicts 409, timeouts
// 503 (retryable by the caller), everything else 500.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrUserNotFound),
		errors.Is(err, types.ErrAccountNotFound),
		errors.Is(err, types.ErrTransactionNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, types.ErrInvalidAmount):
		RespondError(c, http.StatusBadRequest, "invalid_amount", err)
	case errors.Is(err, types.ErrSelfTransfer):
		RespondError(c, http.StatusBadRequest, "self_transfer", err)
	case errors.Is(err, types.ErrInsufficientFunds):
		RespondError(c, http.StatusConflict, "insufficient_funds", err)
	case errors.Is(err, types.ErrEmailInUse):
		RespondError(c, http.StatusConflict, "email_in_use", err)
	case errors.Is(err, types.ErrConflict):
		RespondError(c, http.StatusConflict, "conflict", err)
	case errors.Is(err, types.ErrImmutableRecord):
		RespondError(c, http.StatusConflict, "immutable_record", err)
	case errors.Is(err, types.ErrInvalidStateTransition):
		RespondError(c, http.StatusConflict, "invalid_state_transition", err)
	case errors.Is(err, types.ErrTimeout):
		RespondError(c, http.StatusServiceUnavailable, "timeout", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New(name+" must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}
