package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueapp/models"
	"github.com/yeremiapane/queueapp/utils"
)

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

var (
	ErrInvalidCredentials = &CustomError{"invalid credentials"}
	ErrUpgradeRequired    = &CustomError{"Automatic cleanup is a Premium feature. Reset the queue manually or upgrade to Premium."}
)

// respondServiceError maps service errors onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var limitErr *models.LimitError
	switch {
	case errors.As(err, &limitErr):
		utils.RespondErrorCode(c, http.StatusTooManyRequests, "LIMIT_REACHED", limitErr, gin.H{
			"customers_used": limitErr.CustomersUsed,
			"limit":          limitErr.Limit,
			"message":        limitErr.Message,
		})
	case errors.Is(err, models.ErrNotFound):
		utils.RespondErrorCode(c, http.StatusNotFound, "NOT_FOUND", err, nil)
	case errors.Is(err, models.ErrQueueEntryNotFound):
		utils.RespondErrorCode(c, http.StatusNotFound, "QUEUE_ENTRY_NOT_FOUND", err, nil)
	case errors.Is(err, models.ErrManualRequired):
		utils.RespondErrorCode(c, http.StatusForbidden, "MANUAL_REQUIRED", ErrUpgradeRequired, nil)
	case errors.Is(err, models.ErrPlanNotPending):
		utils.RespondErrorCode(c, http.StatusConflict, "PLAN_NOT_PENDING", err, nil)
	case errors.Is(err, models.ErrInvalidInput):
		utils.RespondErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", err, nil)
	case errors.Is(err, models.ErrTxConflict):
		utils.RespondErrorCode(c, http.StatusConflict, "CONFLICT", err, nil)
	default:
		utils.ErrorLogger.Printf("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
	}
}
