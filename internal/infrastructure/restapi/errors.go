package restapi

import (
	"errors"
	"net/http"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case entity.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrWalletExists):
		return http.StatusConflict
	case errors.Is(err, entity.ErrInvalidAddress),
		errors.Is(err, entity.ErrInvalidDate),
		errors.Is(err, entity.ErrInvalidDays):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
