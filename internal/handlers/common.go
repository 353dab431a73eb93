package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/okrhub/okrhub/backend/internal/services"
	"github.com/okrhub/okrhub/backend/pkg/response"
)

// handleError translates a service error into the unified response format.
func handleError(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindNotFound:
		response.NotFound(c, err.Error())
	case services.KindNotAuthorized:
		response.Forbidden(c, err.Error())
	case services.KindConflict:
		response.Conflict(c, err.Error())
	case services.KindInvalidState:
		response.Unprocessable(c, err.Error())
	case services.KindValidation:
		response.BadRequest(c, err.Error())
	case services.KindTransaction:
		response.ServerError(c, "unable to complete")
	default:
		response.ServerError(c, "unable to complete")
	}
}

// orgIDParam parses the :org_id path parameter.
func orgIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("org_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return 0, false
	}
	return uint(id), true
}

// uintParam parses a numeric path parameter by name.
func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
