package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/platefeed/backend/internal/middleware"
)

// RequestContext is the resolved identity passed into every read
// operation that produces viewer-relative fields.
type RequestContext struct {
	UserID          uint
	IsAuthenticated bool
	IsAdmin         bool
}

// GetRequestContext reads the identity stored by the auth middlewares.
// Anonymous requests yield a zero context.
func GetRequestContext(c *gin.Context) RequestContext {
	rc := RequestContext{}
	if v, ok := c.Get(middleware.ContextUserIDKey); ok {
		if id, ok := v.(uint); ok {
			rc.UserID = id
			rc.IsAuthenticated = true
		}
	}
	if v, ok := c.Get(middleware.ContextIsAdminKey); ok {
		if isAdmin, ok := v.(bool); ok {
			rc.IsAdmin = isAdmin
		}
	}
	return rc
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
