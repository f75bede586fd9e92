package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"course-ops/backend/internal/service"
	"course-ops/backend/pkg/response"
)

// MustGetUserID extracts user_id set by JWTAuth.
// On failure it writes a 401 and returns false; callers just return.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "UNAUTHORIZED", "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, "UNAUTHORIZED", "not authenticated")
		return "", false
	}
	return s, true
}

// MustGetRole extracts role set by JWTAuth.
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, "UNAUTHORIZED", "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, "UNAUTHORIZED", "not authenticated")
		return "", false
	}
	return s, true
}

// MustGetPrincipal assembles the acting user handed to every service call.
func MustGetPrincipal(c *gin.Context) (service.Principal, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Principal{}, false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return service.Principal{}, false
	}
	return service.Principal{
		UserID:   userID,
		FullName: c.GetString("full_name"),
		Role:     role,
	}, true
}

// tokenIdentity returns the jti and expiry of the access token in use.
func tokenIdentity(c *gin.Context) (string, time.Time, bool) {
	jti := c.GetString("token_jti")
	if jti == "" {
		response.Unauthorized(c, "UNAUTHORIZED", "not authenticated")
		return "", time.Time{}, false
	}
	return jti, c.GetTime("token_exp"), true
}
