package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staywise/internal/domain/faults"
)

// respondError maps fault kinds onto HTTP statuses. Anything without a kind
// is an internal error and keeps its detail out of the response body.
func respondError(c *gin.Context, err error) {
	switch faults.KindOf(err) {
	case faults.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": string(faults.KindValidation)})
	case faults.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": string(faults.KindConflict)})
	case faults.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": string(faults.KindNotFound)})
	case faults.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "kind": string(faults.KindForbidden)})
	case faults.KindUnavailable:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": string(faults.KindUnavailable)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// callerID identifies the requesting user. Authentication happens at the
// gateway; this service trusts the forwarded header.
func callerID(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}

func requireCaller(c *gin.Context) (string, bool) {
	id := callerID(c)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
		return "", false
	}
	return id, true
}
