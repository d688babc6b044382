package middleware

import (
	"errors"
	"net/http"
	"strings"

	pkgAuth "domino-service/pkg/auth"
	appErr "domino-service/pkg/errors"
	"domino-service/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ContextMatchIDKey = "matchID"
	ContextSeatKey    = "seat"
)

// SeatTokenRequired admits requests carrying a seat token for the match in
// the :id path parameter.
func SeatTokenRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abort(c, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := pkgAuth.ParseSeatToken(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		if claims.MatchID != c.Param("id") {
			abort(c, http.StatusForbidden, appErr.ErrMatchAccessDenied.Error())
			return
		}

		c.Set(ContextMatchIDKey, claims.MatchID)
		c.Set(ContextSeatKey, claims.Seat)
		c.Next()
	}
}

func abort(c *gin.Context, status int, msg string) {
	response.Error(c, status, msg)
	c.Abort()
}

func extractBearerToken(authHeader string) (string, error) {
	if strings.TrimSpace(authHeader) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
