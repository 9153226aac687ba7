package security

import (
	"net/http"
	"strings"

	"DProject/tools/errs"
	sec "DProject/tools/security"

	"github.com/gin-gonic/gin"
)

// Context key the rest of the service reads the acting user from.
const CtxUserIDKey = "actingUserId"

type Options struct {
	JWT sec.Options
}

// Middleware resolves the acting user from the Authorization bearer token.
// No identity -> Unauthorized; downstream handlers can assume the key is set.
func Middleware(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token = strings.TrimSpace(authz[len("bearer "):])
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrUnauthorized)
			return
		}

		userID, err := sec.VerifySubject(opts.JWT, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrUnauthorized.WithDetail(err.Error()))
			return
		}

		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}

// ActingUser reads the authenticated user id set by Middleware.
func ActingUser(c *gin.Context) string {
	v, _ := c.Get(CtxUserIDKey)
	s, _ := v.(string)
	return s
}
