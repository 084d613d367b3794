package api

import (
	"context"
	"net/http"
	"strings"

	"shop-service/internal/auth"
	"shop-service/internal/models"

	"github.com/gin-gonic/gin"
)

// ctxAccountID is the gin context key holding the authenticated account id
const ctxAccountID = "account_id"

// AccountSource loads accounts for role checks. The guard does one fresh
// lookup per role-gated request; a cached strategy can be substituted here
// without touching the routes.
type AccountSource interface {
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
}

// Authenticate requires a bearer token on the request. Missing header,
// missing token segment and invalid token all produce the same response so
// no failure cause leaks.
func Authenticate(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthenticated(c)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[1] == "" {
			abortUnauthenticated(c)
			return
		}

		accountID, err := tokens.Verify(parts[1])
		if err != nil {
			abortUnauthenticated(c)
			return
		}

		c.Set(ctxAccountID, accountID)
		c.Next()
	}
}

// RequireRole gates an operation to accounts whose role is in the allowed set
func RequireRole(accounts AccountSource, allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.GetString(ctxAccountID)

		account, err := accounts.GetAccountByID(c.Request.Context(), accountID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"message": "internal error",
			})
			return
		}
		if account == nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"message": "account not found",
			})
			return
		}

		for _, role := range allowed {
			if account.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"message": "operation not allowed",
		})
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"message": "not authenticated",
	})
}
