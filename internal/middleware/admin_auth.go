package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/nineball/internal/admin"
	"github.com/playmatatu/nineball/internal/models"
)

// AdminContextKey holds the authenticated *models.AdminAccount.
const AdminContextKey = "admin"

// AdminValidator checks an operator's phone and token.
type AdminValidator func(ctx context.Context, phone, token string) (*models.AdminAccount, error)

// DBAdminValidator validates operators against admin_accounts.
func DBAdminValidator(db *sqlx.DB) AdminValidator {
	return func(ctx context.Context, phone, token string) (*models.AdminAccount, error) {
		return admin.ValidateAdminPhoneAndToken(ctx, db, phone, token)
	}
}

// AdminAuth requires X-Admin-Phone and X-Admin-Token headers.
func AdminAuth(validate AdminValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validate == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin accounts unavailable"})
			return
		}

		phone := strings.TrimSpace(c.GetHeader("X-Admin-Phone"))
		token := strings.TrimSpace(c.GetHeader("X-Admin-Token"))
		if phone == "" || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin credentials required"})
			return
		}

		acc, err := validate(c.Request.Context(), phone, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin credentials"})
			return
		}

		c.Set(AdminContextKey, acc)
		c.Next()
	}
}
