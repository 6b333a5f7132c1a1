package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	// UserEmailKey is the context key for the caller's email address
	UserEmailKey = "user_email"
	// UserEmailHeader optionally identifies who requested an artifact.
	// It is informational only and never used for access control.
	UserEmailHeader = "X-User-Email"
)

var emailValidator = validator.New()

// UserEmail records the X-User-Email header in the context when it holds a
// valid address. Invalid values are ignored.
func UserEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.GetHeader(UserEmailHeader))
		if email != "" && emailValidator.Var(email, "email") == nil {
			c.Set(UserEmailKey, email)
		}
		c.Next()
	}
}

// GetUserEmail returns the caller's email or nil when none was supplied.
func GetUserEmail(c *gin.Context) *string {
	email := c.GetString(UserEmailKey)
	if email == "" {
		return nil
	}
	return &email
}
