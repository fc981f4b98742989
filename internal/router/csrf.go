package router

import (
	"errors"
	"net/http"

	"signn-go/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Keys for storing the token in the session and context.
const (
	csrfTokenSessionKey = "csrf_token"
	csrfTokenContextKey = "csrf_token"
	csrfTokenHeaderKey  = "X-CSRF-Token"
)

// CSRFProtection guards the cookie-authenticated JSON API: the frontend
// fetches the token once and echoes it in a header on every unsafe method.
func CSRFProtection() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		// 1. Get or create the real CSRF token for the session.
		var token string
		sessionToken := session.Get(csrfTokenSessionKey)

		if sessionToken == nil {
			newToken, err := utils.GenerateSecureToken(32)
			if err != nil {
				// Handle the unlikely event of a token generation failure.
				c.AbortWithError(http.StatusInternalServerError, errors.New("failed to generate CSRF token"))
				return
			}
			token = newToken
			session.Set(csrfTokenSessionKey, token)
			if err := session.Save(); err != nil {
				c.AbortWithError(http.StatusInternalServerError, errors.New("failed to save session"))
				return
			}
		} else {
			token = sessionToken.(string)
		}

		// 2. Make the token available for the token endpoint.
		c.Set(csrfTokenContextKey, token)

		// 3. Validate the token on unsafe methods.
		if c.Request.Method == "POST" || c.Request.Method == "PUT" || c.Request.Method == "DELETE" {
			submittedToken := c.GetHeader(csrfTokenHeaderKey)
			if submittedToken == "" || submittedToken != token {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid CSRF token"})
				return
			}
		}

		c.Next()
	}
}

// CSRFToken returns the session's token for the frontend to echo back.
func CSRFToken(c *gin.Context) {
	token, exists := c.Get(csrfTokenContextKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no CSRF token in session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"csrf_token": token})
}
