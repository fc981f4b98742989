package router

import (
	"net/http"

	"signn-go/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// RiderLoaderMiddleware checks for a riderID in the session. If found, it
// loads the rider from the database and adds it to the context. This
// ensures we don't have "zombie" sessions for riders who no longer exist.
func RiderLoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		riderID, ok := session.Get("riderID").(uint)
		if !ok {
			// No rider ID in session, proceed as a guest.
			c.Next()
			return
		}

		rider, err := repository.GetRiderByID(c.Request.Context(), riderID)
		if err != nil {
			// Rider ID from session is invalid (account deleted, etc.)
			// Clear the bad session and treat as a guest.
			session.Clear()
			session.Options(sessions.Options{Path: "/", MaxAge: -1})
			session.Save()
			c.Next()
			return
		}

		c.Set("rider", rider)
		c.Next()
	}
}

// AuthRequired checks if a valid rider was loaded into the context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("rider"); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}
