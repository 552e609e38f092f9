package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinRequireSession adapts the net/http AuthMiddleware to Gin, preserving
// the rule that auth decisions are session-based and transport-agnostic.
func GinRequireSession(auth *AuthMiddleware) gin.HandlerFunc {
	return ginAdapter(auth.RequireSession)
}

// GinRequireElevated adapts RequireElevated to Gin.
func GinRequireElevated(auth *AuthMiddleware) gin.HandlerFunc {
	return ginAdapter(auth.RequireElevated)
}

func ginAdapter(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		handler := mw(next)
		handler.ServeHTTP(c.Writer, c.Request)

		// If the middleware already wrote the response, stop the Gin chain
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}
