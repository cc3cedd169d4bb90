package guard

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StateFunc reads the guard state for the request
type StateFunc func(c *gin.Context) State

// Middleware enforces req on a route group
func Middleware(req Requirement, state StateFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := Evaluate(state(c), req)

		switch d.Outcome {
		case Allow:
			c.Next()
			return

		case Loading:
			c.JSON(http.StatusAccepted, gin.H{"view": "loading"})

		case Redirect:
			c.Redirect(http.StatusSeeOther, d.Location(c.Request.URL.RequestURI()))

		case AccessDenied:
			c.JSON(http.StatusForbidden, gin.H{
				"view":     "access_denied",
				"error":    "forbidden",
				"message":  "You do not have permission to view this page.",
				"code":     "ACCESS_DENIED",
				"homePath": d.HomePath,
			})

		case AwaitingVerification:
			c.JSON(http.StatusForbidden, gin.H{
				"view":    "awaiting_verification",
				"error":   "not_verified",
				"message": "Your landlord account is awaiting admin verification.",
				"code":    "ACCOUNT_NOT_VERIFIED",
			})
		}
		c.Abort()
	}
}
