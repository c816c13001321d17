package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/binghan60/EKERA-LunchBOT/pkg/mailer"
)

// RecoveryMiddleware recovers from handler panics, alerts the operators and
// returns a plain 500. The alert is best-effort.
func RecoveryMiddleware(alerts mailer.Mailer) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log := GetLoggerFromContext(c)
		log.Error("Panic recovered", fmt.Errorf("%v", recovered), map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})

		alerts.NotifyOperators(
			"伺服器發生未預期錯誤",
			fmt.Sprintf("%s %s panicked: %v", c.Request.Method, c.Request.URL.Path, recovered),
		)

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "INTERNAL_SERVER_ERROR",
			"message": "伺服器發生錯誤，請稍後再試",
		})
	})
}
