package middleware

import (
	"github.com/gin-gonic/gin"

	"agrostock/internal/core/appctx"
	"agrostock/internal/domain/authz"
)

// Authorize checks the caller's capability table before the handler runs.
// It covers subject-level checks with no ownership component; handlers that
// need ownership conditions fetch the record first and call the evaluator
// with the owner filled in.
func Authorize(evaluator *authz.Evaluator, action authz.Action, subjectType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := appctx.GetUser(c.Request.Context())
		if err := evaluator.Authorize(caller, action, authz.Subject{Type: subjectType}); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}
