package middlewares

import (
	"net/http"

	"rbs/src/types"

	"github.com/gin-gonic/gin"
)

// RequireRoles rejects authenticated principals whose role is not in the
// allow list. Ownership checks stay with the handlers; this is only the
// coarse per-route gate.
func RequireRoles(roles ...types.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		current := types.Role(ctx.GetString("role"))
		for _, role := range roles {
			if current == role {
				return
			}
		}
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": types.ErrForbidden.Error()})
	}
}
