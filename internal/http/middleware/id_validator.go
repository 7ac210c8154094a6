package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rutgers-seed/proposal-portal/internal/interface/http/response"
)

// IDValidator проверяет, что параметр пути положительное целое (id заявки).
// Использование: router.GET("/proposals/:id", IDValidator("id"), handler.Get)
func IDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		if raw == "" {
			response.BadRequest(c, "параметр "+paramName+" обязателен")
			c.Abort()
			return
		}

		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.BadRequest(c, "параметр "+paramName+" должен быть положительным целым числом")
			c.Abort()
			return
		}

		c.Next()
	}
}

// ParamID читает уже проверенный IDValidator параметр.
func ParamID(c *gin.Context, paramName string) int64 {
	id, _ := strconv.ParseInt(c.Param(paramName), 10, 64)
	return id
}
