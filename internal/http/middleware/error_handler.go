package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rutgers-seed/proposal-portal/internal/interface/http/response"
	"github.com/rutgers-seed/proposal-portal/internal/logger"
)

// ErrorHandler отдаёт последнюю ошибку из c.Errors, если хэндлер сам ничего не ответил.
// Сообщения внутренних ошибок наружу не попадают.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		logger.Entry(logrus.Fields{
			"error":      err.Error(),
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": c.GetString(ContextRequestIDKey),
		}).Error("Request error")

		response.Error(c, err.Err)
	}
}
