package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
)

func searchTerm(c *gin.Context) string {
	return strings.TrimSpace(c.Query("search"))
}
