package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
)

func TestContentType(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	assert.Equal(t, "image/png", ContentType("x.bin", png))
	assert.Equal(t, "text/csv; charset=utf-8", ContentType("export.csv", []byte(`"a","b"`)))
	assert.Equal(t, xlsxMIME, ContentType("export.xlsx", []byte{'P', 'K', 0x03, 0x04, 0, 0}))
	assert.Equal(t, "application/octet-stream", ContentType("export", []byte("plain")))
}

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Error(c, apperror.Validation(map[string]string{"leads.0.name": "Name is required"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"VALIDATION_ERROR","message":"проверка формы не пройдена","fields":{"leads.0.name":"Name is required"}}}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Error(c, errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}
