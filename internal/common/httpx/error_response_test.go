package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"style-filter-server/internal/common"

	"github.com/gin-gonic/gin"
)

func writeAndRecord(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	WriteServiceError(c, err, "出错了")
	return w
}

// 测试内容：各错误码映射到对应的 HTTP 状态码。
func TestWriteServiceError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{common.NewValidationError("x"), http.StatusBadRequest},
		{common.NewUnauthorizedError("x"), http.StatusUnauthorized},
		{common.NewForbiddenError("x"), http.StatusForbidden},
		{common.NewConflictError("x"), http.StatusConflict},
		{common.NewNotFoundError("x"), http.StatusNotFound},
		{common.NewPayloadTooLargeError("x"), http.StatusRequestEntityTooLarge},
		{common.NewUnsupportedMediaError("x"), http.StatusUnsupportedMediaType},
		{common.NewInternalError("x"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if w := writeAndRecord(tc.err); w.Code != tc.want {
			t.Fatalf("错误 %v: 期望 %d，实际 %d", tc.err, tc.want, w.Code)
		}
	}
}

// 测试内容：未知错误返回 500 与兜底文案，不泄露内部信息。
func TestWriteServiceError_UnknownError(t *testing.T) {
	w := writeAndRecord(errors.New("sql: connection reset"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("期望 500，实际 %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, "出错了") || strings.Contains(body, "sql") {
		t.Fatalf("非预期响应体: %q", body)
	}
}
