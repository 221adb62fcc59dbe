package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookcase/pkg/errors"
	"github.com/xiebiao/bookcase/pkg/result"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type body struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func record(fn func(c *gin.Context)) (*httptest.ResponseRecorder, *gin.Context) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	return w, c
}

func decode(t *testing.T, w *httptest.ResponseRecorder) body {
	t.Helper()
	var b body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	return b
}

func TestResult(t *testing.T) {
	t.Run("校验通过返回数据", func(t *testing.T) {
		w, _ := record(func(c *gin.Context) {
			Result(c, http.StatusCreated, result.New(), map[string]int{"id": 1})
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		b := decode(t, w)
		assert.Equal(t, 0, b.Code)
		assert.JSONEq(t, `{"id":1}`, string(b.Data))
	})

	t.Run("无数据时返回结果本身", func(t *testing.T) {
		w, _ := record(func(c *gin.Context) {
			Result(c, http.StatusOK, result.New(), nil)
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"OK","events":[]}`, string(decode(t, w).Data))
	})

	t.Run("记录不存在返回404", func(t *testing.T) {
		w, _ := record(func(c *gin.Context) {
			Result(c, http.StatusOK, result.Error("AUTHOR_NOT_EXIST", "Author doesn't exist."), nil)
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		b := decode(t, w)
		assert.Equal(t, apperrors.ErrCodeNotFound, b.Code)
		assert.Equal(t, "Author doesn't exist.", b.Message)
	})

	t.Run("其它校验错误返回422", func(t *testing.T) {
		r := result.New()
		r.AddError("AUTHOR_FIRST_NAME_EMPTY", "First name mustn't be empty string.")
		r.AddError("AUTHOR_LAST_NAME_NULL", "Last name mustn't be null.")

		w, _ := record(func(c *gin.Context) { Result(c, http.StatusOK, r, nil) })
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		b := decode(t, w)
		assert.Equal(t, apperrors.ErrCodeValidation, b.Code)
		assert.Equal(t, "First name mustn't be empty string.", b.Message)
		assert.Contains(t, string(b.Data), "AUTHOR_LAST_NAME_NULL")
	})
}

func TestError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   int
	}{
		{"未登录", apperrors.ErrUnauthorized, http.StatusUnauthorized, apperrors.ErrCodeUnauthorized},
		{"无权限", apperrors.ErrForbidden, http.StatusForbidden, apperrors.ErrCodeForbidden},
		{"用户名重复", apperrors.ErrUsernameDuplicate, http.StatusConflict, apperrors.ErrCodeUsernameDuplicate},
		{"密码强度不足", apperrors.ErrWeakPassword, http.StatusBadRequest, apperrors.ErrCodeWeakPassword},
		{"账号不存在", apperrors.ErrAccountNotFound, http.StatusNotFound, apperrors.ErrCodeAccountNotFound},
		{"限流", apperrors.ErrTooManyRequests, http.StatusTooManyRequests, apperrors.ErrCodeTooManyRequests},
		{"普通错误", errors.New("boom"), http.StatusInternalServerError, apperrors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := record(func(c *gin.Context) { Error(c, tt.err) })
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode(t, w).Code)
		})
	}

	t.Run("内部错误交给日志中间件", func(t *testing.T) {
		_, c := record(func(c *gin.Context) {
			Error(c, apperrors.Wrap(errors.New("connection refused"), "数据库错误"))
		})
		require.Len(t, c.Errors, 1)
		assert.Contains(t, c.Errors[0].Error(), "connection refused")
	})
}
