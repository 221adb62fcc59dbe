package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/xiebiao/bookcase/pkg/errors"
	"github.com/xiebiao/bookcase/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBlacklist struct {
	revoked map[string]bool
	err     error
}

func (f *fakeBlacklist) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	return f.revoked[token], f.err
}

func serve(r http.Handler, req *http.Request) (*httptest.ResponseRecorder, int) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body struct {
		Code int `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body.Code
}

func bearer(path, token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthMiddleware(t *testing.T) {
	manager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	blacklist := &fakeBlacklist{revoked: map[string]bool{}}
	auth := NewAuthMiddleware(manager, blacklist, zap.NewNop())

	r := gin.New()
	r.POST("/write", auth.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"account_id": GetAccountID(c), "username": GetUsername(c), "token": GetToken(c)})
	})
	r.POST("/admin", auth.RequireAuth(), auth.RequireRole("ROLE_ADMIN"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	user, err := manager.GenerateToken(2, "reader", []string{"ROLE_USER"})
	require.NoError(t, err)
	admin, err := manager.GenerateToken(1, "admin", []string{"ROLE_USER", "ROLE_ADMIN"})
	require.NoError(t, err)

	t.Run("缺少Token返回401", func(t *testing.T) {
		w, code := serve(r, bearer("/write", ""))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, code)
	})

	t.Run("Token格式错误", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/write", nil)
		req.Header.Set("Authorization", "Basic abc")
		w, code := serve(r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, code)
	})

	t.Run("有效Token注入账号信息", func(t *testing.T) {
		w, _ := serve(r, bearer("/write", user.AccessToken))
		require.Equal(t, http.StatusOK, w.Code)

		var got map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, float64(2), got["account_id"])
		assert.Equal(t, "reader", got["username"])
		assert.Equal(t, user.AccessToken, got["token"])
	})

	t.Run("Refresh Token不能访问接口", func(t *testing.T) {
		w, _ := serve(r, bearer("/write", user.RefreshToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("普通用户不能清空集合", func(t *testing.T) {
		w, code := serve(r, bearer("/admin", user.AccessToken))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, apperrors.ErrCodeForbidden, code)
	})

	t.Run("管理员可以清空集合", func(t *testing.T) {
		w, _ := serve(r, bearer("/admin", admin.AccessToken))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("已登出的Token被拒绝", func(t *testing.T) {
		blacklist.revoked[admin.AccessToken] = true
		defer delete(blacklist.revoked, admin.AccessToken)

		w, _ := serve(r, bearer("/admin", admin.AccessToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("黑名单不可用返回500", func(t *testing.T) {
		blacklist.err = apperrors.WrapCode(errors.New("dial tcp"), apperrors.ErrCodeRedisError, "检查黑名单失败")
		defer func() { blacklist.err = nil }()

		w, _ := serve(r, bearer("/write", user.AccessToken))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(1, 2).Middleware())
	r.GET("/authors", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/authors", nil)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, get("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, get("10.0.0.1").Code)

	w := get("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "超出桶容量")
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, get("10.0.0.2").Code, "不同IP独立计数")
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w, code := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.ErrCodeInternal, code)
	assert.Equal(t, 1, logs.FilterMessage("请求处理panic").Len())
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/authors", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("生成请求ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/authors", nil))

		requestID := w.Header().Get(RequestIDHeader)
		assert.Len(t, requestID, 36)
		assert.Equal(t, requestID, w.Body.String())
	})

	t.Run("沿用客户端请求ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/authors", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	})

	entries := logs.FilterMessage("HTTP请求").All()
	require.Len(t, entries, 2)
	fields := entries[1].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "/authors", fields["path"])
}

func TestLogger_TraceIDs(t *testing.T) {
	previous := otel.GetTracerProvider()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})

	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)), Tracing())
	r.GET("/books", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books", nil))

	entries := logs.FilterMessage("HTTP请求").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Len(t, fields["trace_id"], 32)
	assert.Len(t, fields["span_id"], 16)
}
