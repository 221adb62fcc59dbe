//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：账号模块集成测试
// 覆盖注册、登录、刷新、登出后令牌失效

func TestAccountFlow(t *testing.T) {
	username := UniqueName("reader")
	creds := map[string]string{"username": username, "password": "Test1234", "copy_password": "Test1234"}

	t.Run("注册成功", func(t *testing.T) {
		resp := Do(t, http.MethodPost, BaseURL+"/accounts/register", creds, "")
		assert.Equal(t, http.StatusCreated, resp.Status, resp.Message)
		assert.Equal(t, 0, resp.Code)
	})

	t.Run("用户名重复", func(t *testing.T) {
		resp := Do(t, http.MethodPost, BaseURL+"/accounts/register", creds, "")
		assert.Equal(t, http.StatusConflict, resp.Status)
	})

	t.Run("两次密码不一致", func(t *testing.T) {
		resp := Do(t, http.MethodPost, BaseURL+"/accounts/register",
			map[string]string{"username": UniqueName("x"), "password": "Test1234", "copy_password": "Other1234"}, "")
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})

	t.Run("密码错误", func(t *testing.T) {
		resp := Do(t, http.MethodPost, BaseURL+"/accounts/login",
			map[string]string{"username": username, "password": "Wrong1234"}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
	})

	var tokens LoginData
	t.Run("登录并刷新", func(t *testing.T) {
		resp := Do(t, http.MethodPost, BaseURL+"/accounts/login", creds, "")
		require.Equal(t, http.StatusOK, resp.Status, resp.Message)
		tokens = Decode[LoginData](t, resp)
		require.NotEmpty(t, tokens.AccessToken)

		resp = Do(t, http.MethodPost, BaseURL+"/accounts/refresh",
			map[string]string{"refresh_token": tokens.RefreshToken}, "")
		assert.Equal(t, http.StatusOK, resp.Status, resp.Message)
	})

	t.Run("登出后令牌失效", func(t *testing.T) {
		resp := Do(t, http.MethodPost, BaseURL+"/accounts/logout", nil, tokens.AccessToken)
		require.Equal(t, http.StatusOK, resp.Status, resp.Message)

		resp = Do(t, http.MethodPost, BaseURL+"/authors/updatePositions", nil, tokens.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
	})
}
