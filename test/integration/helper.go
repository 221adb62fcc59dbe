//go:build integration

package integration

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

// 教学说明：集成测试辅助工具
// 集成测试针对运行中的服务（bookcase serve），默认不参与go test
// 运行方式：go test -tags integration ./test/integration/...
// 服务地址可通过BOOKCASE_BASE_URL覆盖

// Timeout HTTP请求超时时间
const Timeout = 10 * time.Second

// BaseURL API基础URL
var BaseURL = baseURL()

func baseURL() string {
	if u := os.Getenv("BOOKCASE_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:8080/api/v1"
}

// Response 统一响应结构
type Response struct {
	Status  int             `json:"-"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ResultData 校验结果
type ResultData struct {
	Status string `json:"status"`
	Events []struct {
		Key      string `json:"key"`
		Severity string `json:"severity"`
		Message  string `json:"message"`
	} `json:"events"`
}

// EventKeys 返回全部event key
func (r ResultData) EventKeys() []string {
	keys := make([]string, len(r.Events))
	for i, e := range r.Events {
		keys[i] = e.Key
	}
	return keys
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Do 发送请求并解析统一响应
//
// 教学说明：
// - 使用require断言网络与解析错误，失败立即终止当前测试
// - HTTP状态码保存在Response.Status，便于同时断言状态码和业务码
func Do(t *testing.T, method, url string, body any, token string) *Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err, "JSON序列化失败")
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	require.NoError(t, json.Unmarshal(raw, &result), "解析JSON响应失败: %s", string(raw))
	result.Status = resp.StatusCode
	return &result
}

// Decode 解析Data字段
func Decode[T any](t *testing.T, resp *Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v), "解析响应数据失败: %s", string(resp.Data))
	return v
}

// UniqueName 生成唯一名称，避免重复运行冲突
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// Login 注册（已存在时忽略）并登录，返回访问令牌
func Login(t *testing.T, username string) string {
	t.Helper()

	creds := map[string]string{"username": username, "password": "Test1234", "copy_password": "Test1234"}
	Do(t, http.MethodPost, BaseURL+"/accounts/register", creds, "")

	resp := Do(t, http.MethodPost, BaseURL+"/accounts/login", creds, "")
	require.Equal(t, http.StatusOK, resp.Status, "登录失败: %s", resp.Message)
	return Decode[LoginData](t, resp).AccessToken
}

// Ptr 取地址
func Ptr[T any](v T) *T {
	return &v
}
