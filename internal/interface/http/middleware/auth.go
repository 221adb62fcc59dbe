package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookcase/pkg/errors"
	"github.com/xiebiao/bookcase/pkg/jwt"
	"github.com/xiebiao/bookcase/pkg/response"
)

// Context key
const (
	ctxAccountID = "account_id"
	ctxUsername  = "username"
	ctxRoles     = "roles"
	ctxToken     = "access_token"
)

// TokenBlacklist Token黑名单（redis.SessionStore实现）
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Token
// 2. 检查Token黑名单（已登出的Token）
// 3. 验证Token有效性（Refresh Token不能当Access Token用）
// 4. 将账号信息注入Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
	logger     *zap.Logger
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, blacklist: blacklist, logger: logger}
}

// RequireAuth 要求登录
// 使用方式：
//
//	authors := v1.Group("/authors")
//	authors.PUT("/add", authMiddleware.RequireAuth(), handler.Add)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 格式：Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, apperrors.ErrUnauthorized)
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			abort(c, apperrors.New(apperrors.ErrCodeInvalidToken, "Token格式错误"))
			return
		}
		token := parts[1]

		revoked, err := m.blacklist.IsInBlacklist(c.Request.Context(), token)
		if err != nil {
			m.logger.Error("检查Token黑名单失败", zap.Error(err))
			abort(c, err)
			return
		}
		if revoked {
			abort(c, apperrors.New(apperrors.ErrCodeTokenExpired, "Token已失效，请重新登录"))
			return
		}

		claims, err := m.jwtManager.ParseToken(token)
		if err != nil {
			abort(c, err) // 自动处理ErrTokenExpired、ErrInvalidToken
			return
		}
		if claims.Refresh {
			abort(c, apperrors.ErrInvalidToken)
			return
		}

		// 学习要点：使用Context传递请求级别的数据
		c.Set(ctxAccountID, claims.AccountID)
		c.Set(ctxUsername, claims.Username)
		c.Set(ctxRoles, claims.Roles)
		c.Set(ctxToken, token)
		c.Next()
	}
}

// RequireRole 要求拥有指定角色（需放在RequireAuth之后）
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, r := range c.GetStringSlice(ctxRoles) {
			if r == role {
				c.Next()
				return
			}
		}
		m.logger.Warn("权限不足",
			zap.String("username", GetUsername(c)),
			zap.String("required_role", role),
			zap.String("path", c.FullPath()))
		abort(c, apperrors.ErrForbidden)
	}
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetAccountID 当前登录账号ID，未登录返回0
func GetAccountID(c *gin.Context) uint {
	if id, ok := c.Get(ctxAccountID); ok {
		if v, ok := id.(uint); ok {
			return v
		}
	}
	return 0
}

// GetUsername 当前登录用户名
func GetUsername(c *gin.Context) string {
	return c.GetString(ctxUsername)
}

// GetToken 当前请求的Access Token（登出时加入黑名单）
func GetToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}
