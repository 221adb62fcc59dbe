package account

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookcase/internal/domain/account"
	apperrors "github.com/xiebiao/bookcase/pkg/errors"
	"github.com/xiebiao/bookcase/pkg/jwt"
)

// SessionStore 会话存储端口（redis.SessionStore实现）
type SessionStore interface {
	SaveSession(ctx context.Context, accountID uint, sessionData map[string]interface{}, ttl time.Duration) error
	GetSession(ctx context.Context, accountID uint) (map[string]string, error)
	DeleteSession(ctx context.Context, accountID uint) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
}

// RegisterUseCase 账号注册用例
// 设计说明：Application层负责用例编排，注册规则（用户名格式、密码强度、首个账号为管理员）在领域服务中
type RegisterUseCase struct {
	accounts account.Service
	logger   *zap.Logger
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(accounts account.Service, logger *zap.Logger) *RegisterUseCase {
	return &RegisterUseCase{accounts: accounts, logger: logger}
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*AccountInfo, error) {
	a, err := uc.accounts.Register(ctx, req.Username, req.Password, req.CopyPassword)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("账号注册成功", zap.Uint("account_id", a.ID), zap.String("username", a.Username), zap.Strings("roles", a.RoleNames()))
	return toInfo(a), nil
}

// LoginUseCase 登录用例
// 流程：校验用户名密码 → 生成JWT Token对 → 保存会话到Redis
type LoginUseCase struct {
	accounts     account.Service
	jwtManager   *jwt.Manager
	sessionStore SessionStore
	logger       *zap.Logger
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(accounts account.Service, jwtManager *jwt.Manager, sessionStore SessionStore, logger *zap.Logger) *LoginUseCase {
	return &LoginUseCase{accounts: accounts, jwtManager: jwtManager, sessionStore: sessionStore, logger: logger}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	a, err := uc.accounts.Login(ctx, req.Username, req.Password)
	if err != nil {
		// 账号不存在与密码错误对外统一，避免枚举用户名
		if apperrors.IsCode(err, apperrors.ErrCodeAccountNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, err
	}

	pair, err := uc.jwtManager.GenerateToken(a.ID, a.Username, a.RoleNames())
	if err != nil {
		return nil, err
	}

	session := map[string]interface{}{
		"username": a.Username,
		"login_at": time.Now().Unix(),
		"ip":       req.ClientIP,
	}
	// 会话保存失败不影响登录
	if err := uc.sessionStore.SaveSession(ctx, a.ID, session, uc.jwtManager.RefreshTokenExpire()); err != nil {
		uc.logger.Warn("保存会话失败", zap.Uint("account_id", a.ID), zap.Error(err))
	}

	return &LoginResponse{
		Account:      *toInfo(a),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// LogoutUseCase 登出用例
type LogoutUseCase struct {
	jwtManager   *jwt.Manager
	sessionStore SessionStore
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(jwtManager *jwt.Manager, sessionStore SessionStore) *LogoutUseCase {
	return &LogoutUseCase{jwtManager: jwtManager, sessionStore: sessionStore}
}

// Execute 删除会话并把Access Token加入黑名单（黑名单TTL = Access Token有效期）
func (uc *LogoutUseCase) Execute(ctx context.Context, accountID uint, accessToken string) error {
	if err := uc.sessionStore.DeleteSession(ctx, accountID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.jwtManager.AccessTokenExpire())
}

// RefreshUseCase 刷新Access Token
// 1. 会话已删除（登出）时Refresh Token失效
// 2. 角色以账号当前数据为准
type RefreshUseCase struct {
	accounts     account.Service
	jwtManager   *jwt.Manager
	sessionStore SessionStore
}

// NewRefreshUseCase 创建刷新用例
func NewRefreshUseCase(accounts account.Service, jwtManager *jwt.Manager, sessionStore SessionStore) *RefreshUseCase {
	return &RefreshUseCase{accounts: accounts, jwtManager: jwtManager, sessionStore: sessionStore}
}

// Execute 执行刷新
func (uc *RefreshUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := uc.jwtManager.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.Refresh {
		return nil, apperrors.ErrInvalidToken
	}

	if _, err := uc.sessionStore.GetSession(ctx, claims.AccountID); err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeUnauthorized) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}

	a, err := uc.accounts.Find(ctx, claims.Username)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeAccountNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}

	token, err := uc.jwtManager.RefreshAccessToken(refreshToken, a.RoleNames())
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{
		AccessToken: token,
		ExpiresIn:   int64(uc.jwtManager.AccessTokenExpire().Seconds()),
	}, nil
}

// =========================================
// 应用层DTO
// =========================================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username     string
	Password     string
	CopyPassword string
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string
	Password string
	ClientIP string
}

// AccountInfo 账号信息（不含密码）
type AccountInfo struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Account      AccountInfo `json:"account"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
}

// RefreshResponse 刷新响应
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func toInfo(a *account.Account) *AccountInfo {
	return &AccountInfo{ID: a.ID, Username: a.Username, Roles: a.RoleNames()}
}
