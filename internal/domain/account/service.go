package account

import (
	"context"
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookcase/pkg/errors"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,50}$`)
	hasLetter       = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit        = regexp.MustCompile(`[0-9]`)
)

// Service 账号领域服务接口
type Service interface {
	// Register 注册账号（密码需两次输入一致）
	Register(ctx context.Context, username, password, copyPassword string) (*Account, error)

	// Login 校验用户名密码
	Login(ctx context.Context, username, password string) (*Account, error)

	// Find 按用户名查找账号（刷新Token时读取最新角色）
	Find(ctx context.Context, username string) (*Account, error)
}

type service struct {
	repo Repository
	cost int
}

// NewService 创建账号领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo, cost: 12}
}

// Register 注册账号
// 业务规则：
// 1. 用户名3-50位，只允许字母、数字、点、下划线、短横线
// 2. 密码8-20位，同时包含字母和数字，两次输入一致
// 3. 系统中第一个账号同时拥有ROLE_ADMIN
func (s *service) Register(ctx context.Context, username, password, copyPassword string) (*Account, error) {
	if !usernamePattern.MatchString(username) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "用户名应为3-50位字母、数字或._-")
	}

	if password != copyPassword {
		return nil, apperrors.ErrPasswordMismatch
	}

	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	account := NewAccount(username, string(hashedPassword))

	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		account.Roles = append(account.Roles, RoleAdmin)
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err // Repository已转换为业务错误
	}

	return account, nil
}

// Login 登录校验
func (s *service) Login(ctx context.Context, username, password string) (*Account, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err // Repository已转换为ErrAccountNotFound
	}

	err = bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, apperrors.Wrap(err, "密码验证失败")
	}

	return account, nil
}

// Find 按用户名查找账号
func (s *service) Find(ctx context.Context, username string) (*Account, error) {
	return s.repo.FindByUsername(ctx, username)
}

// validatePasswordStrength 密码强度：8-20位，包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return apperrors.ErrWeakPassword
	}
	return nil
}
