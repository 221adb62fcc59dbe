package account

import (
	"slices"
	"time"
)

// Role 账号角色
type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// Account 账号实体（聚合根）
// DDD设计说明：
// 1. 密码已加密存储（bcrypt），不暴露明文
// 2. 领域实体不依赖GORM tag，映射由Repository负责
type Account struct {
	ID        uint
	Username  string
	Password  string // bcrypt哈希值
	Roles     []Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount 创建新账号（工厂方法），默认角色ROLE_USER
func NewAccount(username, hashedPassword string) *Account {
	now := time.Now()
	return &Account{
		Username:  username,
		Password:  hashedPassword,
		Roles:     []Role{RoleUser},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasRole 是否拥有指定角色
func (a *Account) HasRole(role Role) bool {
	return slices.Contains(a.Roles, role)
}

// RoleNames 角色名列表（写入JWT）
func (a *Account) RoleNames() []string {
	names := make([]string, len(a.Roles))
	for i, role := range a.Roles {
		names[i] = string(role)
	}
	return names
}
