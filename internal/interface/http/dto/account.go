package dto

// HTTP层DTO
// 设计说明：
// 1. binding tag只做格式层面的校验（必填、长度），业务规则在domain层
// 2. 目录实体（作者、分类、图书、版本）直接使用application/catalog中的外部实体，
//    字段为指针以区分null与空值，由校验器给出事件

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username     string `json:"username" binding:"required" example:"reader"`
	Password     string `json:"password" binding:"required" example:"secret123"`
	CopyPassword string `json:"copy_password" binding:"required" example:"secret123"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"reader"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// RefreshRequest 刷新Token请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AccountResponse 账号信息
type AccountResponse struct {
	ID       uint     `json:"id" example:"1"`
	Username string   `json:"username" example:"reader"`
	Roles    []string `json:"roles" example:"ROLE_USER"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Account      AccountResponse `json:"account"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int64           `json:"expires_in" example:"7200"`
}

// TokenResponse 刷新响应
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in" example:"7200"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status     string            `json:"status" example:"UP"`
	Components map[string]string `json:"components"`
}
