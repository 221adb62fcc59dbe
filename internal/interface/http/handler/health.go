package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/xiebiao/bookcase/internal/interface/http/dto"
)

const (
	statusUp   = "UP"
	statusDown = "DOWN"
)

// HealthHandler 健康检查
// 检查MySQL和Redis连通性，任一不可用时返回503（供负载均衡摘除实例）
type HealthHandler struct {
	db    *gorm.DB
	redis redis.UniversalClient
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(db *gorm.DB, client redis.UniversalClient) *HealthHandler {
	return &HealthHandler{db: db, redis: client}
}

// Check 健康检查
// @Summary      健康检查
// @Tags         系统
// @Produce      json
// @Success      200 {object} dto.HealthResponse
// @Failure      503 {object} dto.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	components := h.Components(c.Request.Context())

	status, code := statusUp, http.StatusOK
	for _, s := range components {
		if s != statusUp {
			status, code = statusDown, http.StatusServiceUnavailable
		}
	}
	c.JSON(code, dto.HealthResponse{Status: status, Components: components})
}

// Components 逐项检查依赖（gRPC健康服务复用）
func (h *HealthHandler) Components(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	components := map[string]string{"mysql": statusUp, "redis": statusUp}

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		components["mysql"] = statusDown
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		components["redis"] = statusDown
	}
	return components
}

// Healthy 全部依赖可用
func (h *HealthHandler) Healthy(ctx context.Context) bool {
	for _, s := range h.Components(ctx) {
		if s != statusUp {
			return false
		}
	}
	return true
}
