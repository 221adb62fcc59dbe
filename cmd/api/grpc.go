package main

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xiebiao/bookcase/internal/interface/http/handler"
)

const healthCheckInterval = 10 * time.Second

// healthChecker 依赖检查（*handler.HealthHandler实现）
type healthChecker interface {
	Healthy(ctx context.Context) bool
}

var _ healthChecker = (*handler.HealthHandler)(nil)

// newGRPCServer 创建只提供grpc.health.v1的gRPC服务
// 学习要点：Kubernetes的grpc探针和服务网格直接使用标准健康检查协议
// 后台每隔healthCheckInterval检查MySQL、Redis，更新服务状态，ctx取消时停止
func newGRPCServer(ctx context.Context, checker healthChecker, log *zap.Logger) *grpc.Server {
	server := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	go watchHealth(ctx, checker, hs, log)
	return server
}

func watchHealth(ctx context.Context, checker healthChecker, hs *health.Server, log *zap.Logger) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		status := healthpb.HealthCheckResponse_NOT_SERVING
		if checker.Healthy(ctx) {
			status = healthpb.HealthCheckResponse_SERVING
		}
		if status != last {
			log.Info("健康状态变化", zap.String("status", status.String()))
			last = status
		}
		hs.SetServingStatus("", status)

		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
		}
	}
}
