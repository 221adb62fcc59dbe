package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcase/internal/infrastructure/config"
	"github.com/xiebiao/bookcase/pkg/logger"
)

// @title                       Bookcase API
// @version                     1.0
// @description                 书架目录服务：作者、分类、图书及其版本的维护与排序
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

var configPath string

// main 主程序入口
// 子命令：
//   - serve   启动HTTP服务和gRPC健康检查
//   - migrate 迁移数据库表结构
//   - events  订阅并输出目录变更事件
func main() {
	root := &cobra.Command{
		Use:           "bookcase",
		Short:         "书架目录服务",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（默认./config/config.yaml）")
	root.AddCommand(newServeCommand(), newMigrateCommand(), newEventsCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

// bootstrap 加载配置并创建日志
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return cfg, log.With(zap.String("service", "bookcase")), nil
}
