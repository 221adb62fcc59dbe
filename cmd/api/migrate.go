package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcase/internal/infrastructure/persistence/mysql"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "迁移数据库表结构",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			// 由本命令显式迁移，避免NewDB再执行一次
			cfg.Database.AutoMigrate = false
			db, cleanup, err := provideDB(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := mysql.AutoMigrate(db); err != nil {
				return err
			}
			log.Info("数据库迁移完成", zap.String("dbname", cfg.Database.DBName))
			return nil
		},
	}
}
