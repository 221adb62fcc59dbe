package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcase/internal/application/catalog"
	"github.com/xiebiao/bookcase/pkg/mq"
)

func newEventsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "订阅并输出目录变更事件（catalog.#）",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			subscriber, err := provideSubscriber(cfg, log)
			if err != nil {
				return err
			}
			defer subscriber.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("开始订阅目录事件", zap.String("driver", cfg.MQ.Driver))
			return subscriber.Consume(ctx, logEvent(log))
		},
	}
}

// logEvent 把事件写成结构化日志（审计）
// 无法解析的消息只记录警告，不重新投递
func logEvent(log *zap.Logger) mq.Handler {
	return func(ctx context.Context, routingKey string, body []byte) error {
		var event catalog.Event
		if err := json.Unmarshal(body, &event); err != nil {
			log.Warn("无法解析的目录事件", zap.String("routing_key", routingKey), zap.ByteString("body", body))
			return nil
		}

		fields := []zap.Field{
			zap.String("routing_key", routingKey),
			zap.String("entity", event.Entity),
			zap.String("operation", event.Operation),
			zap.Time("occurred_at", event.OccurredAt),
		}
		if event.ID != nil {
			fields = append(fields, zap.Uint("id", *event.ID))
		}
		if event.BookID != nil {
			fields = append(fields, zap.Uint("book_id", *event.BookID))
		}
		log.Info("目录事件", fields...)
		return nil
	}
}
