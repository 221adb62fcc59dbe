package mq

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcase/pkg/metrics"
)

// NATSPublisher 基于NATS核心发布订阅的发布者
// 说明：不使用JetStream，订阅者离线期间的事件不会保留
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string // subject前缀，如"bookcase"
	logger *zap.Logger
}

// NewNATSPublisher 连接NATS并创建发布者
func NewNATSPublisher(url, prefix string, logger *zap.Logger) (*NATSPublisher, error) {
	conn, err := connectNATS(url)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS发布者已创建", zap.String("url", conn.ConnectedUrl()), zap.String("prefix", prefix))
	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger}, nil
}

func connectNATS(url string) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	conn, err := nats.Connect(url, nats.Name("bookcase"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("连接NATS失败: %w", err)
	}
	return conn, nil
}

// Subject 返回routing key对应的subject
func Subject(prefix, routingKey string) string {
	if prefix == "" {
		return routingKey
	}
	return prefix + "." + routingKey
}

// Publish 发布消息
func (p *NATSPublisher) Publish(_ context.Context, routingKey string, message any) error {
	body, err := encode(message)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(Subject(p.prefix, routingKey))
	msg.Header.Set("Content-Type", "application/json")
	msg.Data = body
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	metrics.RecordMessagePublished(p.prefix, routingKey)
	return nil
}

// Close 发送缓冲区中的消息后关闭连接
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// NATSSubscriber 订阅prefix下的全部subject
type NATSSubscriber struct {
	conn   *nats.Conn
	prefix string
	logger *zap.Logger
}

// NewNATSSubscriber 连接NATS并创建订阅者
func NewNATSSubscriber(url, prefix string, logger *zap.Logger) (*NATSSubscriber, error) {
	conn, err := connectNATS(url)
	if err != nil {
		return nil, err
	}
	return &NATSSubscriber{conn: conn, prefix: prefix, logger: logger}, nil
}

// Consume 订阅"<prefix>.>"，回调中的routing key去掉前缀
// NATS核心模式没有重新投递，handler的错误只记录日志
func (s *NATSSubscriber) Consume(ctx context.Context, handler Handler) error {
	sub, err := s.conn.Subscribe(Subject(s.prefix, ">"), func(msg *nats.Msg) {
		routingKey := strings.TrimPrefix(msg.Subject, s.prefix+".")
		if err := handler(ctx, routingKey, msg.Data); err != nil {
			s.logger.Warn("消息处理失败", zap.String("subject", msg.Subject), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("订阅失败: %w", err)
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
	return nil
}

// Close 关闭连接
func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}
