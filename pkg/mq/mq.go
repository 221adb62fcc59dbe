// Package mq 提供目录变更事件的发布/订阅
//
// 支持两种消息中间件，由配置mq.driver选择：
//   - rabbitmq：Topic Exchange，routing key形如catalog.book.add
//   - nats：subject = 前缀 + "." + routing key（如bookcase.catalog.book.add）
//   - none：NopPublisher，不发送任何消息
//
// 核心概念（RabbitMQ）：
// 1. Exchange（交换机）：按routing key路由消息到Queue
// 2. Queue（队列）：存储消息，等待消费
// 3. Binding（绑定）：Topic Exchange支持通配符，catalog.# 订阅全部目录事件
//
// 教学要点：
// - 事件在数据库提交之后发布，发布失败不回滚业务操作
// - 消息体统一使用JSON，ContentType为application/json
package mq

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// Publisher 消息发布者
type Publisher interface {
	// Publish 把message序列化为JSON并按routingKey发布
	Publish(ctx context.Context, routingKey string, message any) error
	Close() error
}

// Handler 消息处理函数，返回错误时消息重新投递（RabbitMQ）
type Handler func(ctx context.Context, routingKey string, body []byte) error

// Subscriber 消息订阅者
type Subscriber interface {
	// Consume 阻塞消费，ctx取消时返回nil
	Consume(ctx context.Context, handler Handler) error
	Close() error
}

// NopPublisher 不发送任何消息（mq.driver=none）
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }

// encode 序列化消息
func encode(message any) ([]byte, error) {
	if body, ok := message.([]byte); ok {
		return body, nil
	}
	body, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("消息序列化失败: %w", err)
	}
	return body, nil
}
