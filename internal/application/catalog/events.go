package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// 目录操作名称（事件routing key和指标标签共用）
const (
	OpNewData         = "newData"
	OpAdd             = "add"
	OpUpdate          = "update"
	OpRemove          = "remove"
	OpDuplicate       = "duplicate"
	OpMoveUp          = "moveUp"
	OpMoveDown        = "moveDown"
	OpUpdatePositions = "updatePositions"
)

// EventPublisher 事件发布端口（pkg/mq的Publisher实现）
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Event 目录变更事件
// routing key为catalog.<entity>.<operation>，如catalog.book.moveUp
type Event struct {
	Entity     string    `json:"entity"`
	Operation  string    `json:"operation"`
	ID         *uint     `json:"id,omitempty"` // newData、updatePositions没有ID
	BookID     *uint     `json:"book_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RoutingKey 返回事件的routing key
func (e Event) RoutingKey() string {
	return "catalog." + e.Entity + "." + e.Operation
}

// notifier 在写操作提交后发布事件
// 发布失败只记录日志，不影响已提交的操作
type notifier struct {
	publisher EventPublisher
	logger    *zap.Logger
}

func (n notifier) notify(ctx context.Context, event Event) {
	if n.publisher == nil {
		return
	}
	event.OccurredAt = time.Now()
	if err := n.publisher.Publish(ctx, event.RoutingKey(), event); err != nil {
		n.logger.Warn("发布目录事件失败", zap.String("routing_key", event.RoutingKey()), zap.Error(err))
	}
}
