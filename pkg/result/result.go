// Package result 校验结果容器
//
// Result汇总一次校验中产生的所有事件（Event），状态由事件推导：
// 只要存在ERROR级别事件即为ERROR，否则存在WARN即为WARN，否则OK。
// 校验失败不是error，调用方根据Status决定是否中止写操作。
package result

import (
	"strings"

	"github.com/goccy/go-json"
)

// Severity 事件级别
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Status 结果状态
type Status string

const (
	StatusOK    Status = "OK"
	StatusWarn  Status = "WARN"
	StatusError Status = "ERROR"
)

// Event 单条校验事件
type Event struct {
	Severity Severity `json:"severity"`
	Key      string   `json:"key"`     // 如 AUTHOR_FIRST_NAME_EMPTY
	Message  string   `json:"message"` // 人类可读的描述
}

// Result 校验结果
type Result struct {
	Events []Event `json:"events"`
}

// New 创建空结果（状态为OK）
func New() *Result {
	return &Result{Events: []Event{}}
}

// Error 创建只包含一个错误事件的结果
func Error(key, message string) *Result {
	r := New()
	r.AddError(key, message)
	return r
}

// Add 追加事件
func (r *Result) Add(event Event) {
	r.Events = append(r.Events, event)
}

// AddError 追加ERROR级别事件
func (r *Result) AddError(key, message string) {
	r.Add(Event{Severity: SeverityError, Key: key, Message: message})
}

// Merge 原样合并另一个结果的事件（不改写key）
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Events = append(r.Events, other.Events...)
}

// Status 根据事件推导状态
func (r *Result) Status() Status {
	status := StatusOK
	for _, event := range r.Events {
		switch event.Severity {
		case SeverityError:
			return StatusError
		case SeverityWarn:
			status = StatusWarn
		}
	}
	return status
}

// OK 是否可以继续执行写操作（WARN不阻断）
func (r *Result) OK() bool {
	return r.Status() != StatusError
}

// Keys 返回所有事件的key（按追加顺序）
func (r *Result) Keys() []string {
	keys := make([]string, 0, len(r.Events))
	for _, event := range r.Events {
		keys = append(keys, event.Key)
	}
	return keys
}

// ContainsKey 是否存在key包含指定片段的事件
// 用途：HTTP层判断是否存在 *_NOT_EXIST 事件以返回404
func (r *Result) ContainsKey(fragment string) bool {
	for _, event := range r.Events {
		if strings.Contains(event.Key, fragment) {
			return true
		}
	}
	return false
}

// MarshalJSON 序列化时附带推导出的status
func (r *Result) MarshalJSON() ([]byte, error) {
	events := r.Events
	if events == nil {
		events = []Event{}
	}
	return json.Marshal(struct {
		Status Status  `json:"status"`
		Events []Event `json:"events"`
	}{
		Status: r.Status(),
		Events: events,
	})
}
