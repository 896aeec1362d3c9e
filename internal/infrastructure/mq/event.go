// Package mq 实现实时事件的发布与订阅
// 业务层只发布"某个主题发生了变化"，订阅方收到后从存储重新加载最新状态
// 事件可以在两种模式下投递：单机 channel 或 Kafka 多实例广播
package mq

import "encoding/json"

// 事件类型
const (
	KindSync         = "sync"         // 订阅建立后的首次同步
	KindMessage      = "message"      // 会话有新消息
	KindRead         = "read"         // 会话消息已读状态变化
	KindConversation = "conversation" // 用户的会话列表发生变化
	KindPresence     = "presence"     // 用户在线状态变化
	KindTyping       = "typing"       // 正在输入状态变化
)

// Event 在 Broker 中流转的事件
type Event struct {
	Topic          string `json:"topic"`
	Kind           string `json:"kind"`
	ConversationId string `json:"conversation_id,omitempty"`
	UserId         string `json:"user_id,omitempty"`
	Typing         bool   `json:"typing,omitempty"`
	At             int64  `json:"at,omitempty"` // 毫秒时间戳
}

// TopicConversation 会话消息流主题
func TopicConversation(conversationId string) string {
	return "conversation:" + conversationId
}

// TopicInbox 用户会话列表主题
func TopicInbox(userId string) string {
	return "inbox:" + userId
}

// TopicPresence 用户在线状态主题
func TopicPresence(userId string) string {
	return "presence:" + userId
}

// TopicTyping 会话输入状态主题
func TopicTyping(conversationId string) string {
	return "typing:" + conversationId
}

func encodeEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}

func decodeEvent(data []byte) (Event, error) {
	var ev Event
	err := json.Unmarshal(data, &ev)
	return ev, err
}
