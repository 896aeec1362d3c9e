package websocket

// 前端上行动作
const (
	ActionSubscribeInbox      = "subscribe_inbox"
	ActionUnsubscribeInbox    = "unsubscribe_inbox"
	ActionSubscribeMessages   = "subscribe_messages"
	ActionUnsubscribeMessages = "unsubscribe_messages"
	ActionSubscribePresence   = "subscribe_presence"
	ActionUnsubscribePresence = "unsubscribe_presence"
	ActionSendMessage         = "send_message"
	ActionMarkRead            = "mark_read"
	ActionTyping              = "typing"
	ActionGoOffline           = "go_offline"
	ActionHeartbeat           = "heartbeat"
)

// 下行事件
const (
	EventInbox    = "inbox"
	EventMessages = "messages"
	EventPresence = "presence"
	EventTyping   = "typing"
	EventAck      = "ack"
	EventError    = "error"
)

// InFrame 上行帧头，动作参数与帧头平铺在同一个 JSON 对象中
type InFrame struct {
	Action    string `json:"action"`
	RequestId string `json:"request_id,omitempty"`
}

// OutFrame 下行帧
type OutFrame struct {
	Event          string      `json:"event"`
	RequestId      string      `json:"request_id,omitempty"`
	ConversationId string      `json:"conversation_id,omitempty"`
	Code           int         `json:"code"`
	Msg            string      `json:"msg,omitempty"`
	Data           interface{} `json:"data,omitempty"`
}
