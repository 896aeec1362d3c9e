package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"spark_chat_server/internal/dto/request"
	"spark_chat_server/internal/dto/respond"
	"spark_chat_server/internal/service"
	"spark_chat_server/internal/service/presence"
	"spark_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

const actionTimeout = 5 * time.Second

// Session 一条连接上的协议处理和订阅状态
// 同一时间最多订阅一个会话的消息流，切换会话时先取消旧订阅再订阅新会话
type Session struct {
	client *Client
	svc    *service.Services

	mu             sync.Mutex
	inbox          func()
	conversationId string
	messages       func()
	typing         func()
	presence       *presence.Group
	closed         bool
}

func newSession(client *Client, svc *service.Services) *Session {
	return &Session{client: client, svc: svc}
}

// push 写一帧给前端
func (s *Session) push(frame OutFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		zap.L().Error("ws marshal frame failed", zap.String("event", frame.Event), zap.Error(err))
		return
	}
	_ = s.client.Send(data)
}

func (s *Session) ack(requestId string, data interface{}) {
	s.push(OutFrame{Event: EventAck, RequestId: requestId, Code: errorx.CodeSuccess, Msg: "success", Data: data})
}

func (s *Session) fail(requestId string, err error) {
	var codeErr *errorx.CodeError
	frame := OutFrame{Event: EventError, RequestId: requestId}
	if errors.As(err, &codeErr) {
		frame.Code = codeErr.Code
		frame.Msg = codeErr.Msg
	} else {
		frame.Code = errorx.CodeServerBusy
		frame.Msg = errorx.ErrServerBusy.Msg
	}
	s.push(frame)
}

// bind 解析帧参数并按 binding 标签校验
func bind(data []byte, obj interface{}) error {
	if err := json.Unmarshal(data, obj); err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidParam, "请求参数错误")
	}
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidParam, "请求参数错误")
	}
	return nil
}

// handle 处理一帧上行数据
func (s *Session) handle(data []byte) {
	var head InFrame
	if err := json.Unmarshal(data, &head); err != nil {
		s.fail("", errorx.ErrInvalidParam)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()
	userId := s.client.Uuid

	switch head.Action {
	case ActionHeartbeat:
		s.client.refreshDeadline()
		if _, err := s.svc.Presence.Heartbeat(ctx, userId, s.client.ID()); err != nil {
			s.fail(head.RequestId, err)
			return
		}
		s.ack(head.RequestId, nil)

	case ActionSubscribeInbox:
		s.subscribeInbox()
		s.ack(head.RequestId, nil)

	case ActionUnsubscribeInbox:
		s.unsubscribeInbox()
		s.ack(head.RequestId, nil)

	case ActionSubscribeMessages:
		var req request.ConversationIdQuery
		if err := bind(data, &req); err != nil {
			s.fail(head.RequestId, err)
			return
		}
		if _, err := s.svc.Conversation.Authorize(ctx, req.ConversationId, userId); err != nil {
			s.fail(head.RequestId, err)
			return
		}
		s.subscribeMessages(req.ConversationId)
		s.ack(head.RequestId, nil)

	case ActionUnsubscribeMessages:
		s.unsubscribeMessages()
		s.ack(head.RequestId, nil)

	case ActionSubscribePresence:
		var req request.PresenceBatchRequest
		if err := bind(data, &req); err != nil {
			s.fail(head.RequestId, err)
			return
		}
		s.subscribePresence(req.UserIds)
		s.ack(head.RequestId, nil)

	case ActionUnsubscribePresence:
		var req request.PresenceUnsubscribeRequest
		if err := bind(data, &req); err != nil {
			s.fail(head.RequestId, err)
			return
		}
		s.unsubscribePresence(req.UserIds)
		s.ack(head.RequestId, nil)

	case ActionSendMessage:
		var req request.SendMessageRequest
		if err := bind(data, &req); err != nil {
			s.fail(head.RequestId, err)
			return
		}
		rsp, err := s.svc.Gate.Send(ctx, req.ConversationId, userId, req.Content)
		if err != nil {
			s.fail(head.RequestId, err)
			return
		}
		s.ack(head.RequestId, rsp)

	case ActionMarkRead:
		var req request.MarkReadRequest
		if err := bind(data, &req); err != nil {
			s.fail(head.RequestId, err)
			return
		}
		updated, err := s.svc.Message.MarkRead(ctx, req.ConversationId, req.MessageIds, userId)
		if err != nil {
			s.fail(head.RequestId, err)
			return
		}
		s.ack(head.RequestId, respond.MarkReadRespond{Updated: updated})

	case ActionTyping:
		var req request.TypingRequest
		if err := bind(data, &req); err != nil {
			s.fail(head.RequestId, err)
			return
		}
		if err := s.svc.Typing.SetTyping(ctx, req.ConversationId, userId, req.Typing); err != nil {
			s.fail(head.RequestId, err)
			return
		}
		s.ack(head.RequestId, nil)

	case ActionGoOffline:
		if err := s.svc.Presence.GoOffline(ctx, userId); err != nil {
			s.fail(head.RequestId, err)
			return
		}
		s.ack(head.RequestId, nil)

	default:
		s.fail(head.RequestId, errorx.Newf(errorx.CodeInvalidParam, "未知动作 %s", head.Action))
	}
}

func (s *Session) subscribeInbox() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.inbox != nil {
		s.inbox()
	}
	s.inbox = s.svc.Conversation.ListForUser(s.client.Uuid, func(list []respond.ConversationRespond) {
		s.push(OutFrame{Event: EventInbox, Code: errorx.CodeSuccess, Data: list})
	})
}

func (s *Session) unsubscribeInbox() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inbox != nil {
		s.inbox()
		s.inbox = nil
	}
}

// subscribeMessages 切换到新会话：先释放旧会话的消息和输入订阅
func (s *Session) subscribeMessages(conversationId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.disposeConversationLocked()

	s.conversationId = conversationId
	s.messages = s.svc.Message.Subscribe(conversationId, func(list []respond.MessageRespond) {
		s.push(OutFrame{Event: EventMessages, ConversationId: conversationId, Code: errorx.CodeSuccess, Data: list})
	})
	s.typing = s.svc.Typing.Subscribe(conversationId, func(rsp respond.TypingRespond) {
		s.push(OutFrame{Event: EventTyping, ConversationId: conversationId, Code: errorx.CodeSuccess, Data: rsp})
	})
}

func (s *Session) unsubscribeMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposeConversationLocked()
}

func (s *Session) disposeConversationLocked() {
	if s.messages != nil {
		s.messages()
		s.messages = nil
	}
	if s.typing != nil {
		s.typing()
		s.typing = nil
	}
	s.conversationId = ""
}

func (s *Session) subscribePresence(userIds []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.presence == nil {
		s.presence = s.svc.Presence.SubscribeMany(userIds, func(status respond.PresenceRespond) {
			s.push(OutFrame{Event: EventPresence, Code: errorx.CodeSuccess, Data: status})
		})
		return
	}
	for _, id := range userIds {
		s.presence.Add(id)
	}
}

// unsubscribePresence userIds 为空时取消全部在线状态订阅
func (s *Session) unsubscribePresence(userIds []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.presence == nil {
		return
	}
	if len(userIds) == 0 {
		s.presence.Close()
		s.presence = nil
		return
	}
	for _, id := range userIds {
		s.presence.Remove(id)
	}
}

// closeAll 连接关闭时释放全部订阅
func (s *Session) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.inbox != nil {
		s.inbox()
		s.inbox = nil
	}
	s.disposeConversationLocked()
	if s.presence != nil {
		s.presence.Close()
		s.presence = nil
	}
}
