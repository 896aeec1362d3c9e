package handler

import (
	"spark_chat_server/internal/dto/request"
	"spark_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// PresenceHandler 在线状态与随机匹配请求处理器
type PresenceHandler struct {
	presenceSvc service.PresenceService
	matchSvc    service.MatchService
}

func NewPresenceHandler(presenceSvc service.PresenceService, matchSvc service.MatchService) *PresenceHandler {
	return &PresenceHandler{presenceSvc: presenceSvc, matchSvc: matchSvc}
}

// Status 单个用户的在线状态
// GET /presence/status?user_id=xxx
func (h *PresenceHandler) Status(c *gin.Context) {
	var req request.UserIdQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.presenceSvc.Status(c.Request.Context(), req.UserId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// StatusBatch 批量在线状态，顺序与请求一致
// POST /presence/statusBatch
func (h *PresenceHandler) StatusBatch(c *gin.Context) {
	var req request.PresenceBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.presenceSvc.StatusMany(c.Request.Context(), req.UserIds)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RandomOnline 随机匹配一个在线用户
// GET /match/randomOnline
func (h *PresenceHandler) RandomOnline(c *gin.Context) {
	data, err := h.matchSvc.RandomOnline(c.Request.Context(), currentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
