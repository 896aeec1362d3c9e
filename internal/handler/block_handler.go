package handler

import (
	"spark_chat_server/internal/dto/request"
	"spark_chat_server/internal/dto/respond"
	"spark_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// BlockHandler 拉黑与举报请求处理器
type BlockHandler struct {
	blockSvc service.BlockService
}

func NewBlockHandler(blockSvc service.BlockService) *BlockHandler {
	return &BlockHandler{blockSvc: blockSvc}
}

// Set 拉黑
// POST /block/set
func (h *BlockHandler) Set(c *gin.Context) {
	var req request.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.blockSvc.Block(c.Request.Context(), currentUser(c), req.UserId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Unset 解除拉黑
// POST /block/unset
func (h *BlockHandler) Unset(c *gin.Context) {
	var req request.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.blockSvc.Unblock(c.Request.Context(), currentUser(c), req.UserId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Exists 当前用户是否拉黑了 user_id
// GET /block/exists?user_id=xxx
func (h *BlockHandler) Exists(c *gin.Context) {
	var req request.UserIdQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	blocked, err := h.blockSvc.IsBlocked(c.Request.Context(), currentUser(c), req.UserId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.BlockExistsRespond{Blocked: blocked})
}

// List 当前用户的拉黑列表
// GET /block/list
func (h *BlockHandler) List(c *gin.Context) {
	data, err := h.blockSvc.ListBlocked(c.Request.Context(), currentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Report 举报用户，可选同时拉黑
// POST /report/create
func (h *BlockHandler) Report(c *gin.Context) {
	var req request.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.blockSvc.Report(c.Request.Context(), currentUser(c), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
