package controller

import (
	"errors"
	"flightprep_backend/internal/service"
	"flightprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	SessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{SessionService: sessionService}
}

// @Summary 开始学习会话
// @Description 为当前用户开启一个新的学习会话，已有进行中会话时返回 409
// @Tags 会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response
// @Router /api/sessions/start [post]
func (c *SessionController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var input service.StartSessionInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.SessionService.Start(user.UserID, input)
	if err != nil {
		if errors.Is(err, util.ErrSessionActive) {
			util.Conflict(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, session)
}

// @Summary 上报用户活动
// @Description 刷新当前会话的活动时间，用于专注度计算
// @Tags 会话
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/sessions/activity [post]
func (c *SessionController) Activity(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.SessionService.RecordActivity(user.UserID); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 暂停学习会话
// @Tags 会话
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/sessions/pause [post]
func (c *SessionController) Pause(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.SessionService.Pause(user.UserID); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 恢复学习会话
// @Tags 会话
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/sessions/resume [post]
func (c *SessionController) Resume(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	err := c.SessionService.Resume(user.UserID)
	switch {
	case err == nil:
		util.Success(ctx, nil)
	case errors.Is(err, util.ErrSessionNotPaused):
		util.Conflict(ctx, err.Error())
	default:
		util.NotFound(ctx)
	}
}

// @Summary 更新会话反馈
// @Description 更新进行中会话的理解度、难度感知与满意度
// @Tags 会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/sessions/feedback [patch]
func (c *SessionController) Feedback(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var fb service.SessionFeedback
	if err := ctx.ShouldBindJSON(&fb); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.SessionService.SetFeedback(user.UserID, fb); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 结束学习会话
// @Description 结束当前会话，计算时长与最终专注度并更新学习画像
// @Tags 会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/sessions/end [post]
func (c *SessionController) End(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var fb service.SessionFeedback
	if err := ctx.ShouldBindJSON(&fb); err != nil && ctx.Request.ContentLength > 0 {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.SessionService.End(ctx.Request.Context(), user.UserID, fb)
	if err != nil {
		if errors.Is(err, util.ErrNoActiveSession) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// @Summary 查询当前会话
// @Tags 会话
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/sessions/current [get]
func (c *SessionController) Current(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	session, ok := c.SessionService.Active(user.UserID)
	if !ok {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, session)
}
