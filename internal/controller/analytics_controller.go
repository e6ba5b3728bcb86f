package controller

import (
	"flightprep_backend/internal/service"
	"flightprep_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	WeakAreaService       *service.WeakAreaService
	RecommendationService *service.RecommendationService
	MetricsService        *service.MetricsService
	SessionService        *service.SessionService
}

func NewAnalyticsController(
	weakAreaService *service.WeakAreaService,
	recommendationService *service.RecommendationService,
	metricsService *service.MetricsService,
	sessionService *service.SessionService,
) *AnalyticsController {
	return &AnalyticsController{
		WeakAreaService:       weakAreaService,
		RecommendationService: recommendationService,
		MetricsService:        metricsService,
		SessionService:        sessionService,
	}
}

// @Summary 提交测验结果
// @Description 批量提交一次测验的答题记录并重算弱点画像
// @Tags 分析
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response
// @Router /api/tests/results [post]
func (c *AnalyticsController) SubmitTestResults(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var input struct {
		Answers []service.SubmittedAnswer `json:"answers" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	areas, err := c.WeakAreaService.RecordBatch(ctx.Request.Context(), user.UserID, input.Answers)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"updatedWeakAreas": areas})
}

// @Summary 获取弱点列表
// @Description 按优先级返回用户的薄弱科目与复习紧迫度
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/analytics/weak-areas [get]
func (c *AnalyticsController) GetWeakAreas(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	areas, err := c.WeakAreaService.WeakAreas(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, areas)
}

// @Summary 获取学习推荐
// @Description 为未达掌握线的科目生成内容推荐，全部达标时返回空列表
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/analytics/recommendations [get]
func (c *AnalyticsController) GetRecommendations(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	recs, err := c.RecommendationService.Recommendations(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, recs)
}

// @Summary 获取学习仪表盘
// @Description 聚合窗口内的学习时长、专注度、强弱科目与连续学习天数
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Param range query string false "统计窗口" Enums(week, month, quarter) default(week)
// @Success 200 {object} util.Response
// @Router /api/analytics/dashboard [get]
func (c *AnalyticsController) GetDashboard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	window := service.DashboardWindow(ctx.DefaultQuery("range", "week"))
	metrics, err := c.MetricsService.Dashboard(ctx.Request.Context(), user.UserID, window)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, metrics)
}

// @Summary 获取会话统计
// @Description 最近 30 天的会话次数、时长与平均专注度
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/analytics/session-metrics [get]
func (c *AnalyticsController) GetSessionMetrics(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.SessionService.SessionMetrics(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// @Summary 获取测验历史
// @Description 按测验会话分组返回最近的作答汇总
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Param limit query int false "返回条数" default(20)
// @Success 200 {object} util.Response
// @Router /api/analytics/test-history [get]
func (c *AnalyticsController) GetTestHistory(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	entries, err := c.MetricsService.TestHistory(ctx.Request.Context(), user.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// @Summary 获取科目进度
// @Description 对比早期与近期作答正确率，给出单科进步幅度
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Param subject path string true "科目"
// @Success 200 {object} util.Response
// @Router /api/analytics/progress/{subject} [get]
func (c *AnalyticsController) GetSubjectProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	subject := ctx.Param("subject")
	if subject == "" {
		util.BadRequest(ctx, "subject is required")
		return
	}

	report, err := c.WeakAreaService.SubjectProgress(ctx.Request.Context(), user.UserID, subject)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
