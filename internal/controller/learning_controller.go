package controller

import (
	"coursemaster/internal/progress"
	"coursemaster/internal/service"
	"coursemaster/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type LearningController struct {
	LearningService *service.LearningService
}

func NewLearningController(learningService *service.LearningService) *LearningController {
	return &LearningController{LearningService: learningService}
}

// SelectLessonRequest 切换当前课时
type SelectLessonRequest struct {
	LessonID string `json:"lessonId" binding:"required"`
}

// @Summary 打开学习页面
// @Description 按已保存进度初始化，返回当前课时和完成情况
// @Tags 学习
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=progress.LessonState}
// @Failure 403 {object} util.Response "未选课"
// @Failure 404 {object} util.Response
// @Router /api/learn/{courseId} [get]
func (c *LearningController) Open(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	state, err := c.LearningService.Open(ctx.Request.Context(), user.UserID, ctx.Param("courseId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// @Summary 切换当前课时
// @Tags 学习
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Param body body SelectLessonRequest true "课时"
// @Success 200 {object} util.Response{data=progress.LessonState}
// @Failure 404 {object} util.Response
// @Router /api/learn/{courseId}/current [put]
func (c *LearningController) Select(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req SelectLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	state, err := c.LearningService.Select(user.UserID, ctx.Param("courseId"), req.LessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// completeFailure 保存失败时返回回滚后的状态，前端据此提供重试
type completeFailure struct {
	util.RetryInfo
	State progress.LessonState `json:"state"`
}

// @Summary 完成当前课时
// @Description 乐观更新；保存失败时回滚并返回 502 和 retryable
// @Tags 学习
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=progress.LessonState}
// @Failure 409 {object} util.Response "页面已关闭，结果被丢弃"
// @Failure 502 {object} util.Response{data=util.RetryInfo}
// @Router /api/learn/{courseId}/complete [post]
func (c *LearningController) Complete(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	state, err := c.LearningService.Complete(ctx.Request.Context(), user.UserID, ctx.Param("courseId"))
	var persistErr *progress.PersistError
	switch {
	case err == nil:
		util.Success(ctx, state)
	case errors.As(err, &persistErr):
		util.ErrorWithData(ctx, http.StatusBadGateway, err.Error(), completeFailure{
			RetryInfo: util.RetryInfo{Retryable: true, LessonID: persistErr.LessonID},
			State:     state,
		})
	default:
		respondError(ctx, err)
	}
}

// @Summary 离开学习页面
// @Description 之后到达的保存结果会被丢弃
// @Tags 学习
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/learn/{courseId} [delete]
func (c *LearningController) Close(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	closed := c.LearningService.Close(user.UserID, ctx.Param("courseId"))
	util.Success(ctx, gin.H{"closed": closed})
}
