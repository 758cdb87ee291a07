package controller

import (
	"coursemaster/internal/model"
	"coursemaster/internal/service"
	"coursemaster/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// StartAttemptRequest 远程接口按课程获取测验，所以需要课程ID
type StartAttemptRequest struct {
	CourseID string `json:"courseId" binding:"required"`
}

type AnswerRequest struct {
	Question *int `json:"question" binding:"required,gte=0"`
	Option   *int `json:"option" binding:"required,gte=0"`
}

// @Summary 开始测验
// @Description 总是开始新的作答
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验ID"
// @Param body body StartAttemptRequest true "课程"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{quizId}/attempt [post]
func (c *QuizController) Start(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	view, err := c.QuizService.Start(ctx.Request.Context(), user.UserID, req.CourseID, ctx.Param("quizId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 当前作答状态
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验ID"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Router /api/quizzes/{quizId}/attempt [get]
func (c *QuizController) State(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	view, err := c.QuizService.State(user.UserID, ctx.Param("quizId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 选择答案
// @Description 提交后的修改被忽略
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验ID"
// @Param body body AnswerRequest true "题号和选项下标"
// @Success 200 {object} util.Response{data=progress.AttemptState}
// @Failure 400 {object} util.Response
// @Router /api/quizzes/{quizId}/attempt/answers [put]
func (c *QuizController) Answer(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	state, err := c.QuizService.Answer(user.UserID, ctx.Param("quizId"), *req.Question, *req.Option)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// @Summary 提交测验
// @Description 所有题目作答后才能提交
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验ID"
// @Success 200 {object} util.Response{data=progress.QuizResult}
// @Failure 400 {object} util.Response
// @Router /api/quizzes/{quizId}/attempt/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	result, err := c.QuizService.Submit(user.UserID, ctx.Param("quizId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 重新作答
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验ID"
// @Success 200 {object} util.Response{data=progress.AttemptState}
// @Router /api/quizzes/{quizId}/attempt/retry [post]
func (c *QuizController) Retry(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	state, err := c.QuizService.Retry(user.UserID, ctx.Param("quizId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// @Summary 放弃作答
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{quizId}/attempt [delete]
func (c *QuizController) Discard(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	if err := c.QuizService.Discard(user.UserID, ctx.Param("quizId")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// 管理员接口

// @Summary 获取测验（含答案）
// @Tags 管理后台
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/admin/quizzes/{id} [get]
func (c *QuizController) AdminGet(ctx *gin.Context) {
	quiz, err := c.QuizService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// @Summary 创建测验
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.Quiz true "测验"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response
// @Router /api/admin/quizzes [post]
func (c *QuizController) AdminCreate(ctx *gin.Context) {
	var quiz model.Quiz
	if err := ctx.ShouldBindJSON(&quiz); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.QuizService.Create(ctx.Request.Context(), &quiz); err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// @Summary 更新测验
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Param body body model.Quiz true "测验"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/admin/quizzes/{id} [put]
func (c *QuizController) AdminUpdate(ctx *gin.Context) {
	var input model.Quiz
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	quiz, err := c.QuizService.Update(ctx.Request.Context(), ctx.Param("id"), &input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// @Summary 删除测验
// @Tags 管理后台
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id} [delete]
func (c *QuizController) AdminDelete(ctx *gin.Context) {
	if err := c.QuizService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
