package controller

import (
	"coursemaster/internal/model"
	"coursemaster/internal/service"
	"coursemaster/internal/util"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct {
	AssignmentService *service.AssignmentService
}

func NewAssignmentController(assignmentService *service.AssignmentService) *AssignmentController {
	return &AssignmentController{AssignmentService: assignmentService}
}

type SubmitAssignmentRequest struct {
	Type    model.SubmissionType `json:"type" binding:"required,oneof=link text"`
	Content string               `json:"content" binding:"required,notblank"`
}

type GradeRequest struct {
	Grade    *int   `json:"grade" binding:"required"`
	Feedback string `json:"feedback"`
}

// @Summary 获取作业
// @Description 包含当前用户的提交
// @Tags 作业
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response{data=service.AssignmentView}
// @Failure 404 {object} util.Response
// @Router /api/assignments/{id} [get]
func (c *AssignmentController) Get(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	view, err := c.AssignmentService.Get(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 提交作业
// @Description link 需要 http(s) 地址，text 不能为空白；每人只能提交一次
// @Tags 作业
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作业ID"
// @Param body body SubmitAssignmentRequest true "提交内容"
// @Success 201 {object} util.Response{data=model.AssignmentSubmission}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "已提交"
// @Router /api/assignments/{id}/submissions [post]
func (c *AssignmentController) Submit(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req SubmitAssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	sub, err := c.AssignmentService.Submit(ctx.Request.Context(), user.UserID, ctx.Param("id"), req.Type, req.Content)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, sub)
}

// @Summary 创建作业
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.Assignment true "作业"
// @Success 201 {object} util.Response{data=model.Assignment}
// @Router /api/admin/assignments [post]
func (c *AssignmentController) AdminCreate(ctx *gin.Context) {
	var a model.Assignment
	if err := ctx.ShouldBindJSON(&a); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.AssignmentService.Create(ctx.Request.Context(), &a); err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// @Summary 作业提交列表
// @Tags 管理后台
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作业ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/assignments/{id}/submissions [get]
func (c *AssignmentController) ListSubmissions(ctx *gin.Context) {
	page, err := c.AssignmentService.ListSubmissions(ctx.Request.Context(), ctx.Param("id"),
		queryInt(ctx, "page", 1), queryInt(ctx, "limit", 20))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// @Summary 作业评分
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "提交ID"
// @Param body body GradeRequest true "分数 0-100"
// @Success 200 {object} util.Response{data=model.AssignmentSubmission}
// @Failure 400 {object} util.Response
// @Router /api/admin/submissions/{id}/grade [put]
func (c *AssignmentController) Grade(ctx *gin.Context) {
	var req GradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	sub, err := c.AssignmentService.Grade(ctx.Request.Context(), ctx.Param("id"), *req.Grade, req.Feedback)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}
