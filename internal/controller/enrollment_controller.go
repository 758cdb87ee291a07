package controller

import (
	"coursemaster/internal/service"
	"coursemaster/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// @Summary 我的选课
// @Tags 选课
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /api/enrollments [get]
func (c *EnrollmentController) List(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	enrollments, err := c.EnrollmentService.List(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}

// @Summary 选课
// @Description 重复选课返回已有记录
// @Tags 选课
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 404 {object} util.Response
// @Router /api/enrollments/{courseId} [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	enrollment, err := c.EnrollmentService.Enroll(ctx.Request.Context(), user.UserID, ctx.Param("courseId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// @Summary 退课
// @Tags 选课
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Failure 501 {object} util.Response
// @Router /api/enrollments/{courseId} [delete]
func (c *EnrollmentController) Unenroll(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	if err := c.EnrollmentService.Unenroll(ctx.Request.Context(), user.UserID, ctx.Param("courseId")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
