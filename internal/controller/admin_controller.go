package controller

import (
	"coursemaster/internal/service"
	"coursemaster/internal/util"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	CourseAdminService *service.CourseAdminService
}

func NewAdminController(courseAdminService *service.CourseAdminService) *AdminController {
	return &AdminController{CourseAdminService: courseAdminService}
}

// @Summary 后台课程列表
// @Tags 管理后台
// @Produce json
// @Security ApiKeyAuth
// @Param search query string false "标题、讲师或标签"
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/admin/courses [get]
func (c *AdminController) ListCourses(ctx *gin.Context) {
	courses, err := c.CourseAdminService.List(ctx.Request.Context(), ctx.Query("search"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary 创建课程
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CourseInput true "课程"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Router /api/admin/courses [post]
func (c *AdminController) CreateCourse(ctx *gin.Context) {
	var in service.CourseInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseAdminService.Create(ctx.Request.Context(), &in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary 更新课程
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Param body body service.CourseInput true "课程"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/admin/courses/{id} [put]
func (c *AdminController) UpdateCourse(ctx *gin.Context) {
	var in service.CourseInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseAdminService.Update(ctx.Request.Context(), ctx.Param("id"), &in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 删除课程
// @Description 同时删除课程的测验、作业和选课记录
// @Tags 管理后台
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/admin/courses/{id} [delete]
func (c *AdminController) DeleteCourse(ctx *gin.Context) {
	if err := c.CourseAdminService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 上传课程封面
// @Tags 管理后台
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Param file formData file true "图片"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/admin/courses/{id}/thumbnail [post]
func (c *AdminController) UploadThumbnail(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if header.Size > util.MaxThumbnailMiB<<20 {
		util.BadRequest(ctx, fmt.Sprintf("file exceeds %d MiB", util.MaxThumbnailMiB))
		return
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	contentType, err := util.ValidateMimeType(file, []string{util.MimeImage})
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	url, err := c.CourseAdminService.UploadThumbnail(ctx.Request.Context(), ctx.Param("id"),
		header.Filename, file, header.Size, contentType)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"thumbnail": url})
}

// @Summary 后台统计
// @Tags 管理后台
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.AdminStats}
// @Router /api/admin/stats [get]
func (c *AdminController) Stats(ctx *gin.Context) {
	stats, err := c.CourseAdminService.Stats(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
