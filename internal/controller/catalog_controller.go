package controller

import (
	"coursemaster/internal/catalog"
	"coursemaster/internal/service"
	"coursemaster/internal/util"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	CatalogService    *service.CatalogService
	EnrollmentService *service.EnrollmentService
	QuizService       *service.QuizService
}

func NewCatalogController(catalogService *service.CatalogService, enrollmentService *service.EnrollmentService, quizService *service.QuizService) *CatalogController {
	return &CatalogController{
		CatalogService:    catalogService,
		EnrollmentService: enrollmentService,
		QuizService:       quizService,
	}
}

// Browse godoc
// @Summary 课程目录
// @Description 搜索、筛选、排序并分页；无法识别的参数按默认值处理
// @Tags 课程目录
// @Produce json
// @Param search query string false "标题、讲师或标签"
// @Param category query string false "分类" default(All Categories)
// @Param level query string false "难度" default(All Levels)
// @Param sort query string false "排序" Enums(newest, popular, rating, price-low, price-high)
// @Param page query int false "页码" default(1)
// @Success 200 {object} util.Response{data=service.BrowseResult}
// @Router /api/courses [get]
func (c *CatalogController) Browse(ctx *gin.Context) {
	params := catalog.Params{
		Search:   ctx.Query("search"),
		Category: ctx.Query("category"),
		Level:    ctx.Query("level"),
		Sort:     catalog.SortKey(ctx.Query("sort")),
		Page:     queryInt(ctx, "page", 1),
	}
	util.Success(ctx, c.CatalogService.Browse(ctx.Request.Context(), params))
}

// GetCourse godoc
// @Summary 课程详情
// @Description 课程大纲及折扣等派生信息；登录用户同时返回是否已选课
// @Tags 课程目录
// @Produce json
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CatalogController) GetCourse(ctx *gin.Context) {
	detail, err := c.CatalogService.Course(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	enrolled := false
	if user := util.GetUserFromContext(ctx); user != nil {
		enrolled, err = c.EnrollmentService.IsEnrolled(ctx.Request.Context(), user.UserID, detail.ID)
		if err != nil {
			respondError(ctx, err)
			return
		}
	}

	util.Success(ctx, gin.H{"course": detail, "enrolled": enrolled})
}

// ListQuizzes godoc
// @Summary 课程测验列表
// @Description 不含正确答案
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /api/courses/{id}/quizzes [get]
func (c *CatalogController) ListQuizzes(ctx *gin.Context) {
	quizzes, err := c.QuizService.List(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}
