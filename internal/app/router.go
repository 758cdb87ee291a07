package app

import (
	"coursemaster/docs"
	"coursemaster/internal/config"
	"coursemaster/internal/middleware"
	"coursemaster/internal/model"
	"coursemaster/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	registerPublicRoutes(router, c, cfg)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	registerStudentRoutes(authGroup, c)

	// 3. 管理员相关接口
	registerAdminRoutes(router, c, cfg)
}

func registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 目录对游客开放，登录用户的课程详情带选课状态
		public.GET("/courses", c.catalog.Browse)
		public.GET("/courses/:id", middleware.TryAuth(cfg.JWT.Secret), c.catalog.GetCourse)
	}
}

func registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/logout", c.auth.Logout)
	rg.GET("/profile", c.auth.GetProfile)
	rg.GET("/dashboard", c.dashboard.GetDashboard)

	// 选课
	rg.GET("/enrollments", c.enrollment.List)
	rg.POST("/enrollments/:courseId", c.enrollment.Enroll)
	rg.DELETE("/enrollments/:courseId", c.enrollment.Unenroll)

	// 学习页面
	rg.GET("/learn/:courseId", c.learning.Open)
	rg.PUT("/learn/:courseId/current", c.learning.Select)
	rg.POST("/learn/:courseId/complete", c.learning.Complete)
	rg.DELETE("/learn/:courseId", c.learning.Close)

	// 测验
	rg.GET("/courses/:id/quizzes", c.catalog.ListQuizzes)
	rg.POST("/quizzes/:quizId/attempt", c.quiz.Start)
	rg.GET("/quizzes/:quizId/attempt", c.quiz.State)
	rg.PUT("/quizzes/:quizId/attempt/answers", c.quiz.Answer)
	rg.POST("/quizzes/:quizId/attempt/submit", c.quiz.Submit)
	rg.POST("/quizzes/:quizId/attempt/retry", c.quiz.Retry)
	rg.DELETE("/quizzes/:quizId/attempt", c.quiz.Discard)

	// 作业
	rg.GET("/assignments/:id", c.assignment.Get)
	rg.POST("/assignments/:id/submissions", c.assignment.Submit)
}

func registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/stats", c.admin.Stats)

		admin.GET("/courses", c.admin.ListCourses)
		admin.POST("/courses", c.admin.CreateCourse)
		admin.PUT("/courses/:id", c.admin.UpdateCourse)
		admin.DELETE("/courses/:id", c.admin.DeleteCourse)
		admin.POST("/courses/:id/thumbnail", c.admin.UploadThumbnail)

		admin.GET("/quizzes/:id", c.quiz.AdminGet)
		admin.POST("/quizzes", c.quiz.AdminCreate)
		admin.PUT("/quizzes/:id", c.quiz.AdminUpdate)
		admin.DELETE("/quizzes/:id", c.quiz.AdminDelete)

		admin.POST("/assignments", c.assignment.AdminCreate)
		admin.GET("/assignments/:id/submissions", c.assignment.ListSubmissions)
		admin.PUT("/submissions/:id/grade", c.assignment.Grade)
	}
}
