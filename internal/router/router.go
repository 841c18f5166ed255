package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/school-portal-api/internal/handler"
	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/service"
)

// Handlers groups every HTTP handler wired into the route tree.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Registrations *handler.RegistrationHandler
	Students      *handler.StudentHandler
	Teachers      *handler.TeacherHandler
	Materials     *handler.MaterialHandler
	Schedules     *handler.ScheduleHandler
	Dashboard     *handler.DashboardHandler
}

// Options controls optional route surfaces.
type Options struct {
	APIPrefix   string
	EnableDocs  bool
	AuthService *service.AuthService
	Metrics     *service.MetricsService
}

// Register mounts every route group on the engine.
func Register(r *gin.Engine, h Handlers, opts Options) {
	prefix := opts.APIPrefix
	if prefix == "" {
		prefix = "/api"
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
	}

	authed := api.Group("/auth", middleware.JWT(opts.AuthService))
	{
		authed.POST("/logout", h.Auth.Logout)
		authed.GET("/me", h.Auth.Me)
		authed.POST("/change-password", h.Auth.ChangePassword)
	}

	public := api.Group("/public")
	{
		public.POST("/register", h.Registrations.Submit)
		public.GET("/register/check", h.Registrations.CheckStatus)

		public.GET("/teachers", h.Teachers.ListPublic)
		public.GET("/teachers/departments", h.Teachers.Departments)
		public.GET("/teachers/:id", h.Teachers.GetPublic)

		public.GET("/materials", h.Materials.ListPublic)
		public.GET("/materials/filters", h.Materials.FilterOptions)
		public.GET("/materials/:id", h.Materials.GetPublic)

		public.GET("/schedules", h.Schedules.ListPublic)
		public.GET("/schedules/filters", h.Schedules.FilterOptions)
	}

	admin := api.Group("/admin", middleware.JWT(opts.AuthService))
	{
		admin.GET("/dashboard/stats", h.Dashboard.Stats)

		admin.GET("/registrations", h.Registrations.List)
		admin.GET("/registrations/:id", h.Registrations.Get)
		admin.POST("/registrations/:id/approve", h.Registrations.Approve)
		admin.POST("/registrations/:id/reject", h.Registrations.Reject)

		admin.GET("/students", h.Students.List)
		admin.GET("/students/export", h.Students.Export)
		admin.GET("/students/:id", h.Students.Get)
		admin.POST("/students", h.Students.Create)
		admin.PUT("/students/:id", h.Students.Update)
		admin.DELETE("/students/:id", h.Students.Delete)

		admin.GET("/teachers", h.Teachers.List)
		admin.GET("/teachers/:id", h.Teachers.Get)
		admin.POST("/teachers", h.Teachers.Create)
		admin.PUT("/teachers/:id", h.Teachers.Update)
		admin.DELETE("/teachers/:id", h.Teachers.Delete)

		admin.GET("/materials", h.Materials.List)
		admin.GET("/materials/:id", h.Materials.Get)
		admin.POST("/materials", h.Materials.Create)
		admin.PUT("/materials/:id", h.Materials.Update)
		admin.DELETE("/materials/:id", h.Materials.Delete)

		admin.GET("/schedules", h.Schedules.List)
		admin.GET("/schedules/:id", h.Schedules.Get)
		admin.POST("/schedules", h.Schedules.Create)
		admin.PUT("/schedules/:id", h.Schedules.Update)
		admin.DELETE("/schedules/:id", h.Schedules.Delete)

		users := admin.Group("/users", middleware.Superadmin())
		{
			users.GET("", h.Users.List)
			users.GET("/:id", h.Users.Get)
			users.POST("", h.Users.Create)
			users.PUT("/:id", h.Users.Update)
			users.DELETE("/:id", h.Users.Delete)
		}
	}
}
