package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/e-quiz-backend/controllers"
	"github.com/vnkhanh/e-quiz-backend/middleware"
	"github.com/vnkhanh/e-quiz-backend/models"
	"github.com/vnkhanh/e-quiz-backend/ws"
	"gorm.io/gorm"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/logingoogle", controllers.GoogleLogin)
	}

	exam := api.Group("/exam")
	{
		exam.Use(middleware.DBMiddleware(db))

		// Làm bài: khách xem đề và nộp bài được, đăng nhập thì có gamification
		exam.GET("/courses", middleware.OptionalAuthMiddleware(), controllers.GetCourses)
		exam.GET("/courses/:id", middleware.OptionalAuthMiddleware(), controllers.GetCourseDetail)
		exam.GET("/questions/:courseId", middleware.OptionalAuthMiddleware(), controllers.GetQuestionsByCourse)
		exam.POST("/results", middleware.OptionalAuthMiddleware(), controllers.SubmitExam)

		// Bảng xếp hạng công khai
		exam.GET("/results", controllers.GetLeaderboard)
		exam.GET("/results/:id", controllers.GetResultDetail)

		// Soạn đề: giáo viên (đã duyệt) hoặc admin
		teacherOnly := []gin.HandlerFunc{
			middleware.AuthMiddleware(),
			middleware.RequireRoles(string(models.RoleAdmin), string(models.RoleTeacher)),
		}
		exam.POST("/courses", append(teacherOnly, controllers.CreateCourse)...)
		exam.PUT("/courses/:id", append(teacherOnly, controllers.UpdateCourse)...)
		exam.DELETE("/courses/:id", append(teacherOnly, controllers.DeleteCourse)...)
		exam.GET("/courses/:id/export", append(teacherOnly, controllers.ExportCourseResults)...)
		exam.POST("/questions", append(teacherOnly, controllers.CreateQuestion)...)
		exam.PUT("/questions/:id", append(teacherOnly, controllers.UpdateQuestion)...)
		exam.DELETE("/questions/:id", append(teacherOnly, controllers.DeleteQuestion)...)
	}

	student := api.Group("/student")
	{
		student.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))
		student.GET("/:id", controllers.GetProfile)
		student.PUT("/:id", controllers.UpdateProfile)
		student.POST("/:id/avatar", controllers.UploadAvatar)
		student.GET("/:id/results", controllers.GetStudentResults)
	}

	ai := api.Group("/ai")
	{
		ai.Use(
			middleware.AuthMiddleware(),
			middleware.DBMiddleware(db),
			middleware.RequireRoles(string(models.RoleAdmin), string(models.RoleTeacher)),
		)
		ai.POST("/generate-quiz", controllers.GenerateQuiz)
		ai.POST("/generate-quiz-from-document", controllers.GenerateQuizFromDocument)
	}

	admin := api.Group("/admin")
	{
		admin.Use(
			middleware.AuthMiddleware(),
			middleware.DBMiddleware(db),
			middleware.RequireRoles(string(models.RoleAdmin)),
		)
		admin.GET("/stats", controllers.GetDashboardStats)
		admin.GET("/students", controllers.GetStudents)
		admin.GET("/teachers", controllers.GetTeachers)
		admin.PUT("/approve-teacher/:id", controllers.ApproveTeacher)
		admin.DELETE("/users/:id", controllers.DeleteUser)
		admin.GET("/system-data", controllers.GetSystemData)
		admin.DELETE("/results/:id", controllers.DeleteResult)
	}

	r.GET("/ws/course/:id", ws.HandleCourseWebSocket)
	r.GET("/ws/leaderboard", ws.HandleLeaderboardWebSocket)

	return r
}
