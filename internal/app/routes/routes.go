package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/yigit/unitime/internal/app/controllers"
	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/db"
	"github.com/yigit/unitime/internal/middleware"
	"github.com/yigit/unitime/internal/pkg/auth"
)

// SetupRoutes wires all endpoints onto the router
func SetupRoutes(router *gin.Engine, ctrls *controllers.Controllers, jwtService *auth.JWTService, database *db.PostgresDB) {
	router.Use(middleware.RequestLogger())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		if err := database.Pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "up"})
	})

	v1.POST("/auth/login", ctrls.AuthController.Login)

	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(jwtService))

	instructorOnly := middleware.RoleRequired(models.RoleInstructor)
	adminOnly := middleware.RoleRequired(models.RoleAdmin)
	staff := middleware.RoleRequired(models.RoleInstructor, models.RoleAdmin)

	timetable := authed.Group("/timetable")
	{
		timetable.POST("/select-slots", instructorOnly, ctrls.TimetableController.SelectSlots)
		timetable.POST("/undo-acceptance", staff, ctrls.TimetableController.UndoSelection)
		timetable.GET("/available-slots", staff, ctrls.TimetableController.AvailableSlots)
		timetable.GET("/slots", staff, ctrls.TimetableController.ListSlots)
		timetable.GET("/my-schedule", instructorOnly, ctrls.TimetableController.MySchedule)
	}

	requests := authed.Group("/course-requests")
	{
		requests.POST("/accept", instructorOnly, ctrls.RequestController.Accept)
		requests.POST("/undo-accept", staff, ctrls.RequestController.UndoAccept)
		requests.POST("/reassign", adminOnly, ctrls.RequestController.Reassign)
	}

	rooms := authed.Group("/rooms")
	{
		rooms.GET("", staff, ctrls.RoomController.List)
		rooms.POST("/auto-assign", adminOnly, ctrls.RoomController.AutoAssign)
		rooms.PUT("/assignments/:id", adminOnly, ctrls.RoomController.UpdateAssignment)
		rooms.DELETE("/assignments/:id", adminOnly, ctrls.RoomController.DeleteAssignment)
	}

	authed.POST("/admin/sections/:id/promote", adminOnly, ctrls.SectionController.Promote)

	exams := authed.Group("/exam")
	{
		exams.POST("/generate-schedule", adminOnly, ctrls.ExamController.GenerateSchedule)
		exams.POST("/reset", adminOnly, ctrls.ExamController.Reset)
		exams.GET("", staff, ctrls.ExamController.List)
	}
}
