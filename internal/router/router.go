package router

import (
	"agora/internal/handlers"
	"agora/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	activityHandler := handlers.NewActivityHandler()
	profileHandler := handlers.NewProfileHandler()
	adminHandler := handlers.NewAdminHandler()

	// Public Routes
	r.GET("/", activityHandler.Index)                // liste des activités (filtre, category, page)
	r.GET("/activity/:id/", activityHandler.Detail)  // détail d'une activité + AQI
	r.POST("/activity/:id/", activityHandler.Toggle) // inscrire / desinscrire
	r.GET("/profile/", profileHandler.Profile)       // profil public ?username=

	r.GET("/signup", authHandler.ShowRegister)
	r.POST("/signup", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/activity/new", activityHandler.ShowCreate)
		authorized.POST("/activity/new", activityHandler.Create)
		authorized.GET("/profile/edit", profileHandler.ShowEdit)
		authorized.POST("/profile/edit", profileHandler.UpdateProfile)
	}

	// Admin Routes (staff only)
	admin := r.Group("/admin")
	admin.Use(middleware.StaffRequired())
	{
		admin.GET("", adminHandler.Overview)
		admin.GET("/categories", adminHandler.ListCategories)
		admin.POST("/categories", adminHandler.CreateCategory)
		admin.POST("/categories/:id/delete", adminHandler.DeleteCategory)
		admin.POST("/activities/:id/delete", adminHandler.DeleteActivity)
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users/:id/delete", adminHandler.DeleteUser)
	}
}
