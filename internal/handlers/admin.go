package handlers

import (
	"net/http"

	"agora/internal/db"
	"agora/internal/models"
	"agora/internal/utils"
	"agora/internal/validation"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the staff-only management pages: categories,
// activity removal and the account list. Route-level gating is done by
// middleware.StaffRequired.
type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// Overview shows entity counts.
func (h *AdminHandler) Overview(c *gin.Context) {
	var userCount, categoryCount, activityCount int64
	db.DB.Model(&models.User{}).Count(&userCount)
	db.DB.Model(&models.Category{}).Count(&categoryCount)
	db.DB.Model(&models.Activity{}).Count(&activityCount)

	Render(c, http.StatusOK, "admin/overview.html", gin.H{
		"Title":         "Administration",
		"UserCount":     userCount,
		"CategoryCount": categoryCount,
		"ActivityCount": activityCount,
	})
}

func (h *AdminHandler) ListCategories(c *gin.Context) {
	var categories []models.Category
	db.DB.Order("name ASC").Find(&categories)

	Render(c, http.StatusOK, "admin/categories.html", gin.H{
		"Title":       "Catégories",
		"Categories":  categories,
		"FieldErrors": map[string]string{},
		"Name":        "",
	})
}

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	category := models.Category{Name: c.PostForm("name")}

	result := validation.ValidateCategory(&category)
	if result.OK() {
		var count int64
		db.DB.Model(&models.Category{}).Where("name = ?", category.Name).Count(&count)
		if count > 0 {
			result.Add("name", "Cette catégorie existe déjà.")
		}
	}
	if !result.OK() {
		var categories []models.Category
		db.DB.Order("name ASC").Find(&categories)
		Render(c, http.StatusBadRequest, "admin/categories.html", gin.H{
			"Title":       "Catégories",
			"Categories":  categories,
			"FieldErrors": result.Errors,
			"Name":        category.Name,
		})
		return
	}

	if err := db.DB.Create(&category).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "La création de la catégorie a échoué.")
		return
	}

	c.Redirect(http.StatusFound, "/admin/categories")
}

// DeleteCategory nulls the category on referencing activities before
// removing it; the activities survive.
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	var category models.Category
	if err := db.DB.First(&category, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Cette catégorie n'existe pas.")
		return
	}

	if err := db.DeleteCategory(category.ID); err != nil {
		RenderError(c, http.StatusInternalServerError, "La suppression de la catégorie a échoué.")
		return
	}

	c.Redirect(http.StatusFound, "/admin/categories")
}

// DeleteActivity is the only way an activity leaves the system.
func (h *AdminHandler) DeleteActivity(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	var activity models.Activity
	if err := db.DB.First(&activity, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Cette activité n'existe pas.")
		return
	}

	if err := db.DeleteActivity(activity.ID); err != nil {
		RenderError(c, http.StatusInternalServerError, "La suppression de l'activité a échoué.")
		return
	}

	utils.GetCache().DeletePrefix(listCachePrefix)

	c.Redirect(http.StatusFound, "/")
}

// DeleteUser removes an account together with everything it owns: the
// activities it proposed (and their attendee rows) and its own
// attendances elsewhere.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	var user models.User
	if err := db.DB.First(&user, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Cet utilisateur n'existe pas.")
		return
	}

	if err := db.DeleteUser(user.ID); err != nil {
		RenderError(c, http.StatusInternalServerError, "La suppression du compte a échoué.")
		return
	}

	utils.GetCache().DeletePrefix(listCachePrefix)

	c.Redirect(http.StatusFound, "/admin/users")
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	db.DB.Order("username ASC").Find(&users)

	Render(c, http.StatusOK, "admin/users.html", gin.H{
		"Title": "Utilisateurs",
		"Users": users,
	})
}
