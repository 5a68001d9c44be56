package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"agora/internal/db"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/utils"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// UploadDir returns the root of the avatar file store.
func UploadDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "./web/uploads"
	}
	return dir
}

// Profile is the public profile page, looked up by the username query
// parameter. Administrative accounts are not publicly listable: a
// superuser target redirects to the home page.
func (h *ProfileHandler) Profile(c *gin.Context) {
	username := c.Query("username")

	var user models.User
	if err := db.DB.Where("username = ?", username).First(&user).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Cet utilisateur n'existe pas.")
		return
	}

	if user.IsSuperuser {
		c.Redirect(http.StatusFound, "/")
		return
	}

	var proposed []models.Activity
	db.DB.Preload("Category").
		Where("proposer_id = ?", user.ID).
		Order("start_time ASC").
		Find(&proposed)

	var attended []models.Activity
	db.DB.Preload("Category").
		Joins("JOIN activity_attendees ON activity_attendees.activity_id = activities.id").
		Where("activity_attendees.user_id = ?", user.ID).
		Order("start_time ASC").
		Find(&attended)

	Render(c, http.StatusOK, "profile/profile.html", gin.H{
		"Title":              "Profil de " + user.Username,
		"ProfileUser":        user,
		"Bio":                utils.RenderUserText(user.Bio),
		"ProposedActivities": proposed,
		"AttendedActivities": attended,
	})
}

// ShowEdit displays the edit form for the caller's own account.
func (h *ProfileHandler) ShowEdit(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	Render(c, http.StatusOK, "profile/edit.html", gin.H{
		"Title": "Modifier mon profil",
		"User":  user,
	})
}

// UpdateProfile edits the caller's own account only: avatar, names,
// email and bio. On success it redirects to the caller's public profile.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	updates := map[string]interface{}{
		"first_name": c.PostForm("first_name"),
		"last_name":  c.PostForm("last_name"),
		"email":      c.PostForm("email"),
		"bio":        c.PostForm("bio"),
	}

	// Optional avatar upload, stored on local disk under UPLOAD_DIR
	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		filename := fmt.Sprintf("%d_%s", user.ID, filepath.Base(file.Filename))
		dst := filepath.Join(UploadDir(), "avatar", filename)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			RenderError(c, http.StatusInternalServerError, "L'envoi de l'avatar a échoué.")
			return
		}
		if err := c.SaveUploadedFile(file, dst); err != nil {
			Render(c, http.StatusBadRequest, "profile/edit.html", gin.H{
				"Title": "Modifier mon profil",
				"User":  user,
				"Error": "L'envoi de l'avatar a échoué.",
			})
			return
		}
		updates["avatar"] = "/media/avatar/" + filename
	}

	if err := db.DB.Model(user).Updates(updates).Error; err != nil {
		Render(c, http.StatusInternalServerError, "profile/edit.html", gin.H{
			"Title": "Modifier mon profil",
			"User":  user,
			"Error": "La mise à jour du profil a échoué.",
		})
		return
	}

	c.Redirect(http.StatusFound, "/profile/?username="+user.Username)
}
