package handlers

import (
	"net/http"

	"agora/internal/db"
	"agora/internal/models"
	"agora/internal/utils"
	"agora/internal/validation"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", gin.H{
		"Title":       "Inscription",
		"FieldErrors": map[string]string{},
		"Username":    "",
	})
}

// Register creates an account from username + password1/password2.
// Validation runs entirely before the insert; on any error the form is
// re-rendered with field messages and nothing is persisted.
func (h *AuthHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	password1 := c.PostForm("password1")
	password2 := c.PostForm("password2")

	result := validation.ValidateSignup(username, password1, password2, func(name string) bool {
		var count int64
		db.DB.Model(&models.User{}).Where("username = ?", name).Count(&count)
		return count > 0
	})
	if !result.OK() {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{
			"Title":       "Inscription",
			"FieldErrors": result.Errors,
			"Username":    username,
		})
		return
	}

	hash, err := utils.HashPassword(password1)
	if err != nil {
		Render(c, http.StatusInternalServerError, "auth/register.html", gin.H{
			"Title":       "Inscription",
			"Error":       "Une erreur est survenue, veuillez réessayer.",
			"FieldErrors": map[string]string{},
			"Username":    username,
		})
		return
	}

	user := models.User{
		Username: username,
		Password: hash,
		IsActive: true,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		// Unique index race: someone took the name between check and insert
		Render(c, http.StatusConflict, "auth/register.html", gin.H{
			"Title":       "Inscription",
			"FieldErrors": map[string]string{"username": "Ce nom d'utilisateur est déjà pris."},
			"Username":    username,
		})
		return
	}

	c.Redirect(http.StatusFound, "/login?registered=1")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	data := gin.H{"Title": "Connexion"}
	if c.Query("registered") == "1" {
		data["Success"] = "Inscription réussie! Vous pouvez maintenant vous connecter."
	}
	Render(c, http.StatusOK, "auth/login.html", data)
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	var user models.User
	if err := db.DB.Where("username = ?", username).First(&user).Error; err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
			"Title": "Connexion",
			"Error": "Nom d'utilisateur ou mot de passe incorrect.",
		})
		return
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
			"Title": "Connexion",
			"Error": "Nom d'utilisateur ou mot de passe incorrect.",
		})
		return
	}

	if !user.IsActive {
		Render(c, http.StatusForbidden, "auth/login.html", gin.H{
			"Title": "Connexion",
			"Error": "Ce compte est désactivé.",
		})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}
