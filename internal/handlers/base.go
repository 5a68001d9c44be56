package handlers

import (
	"agora/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	// Inject Current User
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		obj["CurrentUser"] = user
	}

	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// cloneH returns a shallow copy of a render payload. Render writes
// request-scoped keys (CurrentUser, CurrentPath) into its argument, so
// cached payloads shared between requests must be copied before every
// use.
func cloneH(obj gin.H) gin.H {
	out := make(gin.H, len(obj)+2)
	for k, v := range obj {
		out[k] = v
	}
	return out
}

// RenderError renders the shared error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}
