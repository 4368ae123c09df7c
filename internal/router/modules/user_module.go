package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julee/knowledge-service/internal/container"
	handlers "github.com/julee/knowledge-service/internal/interface/http"
	"github.com/julee/knowledge-service/internal/interface/middleware"
	"github.com/julee/knowledge-service/pkg/helpers"
)

// UserModule wires user HTTP handlers and JWT middleware into routes.
// Public: POST /api/users, POST /api/login, POST /api/refresh
// Protected: user listing/reads, profile, avatar, search
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/users", registerLimiter, m.Handler.Create)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/users", m.Handler.List)
		auth.GET("/users/:id", m.Handler.Get)
		auth.PATCH("/users/:id", m.Handler.Update)
		// Search lives outside /users to avoid clashing with the :id route.
		auth.GET("/search/users", m.Handler.Search)

		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.POST("/profile/avatar", m.Handler.UploadAvatar)
	}
}
