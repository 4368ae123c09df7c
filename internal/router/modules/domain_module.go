package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julee/knowledge-service/internal/container"
	handlers "github.com/julee/knowledge-service/internal/interface/http"
	"github.com/julee/knowledge-service/internal/interface/middleware"
)

// DomainModule registers knowledge-domain routes.
type DomainModule struct {
	Handler *handlers.DomainHandler
}

func NewDomainModule(h *handlers.DomainHandler) *DomainModule {
	return &DomainModule{Handler: h}
}

func (m *DomainModule) Register(rg *gin.RouterGroup) {
	createLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), container.GetJWT()))
	{
		auth.POST("/domains", createLimiter, m.Handler.Create)
		auth.GET("/domains", m.Handler.List)
		auth.GET("/domains/:id", m.Handler.Get)
	}
}
