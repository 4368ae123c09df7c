package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julee/knowledge-service/internal/container"
	handlers "github.com/julee/knowledge-service/internal/interface/http"
	"github.com/julee/knowledge-service/internal/interface/middleware"
)

// OrganisationModule registers organisation routes. Creation is public so a
// fresh deployment can be bootstrapped; reads require a session.
type OrganisationModule struct {
	Handler *handlers.OrganisationHandler
}

func NewOrganisationModule(h *handlers.OrganisationHandler) *OrganisationModule {
	return &OrganisationModule{Handler: h}
}

func (m *OrganisationModule) Register(rg *gin.RouterGroup) {
	createLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/organisations", createLimiter, m.Handler.Create)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), container.GetJWT()))
	{
		auth.GET("/organisations", m.Handler.List)
		auth.GET("/organisations/:id", m.Handler.Get)
	}
}
