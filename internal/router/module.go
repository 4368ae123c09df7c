package router

import "github.com/gin-gonic/gin"

// Module is a self-contained route bundle. Each entity family (users,
// organisations, domains) implements one and mounts its handlers on the
// shared API group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
