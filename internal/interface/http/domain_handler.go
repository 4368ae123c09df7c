package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/julee/knowledge-service/internal/application"
	"github.com/julee/knowledge-service/internal/domain/entity"
	"github.com/julee/knowledge-service/pkg/response"
	"github.com/julee/knowledge-service/pkg/validation"
)

type DomainHandler struct {
	Svc    *application.DomainService
	Logger *logrus.Logger
}

func NewDomainHandler(svc *application.DomainService, logger *logrus.Logger) *DomainHandler {
	return &DomainHandler{Svc: svc, Logger: logger}
}

type createDomainRequest struct {
	OrganisationID string `json:"organisation_id" binding:"required"`
	Name           string `json:"name" binding:"required"`
	Tooltip        string `json:"tooltip"`
}

func domainJSON(d *entity.Domain) gin.H {
	return gin.H{
		"id":              d.ID,
		"organisation_id": d.OrganisationID,
		"name":            d.Name,
		"tooltip":         d.Tooltip,
		"created_at":      d.CreatedAt,
		"updated_at":      d.UpdatedAt,
	}
}

func (h *DomainHandler) Create(c *gin.Context) {
	var req createDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, response.CodeValidationFailed, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	d, err := h.Svc.Create(c.Request.Context(), application.CreateDomainInput{
		OrganisationID: req.OrganisationID,
		Name:           req.Name,
		Tooltip:        req.Tooltip,
	})
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusCreated, domainJSON(d), "domain created", nil)
	c.JSON(resp.Status, resp)
}

func (h *DomainHandler) Get(c *gin.Context) {
	d, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, domainJSON(d), "domain", nil)
	c.JSON(resp.Status, resp)
}

// List returns all domains; ?organisation_id= narrows to one organisation.
func (h *DomainHandler) List(c *gin.Context) {
	var orgID *string
	if v := c.Query("organisation_id"); v != "" {
		orgID = &v
	}
	domains, err := h.Svc.List(c.Request.Context(), orgID)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(domains))
	for _, d := range domains {
		out = append(out, domainJSON(d))
	}
	resp := response.Success(c, http.StatusOK, out, "domains", gin.H{"count": len(out)})
	c.JSON(resp.Status, resp)
}
