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

type OrganisationHandler struct {
	Svc    *application.OrganisationService
	Logger *logrus.Logger
}

func NewOrganisationHandler(svc *application.OrganisationService, logger *logrus.Logger) *OrganisationHandler {
	return &OrganisationHandler{Svc: svc, Logger: logger}
}

type createOrganisationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func organisationJSON(o *entity.Organisation) gin.H {
	return gin.H{
		"id":          o.ID,
		"name":        o.Name,
		"description": o.Description,
		"created_at":  o.CreatedAt,
		"updated_at":  o.UpdatedAt,
	}
}

func (h *OrganisationHandler) Create(c *gin.Context) {
	var req createOrganisationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, response.CodeValidationFailed, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	o, err := h.Svc.Create(c.Request.Context(), application.CreateOrganisationInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusCreated, organisationJSON(o), "organisation created", nil)
	c.JSON(resp.Status, resp)
}

func (h *OrganisationHandler) Get(c *gin.Context) {
	o, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, organisationJSON(o), "organisation", nil)
	c.JSON(resp.Status, resp)
}

func (h *OrganisationHandler) List(c *gin.Context) {
	orgs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, organisationJSON(o))
	}
	resp := response.Success(c, http.StatusOK, out, "organisations", gin.H{"count": len(out)})
	c.JSON(resp.Status, resp)
}
