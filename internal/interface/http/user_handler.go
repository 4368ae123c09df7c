package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/julee/knowledge-service/internal/application"
	"github.com/julee/knowledge-service/internal/domain/entity"
	"github.com/julee/knowledge-service/pkg/helpers"
	"github.com/julee/knowledge-service/pkg/response"
	"github.com/julee/knowledge-service/pkg/validation"
)

type UserHandler struct {
	Svc     *application.UserService
	JWT     *helpers.JWTManager
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewUserHandler(svc *application.UserService, jwt *helpers.JWTManager, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, JWT: jwt, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type createUserRequest struct {
	Name           string  `json:"name" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,pwd"`
	AvatarURL      string  `json:"avatar_url"`
	OrganisationID *string `json:"organisation_id"`
}

type updateUserRequest struct {
	Name           *string `json:"name"`
	AvatarURL      *string `json:"avatar_url"`
	OrganisationID *string `json:"organisation_id"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":              u.ID,
		"email":           u.Email,
		"name":            u.Name,
		"avatar_url":      u.AvatarURL,
		"organisation_id": u.OrganisationID,
		"created_at":      u.CreatedAt,
		"updated_at":      u.UpdatedAt,
	}
}

func fail(c *gin.Context, err error) {
	status, code, msg, details := mapError(err)
	resp := response.Error[any](c, status, code, msg, details)
	c.JSON(resp.Status, resp)
}

// Create registers a new user, optionally inside an organisation.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, response.CodeValidationFailed, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), application.CreateUserInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		AvatarURL:      req.AvatarURL,
		OrganisationID: req.OrganisationID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusCreated, userJSON(u), "user created", nil)
	c.JSON(resp.Status, resp)
}

// List returns all users; ?organisation_id= narrows to one organisation.
func (h *UserHandler) List(c *gin.Context) {
	var orgID *string
	if v := c.Query("organisation_id"); v != "" {
		orgID = &v
	}
	users, err := h.Svc.List(c.Request.Context(), orgID)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, userJSON(u))
	}
	resp := response.Success(c, http.StatusOK, out, "users", gin.H{"count": len(out)})
	c.JSON(resp.Status, resp)
}

func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, userJSON(u), "user", nil)
	c.JSON(resp.Status, resp)
}

// Update applies partial changes to a user by id.
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, response.CodeValidationFailed, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), c.Param("id"), application.UpdateUserInput{
		Name:           req.Name,
		AvatarURL:      req.AvatarURL,
		OrganisationID: req.OrganisationID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, userJSON(u), "user updated", nil)
	c.JSON(resp.Status, resp)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, response.CodeValidationFailed, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	res, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	resp := response.Success(c, http.StatusOK, res, "login successful", gin.H{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
	c.JSON(resp.Status, resp)
}

func (h *UserHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		resp := response.Error[any](c, http.StatusUnauthorized, response.CodeUnauthorized, "missing refresh token", nil)
		c.JSON(resp.Status, resp)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		fail(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	resp := response.Success[any](c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed", gin.H{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
	c.JSON(resp.Status, resp)
}

func (h *UserHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	resp := response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
	c.JSON(resp.Status, resp)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.Get(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, userJSON(u), "profile", nil)
	c.JSON(resp.Status, resp)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, response.CodeValidationFailed, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), c.GetString("userID"), application.UpdateUserInput{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, userJSON(u), "profile updated", nil)
	c.JSON(resp.Status, resp)
}

// UploadAvatar accepts a multipart file and stores it in GCS.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, response.CodeValidationFailed, "missing avatar file", nil)
		c.JSON(resp.Status, resp)
		return
	}
	defer func() { _ = file.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), c.GetString("userID"), file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar uploaded", nil)
	c.JSON(resp.Status, resp)
}

// Search queries the user index in Elasticsearch.
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		resp := response.Error[any](c, http.StatusBadRequest, response.CodeValidationFailed, "missing query", gin.H{"q": "is required"})
		c.JSON(resp.Status, resp)
		return
	}
	hits, err := h.Svc.Search(c.Request.Context(), q, 10)
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
	c.JSON(resp.Status, resp)
}
