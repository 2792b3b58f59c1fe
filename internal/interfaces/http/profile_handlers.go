package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
)

// LogoResponse is returned after a logo upload
type LogoResponse struct {
	URL string `json:"url"`
}

// GetProfile handles GET /api/profile
func (h *Handlers) GetProfile(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to get profile", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    profile,
	})
}

// SaveProfile handles PUT /api/profile
func (h *Handlers) SaveProfile(c *gin.Context) {
	var profile entity.CompanyProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		h.badRequest(c, "invalid profile body", err)
		return
	}

	if err := h.profiles.Save(c.Request.Context(), &profile); err != nil {
		h.fail(c, "failed to save profile", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    &profile,
	})
}

// UploadLogo handles POST /api/profile/logo (multipart field "file")
func (h *Handlers) UploadLogo(c *gin.Context) {
	data, err := h.readUpload(c, "file")
	if err != nil {
		h.badRequest(c, "invalid logo upload", err)
		return
	}

	url, err := h.profiles.UploadLogo(c.Request.Context(), data)
	if err != nil {
		h.fail(c, "failed to upload logo", err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    LogoResponse{URL: url},
	})
}
