package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/models"
)

// ProfileHandler serves profile administration, super_admin only (gated by
// the policy middleware on the route).
type ProfileHandler struct {
	db *gorm.DB
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (h *ProfileHandler) List(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Model(&models.Profile{})

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var profiles []models.Profile
	if err := q.
		Order("created_at ASC").
		Find(&profiles).Error; err != nil {

		httperr.Internal(c, "failed_to_list_profiles", "Could not list profiles.")
		return
	}

	c.JSON(http.StatusOK, profiles)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid profile id.")
		return
	}

	var profile models.Profile
	if err := h.db.
		Where("id = ?", id).
		First(&profile).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "profile_not_found", "Profile not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_profile", "Could not load profile.")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid profile data.")
		return
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.IsActive != nil {
		profile.IsActive = *req.IsActive
	}

	if err := h.db.Save(&profile).Error; err != nil {
		httperr.Internal(c, "failed_to_update_profile", "Could not update profile.")
		return
	}

	c.JSON(http.StatusOK, profile)
}
