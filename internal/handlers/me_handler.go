package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cliniflow/clinic-manager/internal/middleware"
	"github.com/cliniflow/clinic-manager/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	profileID := c.MustGet(middleware.ContextProfileID).(uuid.UUID)

	var profile models.Profile
	if err := h.db.First(&profile, "id = ?", profileID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile_not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": gin.H{
			"id":        profile.ID,
			"full_name": profile.FullName,
			"email":     profile.Email,
			"role":      profile.Role,
			"is_active": profile.IsActive,
		},
	})
}
