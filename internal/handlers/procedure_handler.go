package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/models"
)

type ProcedureHandler struct {
	db *gorm.DB
}

func NewProcedureHandler(db *gorm.DB) *ProcedureHandler {
	return &ProcedureHandler{db: db}
}

// --------- Requests ---------

type CreateProcedureRequest struct {
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	DurationMinutes int             `json:"duration_minutes" binding:"required,min=1"`
	DefaultPrice    decimal.Decimal `json:"default_price"`
}

type UpdateProcedureRequest struct {
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	DurationMinutes *int             `json:"duration_minutes,omitempty"`
	DefaultPrice    *decimal.Decimal `json:"default_price,omitempty"`
	IsActive        *bool            `json:"is_active,omitempty"`
}

// --------- Handlers ---------

func (h *ProcedureHandler) List(c *gin.Context) {
	activeStr := strings.TrimSpace(c.Query("active"))
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Model(&models.Procedure{})

	if activeStr == "true" {
		q = q.Where("is_active = ?", true)
	} else if activeStr == "false" {
		q = q.Where("is_active = ?", false)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var procedures []models.Procedure
	if err := q.
		Order("name ASC").
		Find(&procedures).Error; err != nil {

		httperr.Internal(c, "failed_to_list_procedures", "Could not list procedures.")
		return
	}

	c.JSON(http.StatusOK, procedures)
}

func (h *ProcedureHandler) Create(c *gin.Context) {
	var req CreateProcedureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid procedure data.")
		return
	}

	if req.DefaultPrice.IsNegative() {
		httperr.BadRequest(c, "invalid_price", "Price cannot be negative.")
		return
	}

	procedure := models.Procedure{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		DefaultPrice:    req.DefaultPrice.Round(2),
		IsActive:        true,
	}

	if err := h.db.Create(&procedure).Error; err != nil {
		httperr.Internal(c, "failed_to_create_procedure", "Could not create procedure.")
		return
	}

	c.JSON(http.StatusCreated, procedure)
}

func (h *ProcedureHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid procedure id.")
		return
	}

	var procedure models.Procedure
	if err := h.db.
		Where("id = ?", id).
		First(&procedure).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "procedure_not_found", "Procedure not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_procedure", "Could not load procedure.")
		return
	}

	var req UpdateProcedureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid procedure data.")
		return
	}

	if req.Name != nil {
		procedure.Name = *req.Name
	}
	if req.Description != nil {
		procedure.Description = *req.Description
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes < 1 {
			httperr.BadRequest(c, "invalid_duration", "Duration must be positive.")
			return
		}
		procedure.DurationMinutes = *req.DurationMinutes
	}
	if req.DefaultPrice != nil {
		if req.DefaultPrice.IsNegative() {
			httperr.BadRequest(c, "invalid_price", "Price cannot be negative.")
			return
		}
		procedure.DefaultPrice = req.DefaultPrice.Round(2)
	}
	if req.IsActive != nil {
		procedure.IsActive = *req.IsActive
	}

	if err := h.db.Save(&procedure).Error; err != nil {
		httperr.Internal(c, "failed_to_update_procedure", "Could not update procedure.")
		return
	}

	c.JSON(http.StatusOK, procedure)
}
