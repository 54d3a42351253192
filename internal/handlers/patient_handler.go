package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/middleware"
	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
)

type PatientHandler struct {
	db *gorm.DB
}

func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{db: db}
}

// --------- Requests ---------

type CreatePatientRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email"`
	Notes    string `json:"notes"`

	// super_admin may register a patient under another professional.
	ProfessionalID *uuid.UUID `json:"professional_id,omitempty"`
}

type UpdatePatientRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// --------- Handlers ---------

func (h *PatientHandler) List(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Scopes(policy.OwnerScope(ident, "professional_id"))

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(full_name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var patients []models.Patient
	if err := q.
		Order("created_at DESC").
		Find(&patients).Error; err != nil {

		httperr.Internal(c, "failed_to_list_patients", "Could not list patients.")
		return
	}

	c.JSON(http.StatusOK, patients)
}

func (h *PatientHandler) Get(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid patient id.")
		return
	}

	var patient models.Patient
	if err := h.db.
		Scopes(policy.OwnerScope(ident, "professional_id")).
		Where("id = ?", id).
		First(&patient).Error; err != nil {

		httperr.NotFound(c, "patient_not_found", "Patient not found.")
		return
	}

	c.JSON(http.StatusOK, patient)
}

func (h *PatientHandler) Create(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid patient data.")
		return
	}

	professionalID := ident.ProfileID
	if req.ProfessionalID != nil {
		if *req.ProfessionalID != ident.ProfileID && !ident.IsSuperAdmin() {
			httperr.Forbidden(c, "invalid_professional", "Cannot create for another professional.")
			return
		}
		professionalID = *req.ProfessionalID
	}

	patient := models.Patient{
		ProfessionalID: professionalID,
		FullName:       req.FullName,
		Phone:          req.Phone,
		Email:          req.Email,
		Notes:          req.Notes,
	}

	if err := h.db.Create(&patient).Error; err != nil {
		httperr.Internal(c, "failed_to_create_patient", "Could not create patient.")
		return
	}

	c.JSON(http.StatusCreated, patient)
}

func (h *PatientHandler) Update(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid patient id.")
		return
	}

	var patient models.Patient
	if err := h.db.
		Scopes(policy.OwnerScope(ident, "professional_id")).
		Where("id = ?", id).
		First(&patient).Error; err != nil {

		httperr.NotFound(c, "patient_not_found", "Patient not found.")
		return
	}

	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid patient data.")
		return
	}

	if req.FullName != nil {
		patient.FullName = *req.FullName
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Notes != nil {
		patient.Notes = *req.Notes
	}

	if err := h.db.Save(&patient).Error; err != nil {
		httperr.Internal(c, "failed_to_update_patient", "Could not update patient.")
		return
	}

	c.JSON(http.StatusOK, patient)
}
