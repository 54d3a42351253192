package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cliniflow/clinic-manager/internal/dto"
	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/middleware"
	ucAppointment "github.com/cliniflow/clinic-manager/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	createUC      *ucAppointment.CreateAppointment
	confirmUC     *ucAppointment.ConfirmAppointment
	completeUC    *ucAppointment.CompleteAppointment
	cancelUC      *ucAppointment.CancelAppointment
	listByDateUC  *ucAppointment.ListAppointmentsByDate
	listByMonthUC *ucAppointment.ListAppointmentsByMonth
}

func NewAppointmentHandler(
	createUC *ucAppointment.CreateAppointment,
	confirmUC *ucAppointment.ConfirmAppointment,
	completeUC *ucAppointment.CompleteAppointment,
	cancelUC *ucAppointment.CancelAppointment,
	listByDateUC *ucAppointment.ListAppointmentsByDate,
	listByMonthUC *ucAppointment.ListAppointmentsByMonth,
) *AppointmentHandler {
	return &AppointmentHandler{
		createUC:      createUC,
		confirmUC:     confirmUC,
		completeUC:    completeUC,
		cancelUC:      cancelUC,
		listByDateUC:  listByDateUC,
		listByMonthUC: listByMonthUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	PatientID      uuid.UUID  `json:"patient_id" binding:"required"`
	ProcedureID    uuid.UUID  `json:"procedure_id" binding:"required"`
	Date           string     `json:"date" binding:"required"`
	Time           string     `json:"time" binding:"required"`
	Notes          string     `json:"notes"`
	ProfessionalID *uuid.UUID `json:"professional_id,omitempty"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid appointment data.")
		return
	}

	in := ucAppointment.CreateAppointmentInput{
		PatientID:   req.PatientID,
		ProcedureID: req.ProcedureID,
		Date:        req.Date,
		Time:        req.Time,
		Notes:       req.Notes,
	}
	if req.ProfessionalID != nil {
		in.ProfessionalID = *req.ProfessionalID
	}

	ap, err := h.createUC.Execute(c.Request.Context(), ident, in)
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_create_appointment", "Could not create appointment.")
		return
	}

	c.JSON(http.StatusCreated, ap)
}

// ======================================================
// STATE CHANGES
// ======================================================

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	ap, err := h.confirmUC.Execute(c.Request.Context(), ident, id)
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_confirm_appointment", "Could not confirm appointment.")
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	ap, err := h.completeUC.Execute(c.Request.Context(), ident, id)
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_complete_appointment", "Could not complete appointment.")
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	var req CancelAppointmentRequest
	_ = c.ShouldBindJSON(&req)

	ap, err := h.cancelUC.Execute(c.Request.Context(), ident, id, req.Reason)
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_cancel_appointment", "Could not cancel appointment.")
		return
	}

	c.JSON(http.StatusOK, ap)
}

// ======================================================
// LISTINGS
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "Date is required.")
		return
	}

	aps, err := h.listByDateUC.Execute(c.Request.Context(), ident, date)
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_list_appointments", "Could not list appointments.")
		return
	}

	c.JSON(http.StatusOK, aps)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		httperr.BadRequest(c, "invalid_year", "Invalid year.")
		return
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		httperr.BadRequest(c, "invalid_month", "Invalid month.")
		return
	}

	aps, err := h.listByMonthUC.Execute(c.Request.Context(), ident, year, month)
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_list_appointments", "Could not list appointments.")
		return
	}

	// Calendar view wants compact entries, not the full rows.
	items := make([]dto.AppointmentListDTO, 0, len(aps))
	for _, ap := range aps {
		items = append(items, dto.AppointmentListDTO{
			ID:              ap.ID,
			AppointmentDate: ap.AppointmentDate,
			AppointmentTime: ap.AppointmentTime,
			Status:          ap.Status,
			PatientName:     ap.Patient.FullName,
			ProcedureName:   ap.Procedure.Name,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"year":         year,
		"month":        month,
		"appointments": items,
	})
}
