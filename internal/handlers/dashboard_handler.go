package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/middleware"
	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
	"github.com/cliniflow/clinic-manager/internal/timezone"
)

// DashboardHandler serves the role-based landing aggregates: a user sees
// their own day, super_admin sees the whole clinic.
type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

func (h *DashboardHandler) Summary(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	date := c.Query("date")
	if date == "" {
		date = timezone.Now().Format("2006-01-02")
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}

	var counts []statusCount
	if err := h.db.
		Model(&models.Appointment{}).
		Select("status, COUNT(*) as count").
		Scopes(policy.OwnerScope(ident, "professional_id")).
		Where("appointment_date = ?", date).
		Group("status").
		Find(&counts).Error; err != nil {

		httperr.Internal(c, "failed_to_load_dashboard", "Could not load dashboard.")
		return
	}

	byStatus := map[string]int64{}
	var total int64
	for _, sc := range counts {
		byStatus[sc.Status] = sc.Count
		total += sc.Count
	}

	// The day's cash totals come from the closing rows, summed with exact
	// decimal arithmetic.
	var closings []models.CashRegisterClosing
	if err := h.db.
		Scopes(policy.OwnerScope(ident, "professional_id")).
		Where("closing_date = ?", date).
		Find(&closings).Error; err != nil {

		httperr.Internal(c, "failed_to_load_dashboard", "Could not load dashboard.")
		return
	}

	cashTotal := decimal.Zero
	finalized := 0
	for _, cl := range closings {
		cashTotal = cashTotal.Add(cl.TotalAmount)
		if cl.IsFinalized {
			finalized++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"date": date,
		"appointments": gin.H{
			"total":     total,
			"by_status": byStatus,
		},
		"cash_register": gin.H{
			"closings":  len(closings),
			"finalized": finalized,
			"total":     cashTotal.Round(2),
		},
	})
}
