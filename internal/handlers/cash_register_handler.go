package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/httpresp"
	"github.com/cliniflow/clinic-manager/internal/middleware"
	ucCashRegister "github.com/cliniflow/clinic-manager/internal/usecase/cashregister"
)

// ======================================================
// HANDLER
// ======================================================

type CashRegisterHandler struct {
	openUC     *ucCashRegister.OpenClosing
	addUC      *ucCashRegister.AddTransaction
	removeUC   *ucCashRegister.RemoveTransaction
	finalizeUC *ucCashRegister.FinalizeClosing
	getUC      *ucCashRegister.GetClosing
}

func NewCashRegisterHandler(
	openUC *ucCashRegister.OpenClosing,
	addUC *ucCashRegister.AddTransaction,
	removeUC *ucCashRegister.RemoveTransaction,
	finalizeUC *ucCashRegister.FinalizeClosing,
	getUC *ucCashRegister.GetClosing,
) *CashRegisterHandler {
	return &CashRegisterHandler{
		openUC:     openUC,
		addUC:      addUC,
		removeUC:   removeUC,
		finalizeUC: finalizeUC,
		getUC:      getUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type OpenClosingRequest struct {
	Date           string     `json:"date" binding:"required"`
	Notes          string     `json:"notes"`
	ProfessionalID *uuid.UUID `json:"professional_id,omitempty"`
}

type AddTransactionRequest struct {
	AppointmentID *uuid.UUID      `json:"appointment_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	Notes         string          `json:"notes"`
}

// ======================================================
// CLOSINGS
// ======================================================

func (h *CashRegisterHandler) OpenClosing(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	var req OpenClosingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid closing data.")
		return
	}

	in := ucCashRegister.OpenClosingInput{
		Date:  req.Date,
		Notes: req.Notes,
	}
	if req.ProfessionalID != nil {
		in.ProfessionalID = *req.ProfessionalID
	}

	cl, err := h.openUC.Execute(c.Request.Context(), ident, in)
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_open_closing", "Could not open closing.")
		return
	}

	c.JSON(http.StatusCreated, cl)
}

func (h *CashRegisterHandler) GetClosing(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid closing id.")
		return
	}

	cl, err := h.getUC.Execute(c.Request.Context(), ident, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "closing_not_found", "Closing not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_closing", "Could not load closing.")
		return
	}

	c.JSON(http.StatusOK, cl)
}

// GetClosingByDate serves the duplicate_closing recovery path: the client
// fetches the existing closing instead of opening a new one.
func (h *CashRegisterHandler) GetClosingByDate(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "Date is required.")
		return
	}

	cl, err := h.getUC.ByDate(c.Request.Context(), ident, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "closing_not_found", "No closing for this date.")
			return
		}
		httperr.Internal(c, "failed_to_get_closing", "Could not load closing.")
		return
	}

	c.JSON(http.StatusOK, cl)
}

func (h *CashRegisterHandler) ListClosings(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	closings, err := h.getUC.List(c.Request.Context(), ident, c.Query("from"), c.Query("to"))
	if err != nil {
		httperr.Internal(c, "failed_to_list_closings", "Could not list closings.")
		return
	}

	httpresp.List(c, closings)
}

func (h *CashRegisterHandler) Finalize(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid closing id.")
		return
	}

	cl, err := h.finalizeUC.Execute(c.Request.Context(), ident, id)
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "closing_not_found", "Closing not found.")
			return
		}
		httperr.Internal(c, "failed_to_finalize_closing", "Could not finalize closing.")
		return
	}

	c.JSON(http.StatusOK, cl)
}

// ======================================================
// TRANSACTIONS
// ======================================================

func (h *CashRegisterHandler) AddTransaction(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	closingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid closing id.")
		return
	}

	var req AddTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid transaction data.")
		return
	}

	cl, err := h.addUC.Execute(c.Request.Context(), ident, ucCashRegister.AddTransactionInput{
		ClosingID:     closingID,
		AppointmentID: req.AppointmentID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "closing_not_found", "Closing not found.")
			return
		}
		httperr.Internal(c, "failed_to_add_transaction", "Could not add transaction.")
		return
	}

	c.JSON(http.StatusCreated, cl)
}

func (h *CashRegisterHandler) RemoveTransaction(c *gin.Context) {
	ident := middleware.IdentityFromContext(c)

	closingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid closing id.")
		return
	}

	transactionID, err := uuid.Parse(c.Param("txid"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid transaction id.")
		return
	}

	cl, err := h.removeUC.Execute(c.Request.Context(), ident, closingID, transactionID)
	if err != nil {
		if writeBusinessError(c, err) {
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "transaction_not_found", "Transaction not found.")
			return
		}
		httperr.Internal(c, "failed_to_remove_transaction", "Could not remove transaction.")
		return
	}

	c.JSON(http.StatusOK, cl)
}
