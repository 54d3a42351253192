package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/cliniflow/clinic-manager/internal/httperr"
)

// writeBusinessError maps a business error to its HTTP shape. Returns false
// when err carries no business code and the caller must handle it.
func writeBusinessError(c *gin.Context, err error) bool {
	code := httperr.BusinessCode(err)

	switch code {
	case "":
		return false

	case httperr.CodeSlotConflict:
		httperr.Conflict(c, code, "Time slot already booked for this professional.")
	case httperr.CodeDuplicateClosing:
		httperr.Conflict(c, code, "A closing already exists for this professional and date.")
	case httperr.CodeClosingFinalized:
		httperr.Conflict(c, code, "Closing is finalized and read-only.")
	case httperr.CodeInvalidState:
		httperr.BadRequest(c, code, "Invalid state transition.")

	case "appointment_not_found", "patient_not_found", "procedure_not_found":
		httperr.NotFound(c, code, "Record not found.")

	case "invalid_professional":
		httperr.Forbidden(c, code, "Operation not allowed for this professional.")

	default:
		httperr.BadRequest(c, code, "Request rejected.")
	}

	return true
}
