package appointment

import (
	"context"
	"time"

	domain "github.com/cliniflow/clinic-manager/internal/domain/appointment"
	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
)

type ListAppointmentsByMonth struct {
	repo domain.Repository
}

func NewListAppointmentsByMonth(repo domain.Repository) *ListAppointmentsByMonth {
	return &ListAppointmentsByMonth{repo: repo}
}

func (uc *ListAppointmentsByMonth) Execute(
	ctx context.Context,
	ident policy.Identity,
	year int,
	month int,
) ([]models.Appointment, error) {

	if year < 2000 || year > 2100 || month < 1 || month > 12 {
		return nil, httperr.ErrBusiness("invalid_year_or_month")
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	return uc.repo.ListForDateRange(
		ctx,
		ident,
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
	)
}
