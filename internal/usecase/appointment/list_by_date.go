package appointment

import (
	"context"
	"time"

	domain "github.com/cliniflow/clinic-manager/internal/domain/appointment"
	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
)

type ListAppointmentsByDate struct {
	repo domain.Repository
}

func NewListAppointmentsByDate(repo domain.Repository) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{repo: repo}
}

func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	ident policy.Identity,
	date string,
) ([]models.Appointment, error) {

	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	return uc.repo.ListForDate(ctx, ident, date)
}
